package storage

import (
	"time"

	"github.com/user/netscan/internal/model"
)

// AuditStore records gateway decisions for abuse review.
type AuditStore struct {
	db *DB
}

// NewAuditStore creates an audit store over the database.
func NewAuditStore(db *DB) *AuditStore {
	return &AuditStore{db: db}
}

// Record inserts one decision.
func (s *AuditStore) Record(rec model.AuditRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO audit_log (tool, target, identity, tier, success, cached, error, duration_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Tool, rec.Target, rec.Identity, rec.Tier,
		rec.Success, rec.Cached, rec.Error, rec.DurationMs, rec.Timestamp,
	)
	return err
}

// Recent returns decisions since the given time, newest first.
func (s *AuditStore) Recent(since time.Time) ([]model.AuditRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, tool, target, identity, tier, success, cached, error, duration_ms, timestamp
		 FROM audit_log WHERE timestamp >= ? ORDER BY timestamp DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AuditRecord
	for rows.Next() {
		var rec model.AuditRecord
		if err := rows.Scan(
			&rec.ID, &rec.Tool, &rec.Target, &rec.Identity, &rec.Tier,
			&rec.Success, &rec.Cached, &rec.Error, &rec.DurationMs, &rec.Timestamp,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountByIdentity returns how many requests an identity made since
// the given time.
func (s *AuditStore) CountByIdentity(identity string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM audit_log WHERE identity = ? AND timestamp >= ?`,
		identity, since,
	).Scan(&count)
	return count, err
}
