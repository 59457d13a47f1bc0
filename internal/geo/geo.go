// Package geo augments IP-bearing results with best-effort location
// data. Enrichment failure is silent: the caller's result simply
// keeps its Unknown fields.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/user/netscan/internal/model"
	"github.com/user/netscan/internal/util"
)

// cacheTTL is how long a resolved location stays fresh. Router and
// infrastructure IPs move rarely, so entries can live long.
const cacheTTL = time.Hour

type cacheEntry struct {
	point   *model.GeoPoint
	expires time.Time
}

// Enricher looks up hop locations with a small in-memory cache so a
// ten-hop trace does not issue ten duplicate queries for shared
// infrastructure IPs. Entries expire on read after cacheTTL.
type Enricher struct {
	base    string
	client  *http.Client
	timeout time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry

	now func() time.Time
}

// NewEnricher creates an enricher for an ip-api.com-compatible base
// URL.
func NewEnricher(base string, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Enricher{
		base:    strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
}

type geoResponse struct {
	Status  string  `json:"status"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Enrich returns the location for ip, or nil when the lookup fails
// for any reason. Private-range hops resolve to nil without a query.
func (e *Enricher) Enrich(ctx context.Context, ip string) *model.GeoPoint {
	if ip == "" || isPrivate(ip) {
		return nil
	}

	e.mu.RLock()
	if ent, ok := e.cache[ip]; ok && e.now().Before(ent.expires) {
		e.mu.RUnlock()
		return ent.point
	}
	e.mu.RUnlock()

	point := e.fetch(ctx, ip)
	if point == nil {
		return nil
	}

	e.mu.Lock()
	e.cache[ip] = cacheEntry{point: point, expires: e.now().Add(cacheTTL)}
	e.mu.Unlock()

	return point
}

func (e *Enricher) fetch(ctx context.Context, ip string) *model.GeoPoint {
	url := fmt.Sprintf("%s/%s?fields=status,country,city,lat,lon", e.base, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}

	resp, err := e.client.Do(req)
	if err != nil {
		util.Debug("geo enrichment failed for %s: %v", ip, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var raw geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil
	}
	if raw.Status != "success" {
		return nil
	}

	return &model.GeoPoint{
		City:    raw.City,
		Country: raw.Country,
		Lat:     raw.Lat,
		Lon:     raw.Lon,
	}
}

// isPrivate reports whether ip falls in an RFC 1918 or link-local
// range, which public geolocation sources cannot resolve.
func isPrivate(ip string) bool {
	for _, prefix := range []string{"10.", "192.168.", "169.254.", "127."} {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	if strings.HasPrefix(ip, "172.") {
		parts := strings.SplitN(ip, ".", 3)
		if len(parts) >= 2 {
			switch parts[1] {
			case "16", "17", "18", "19", "20", "21", "22", "23",
				"24", "25", "26", "27", "28", "29", "30", "31":
				return true
			}
		}
	}
	return false
}
