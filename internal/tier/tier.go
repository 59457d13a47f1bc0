// Package tier resolves a caller's subscription level. The backing
// store is maintained out-of-band by the billing webhook consumer;
// this package only reads it.
package tier

import (
	"github.com/user/netscan/internal/model"
	"github.com/user/netscan/internal/util"
)

// Service looks up the tier for an authenticated user id.
type Service interface {
	UserTier(userID string) (model.Tier, error)
}

// StaticService is a config-backed Service: user ids listed in the
// configuration are pro, everyone else is free.
type StaticService struct {
	pro map[string]bool
}

// NewStaticService builds a Service from a list of pro user ids.
func NewStaticService(proUsers []string) *StaticService {
	pro := make(map[string]bool, len(proUsers))
	for _, u := range proUsers {
		pro[u] = true
	}
	return &StaticService{pro: pro}
}

// UserTier implements Service.
func (s *StaticService) UserTier(userID string) (model.Tier, error) {
	if s.pro[userID] {
		return model.TierPro, nil
	}
	return model.TierFree, nil
}

// Resolve returns the tier for userID, treating an empty id or any
// lookup failure as free. Failing toward the more restrictive tier
// keeps a tier-service outage from opening pro tools to everyone.
func Resolve(svc Service, userID string) model.Tier {
	if userID == "" || svc == nil {
		return model.TierFree
	}
	t, err := svc.UserTier(userID)
	if err != nil {
		util.Warn("tier lookup failed for %s: %v", userID, err)
		return model.TierFree
	}
	return t
}
