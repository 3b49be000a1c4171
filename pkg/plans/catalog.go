// Package plans holds the static catalog mapping subscription plan nicknames
// to their feature envelopes. Every nickname the billing gateway can return,
// and every manually assigned plan name, must have a catalog entry; seat math
// is impossible without one.
package plans

import (
	"fmt"
	"strings"
)

// CommunityPlan is the free tier every team falls back to when its owner has
// no billing subscription and no catalog-valid manual plan.
const CommunityPlan = "Community"

// Features is the feature envelope tied to a subscription tier
type Features struct {
	Members     int  `json:"members"`
	Connections int  `json:"connections"`
	Projects    int  `json:"projects"`
	Charts      int  `json:"charts"`
	AutoRefresh bool `json:"auto_refresh"`
	Branding    bool `json:"branding"`
}

// Catalog maps lower-cased plan nicknames to feature envelopes
type Catalog map[string]Features

// ErrUnknownPlan is returned when a resolved nickname has no catalog entry
type ErrUnknownPlan struct {
	Nickname string
}

func (e *ErrUnknownPlan) Error() string {
	return fmt.Sprintf("plan %q has no catalog entry", e.Nickname)
}

// DefaultCatalog returns the built-in plan tiers
func DefaultCatalog() Catalog {
	return Catalog{
		"community": {
			Members:     3,
			Connections: 3,
			Projects:    5,
			Charts:      10,
			AutoRefresh: false,
			Branding:    true,
		},
		"starter": {
			Members:     5,
			Connections: 10,
			Projects:    10,
			Charts:      50,
			AutoRefresh: true,
			Branding:    true,
		},
		"pro": {
			Members:     10,
			Connections: 25,
			Projects:    25,
			Charts:      200,
			AutoRefresh: true,
			Branding:    false,
		},
		"enterprise": {
			Members:     50,
			Connections: 100,
			Projects:    100,
			Charts:      1000,
			AutoRefresh: true,
			Branding:    false,
		},
	}
}

// Get looks up a feature envelope by nickname, case-insensitively
func (c Catalog) Get(nickname string) (Features, bool) {
	f, ok := c[strings.ToLower(nickname)]
	return f, ok
}

// MustGet looks up a feature envelope and returns ErrUnknownPlan when absent
func (c Catalog) MustGet(nickname string) (Features, error) {
	f, ok := c.Get(nickname)
	if !ok {
		return Features{}, &ErrUnknownPlan{Nickname: nickname}
	}
	return f, nil
}

// Has reports whether a nickname is present in the catalog
func (c Catalog) Has(nickname string) bool {
	_, ok := c.Get(nickname)
	return ok
}

// IsCommunity reports whether a nickname names the free tier, regardless of
// casing
func IsCommunity(nickname string) bool {
	return strings.EqualFold(nickname, CommunityPlan)
}
