package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/infrastructure/cache"
)

// DefaultIntelTTL keeps a session's collected artifacts for a week after the last hit
const DefaultIntelTTL = 7 * 24 * time.Hour

// IntelStore accumulates extracted artifacts per session
type IntelStore interface {
	Record(ctx context.Context, sessionID string, intel models.ExtractedIntel) error
	Lookup(ctx context.Context, sessionID string) (models.ExtractedIntel, error)
}

// IntelIndex is an IntelStore backed by one Redis set per session and category
type IntelIndex struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewIntelIndex creates a Redis-backed intel index
func NewIntelIndex(c *cache.RedisCache, ttl time.Duration) *IntelIndex {
	if ttl <= 0 {
		ttl = DefaultIntelTTL
	}
	return &IntelIndex{cache: c, ttl: ttl}
}

// Record adds every non-empty category of intel to the session's sets
func (i *IntelIndex) Record(ctx context.Context, sessionID string, intel models.ExtractedIntel) error {
	for _, c := range models.IntelCategories {
		if err := i.cache.AddIntel(ctx, sessionID, string(c), intel.Get(c), i.ttl); err != nil {
			return fmt.Errorf("failed to index %s: %w", c, err)
		}
	}
	return nil
}

// Lookup returns everything recorded for a session, sorted per category
func (i *IntelIndex) Lookup(ctx context.Context, sessionID string) (models.ExtractedIntel, error) {
	intel := models.NewExtractedIntel()
	for _, c := range models.IntelCategories {
		members, err := i.cache.SMembers(ctx, cache.IntelKey(sessionID, string(c)))
		if err != nil {
			return intel, fmt.Errorf("failed to read %s: %w", c, err)
		}
		if members == nil {
			members = []string{}
		}
		sort.Strings(members)
		intel.Set(c, members)
	}
	return intel, nil
}
