package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/pkg/logger"
)

func newTestIndex(t *testing.T) (*miniredis.Miniredis, *IntelIndex) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewIntelIndex(cache.NewRedisFromClient(client, "hp:", logger.NewNop()), time.Hour)
}

func TestIntelIndexAccumulatesAcrossTurns(t *testing.T) {
	mr, idx := newTestIndex(t)
	ctx := context.Background()

	first := models.NewExtractedIntel()
	first.URLs = []string{"http://b.example", "http://a.example"}
	first.UPIIDs = []string{"scam@okaxis"}
	require.NoError(t, idx.Record(ctx, "s1", first))

	second := models.NewExtractedIntel()
	second.URLs = []string{"http://a.example"}
	second.Phones = []string{"9876543210"}
	require.NoError(t, idx.Record(ctx, "s1", second))

	got, err := idx.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, got.URLs)
	assert.Equal(t, []string{"scam@okaxis"}, got.UPIIDs)
	assert.Equal(t, []string{"9876543210"}, got.Phones)
	assert.Empty(t, got.Emails)
	assert.NotNil(t, got.Emails)

	assert.Equal(t, time.Hour, mr.TTL("hp:intel:s1:urls"))
}

func TestIntelIndexUnknownSession(t *testing.T) {
	_, idx := newTestIndex(t)

	got, err := idx.Lookup(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, got.Count())
}

func TestIntelIndexDefaultTTL(t *testing.T) {
	idx := NewIntelIndex(nil, 0)
	assert.Equal(t, DefaultIntelTTL, idx.ttl)
}
