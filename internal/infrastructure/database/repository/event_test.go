package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	calls []execCall
	err   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestEventRepositoryAppend(t *testing.T) {
	db := &fakeDB{}
	repo := NewEventRepository(db)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := repo.Append(context.Background(), models.EventRecord{
		Timestamp: ts, SessionID: "s1", Role: models.RoleAgent, Text: "hello",
	})
	require.NoError(t, err)

	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "INSERT INTO conversation_events")
	assert.Equal(t, []any{ts, "s1", "agent", "hello"}, db.calls[0].args)
}

func TestEventRepositoryAppendError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	err := NewEventRepository(db).Append(context.Background(), models.EventRecord{})
	assert.ErrorContains(t, err, "connection reset")
}

func TestEventRepositoryListPropagatesQueryError(t *testing.T) {
	_, err := NewEventRepository(&fakeDB{}).ListBySession(context.Background(), "s1")
	assert.ErrorContains(t, err, "failed to list events")
}

// overlapDB records inserts in commit order and counts calls that overlap
type overlapDB struct {
	fakeDB
	inFlight atomic.Int32
	overlaps atomic.Int32
	mu       sync.Mutex
	order    []string
}

func (f *overlapDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if f.inFlight.Add(1) > 1 {
		f.overlaps.Add(1)
	}
	defer f.inFlight.Add(-1)

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.order = append(f.order, args[1].(string))
	f.mu.Unlock()
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestEventRepositoryAppendSerialisesAcrossSessions(t *testing.T) {
	db := &overlapDB{}
	repo := NewEventRepository(db)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 5 {
				rec := models.EventRecord{
					Timestamp: time.Now(),
					SessionID: fmt.Sprintf("s%d", i),
					Role:      models.RoleCounterparty,
					Text:      fmt.Sprintf("msg %d", j),
				}
				assert.NoError(t, repo.Append(context.Background(), rec))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), db.overlaps.Load())
	assert.Len(t, db.order, 40)
}
