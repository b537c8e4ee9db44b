package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
)

func TestFileJournalWritesOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	j, err := OpenFileJournal(path)
	require.NoError(t, err)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, j.Append(ctx, models.EventRecord{Timestamp: ts, SessionID: "s1", Role: models.RoleCounterparty, Text: "line\nbreak"}))
	require.NoError(t, j.Append(ctx, models.EventRecord{Timestamp: ts, SessionID: "s1", Role: models.RoleAgent, Text: "ok"}))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "2026-03-01T12:00:00Z", first["timestamp"])
	assert.Equal(t, "s1", first["session_id"])
	assert.Equal(t, "counterparty", first["role"])
	assert.Equal(t, "line\nbreak", first["text"])
}

func TestFileJournalAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	ctx := context.Background()

	for _, text := range []string{"first", "second"} {
		j, err := OpenFileJournal(path)
		require.NoError(t, err)
		require.NoError(t, j.Append(ctx, models.EventRecord{SessionID: "s", Role: models.RoleAgent, Text: text}))
		require.NoError(t, j.Close())
	}

	records, err := ReadJournal(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Text)
	assert.Equal(t, "second", records[1].Text)
}

func TestFileJournalClosed(t *testing.T) {
	j, err := OpenFileJournal(filepath.Join(t.TempDir(), "events.jsonl"))
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	err = j.Append(context.Background(), models.EventRecord{})
	assert.ErrorContains(t, err, "closed")
}
