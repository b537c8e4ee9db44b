package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/config"
)

type schemaDB struct {
	sql []string
	err error
}

func (f *schemaDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), f.err
}

func (f *schemaDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *schemaDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func testDatabaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "honeypot",
		Password:        "secret",
		DBName:          "journal",
		SSLMode:         "disable",
		MaxOpenConns:    8,
		MinConns:        3,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

func TestJournalPoolConfig(t *testing.T) {
	pc, err := journalPoolConfig(testDatabaseConfig())
	require.NoError(t, err)

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "journal", pc.ConnConfig.Database)
	assert.Equal(t, ApplicationName, pc.ConnConfig.RuntimeParams["application_name"])
}

func TestJournalPoolConfigCapsMinConns(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.MaxOpenConns = 2
	cfg.MinConns = 5

	pc, err := journalPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pc.MinConns)
}

func TestJournalPoolConfigZeroKeepsPoolDefaults(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.MaxOpenConns = 0
	cfg.MinConns = 0
	cfg.ConnMaxLifetime = 0

	pc, err := journalPoolConfig(cfg)
	require.NoError(t, err)
	assert.Positive(t, pc.MaxConns)
	assert.Equal(t, int32(0), pc.MinConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
}

func TestEnsureSchema(t *testing.T) {
	db := &schemaDB{}
	require.NoError(t, EnsureSchema(context.Background(), db))
	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS conversation_events")
	assert.Contains(t, db.sql[0], "conversation_events_session_idx")
}

func TestEnsureSchemaError(t *testing.T) {
	err := EnsureSchema(context.Background(), &schemaDB{err: errors.New("permission denied")})
	assert.ErrorContains(t, err, "failed to create conversation_events")
	assert.ErrorContains(t, err, "permission denied")
}
