package persistence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExecer struct {
	statements []string
	failOn     string
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	r.statements = append(r.statements, sql)
	return pgconn.CommandTag{}, nil
}

func TestRunMigrationsAppliesInOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_second.sql": {Data: []byte("SELECT 2")},
		"migrations/001_first.sql":  {Data: []byte("SELECT 1")},
	}
	db := &recordingExecer{}

	require.NoError(t, runMigrationsFS(context.Background(), db, fsys, zap.NewNop()))
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, db.statements)
}

func TestRunMigrationsStopsOnFailure(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/001_first.sql":  {Data: []byte("SELECT 1")},
		"migrations/002_broken.sql": {Data: []byte("BROKEN")},
		"migrations/003_third.sql":  {Data: []byte("SELECT 3")},
	}
	db := &recordingExecer{failOn: "BROKEN"}

	err := runMigrationsFS(context.Background(), db, fsys, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.sql")
	assert.Equal(t, []string{"SELECT 1"}, db.statements)
}

func TestEmbeddedSchemaCreatesTables(t *testing.T) {
	db := &recordingExecer{}
	require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop()))
	require.NotEmpty(t, db.statements)

	schema := strings.Join(db.statements, "\n")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS requests")
	assert.Contains(t, schema, "users_single_admin")
}
