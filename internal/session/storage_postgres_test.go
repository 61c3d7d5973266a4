package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/p-n-ai/statsmd/internal/platform/database"
	"github.com/p-n-ai/statsmd/internal/session"
)

// startPostgres runs a throwaway PostgreSQL container and returns a pool.
func startPostgres(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := t.Context()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("statsmd"),
		postgres.WithUsername("statsmd"),
		postgres.WithPassword("statsmd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, url, 2, 0)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestPostgresStorage(t *testing.T) {
	db := startPostgres(t)

	s, err := session.NewPostgresStorage(t.Context(), db)
	require.NoError(t, err)
	exerciseStorage(t, s)
	assert.NoError(t, s.Ping(t.Context()))

	// Creating the table again must be harmless.
	_, err = session.NewPostgresStorage(t.Context(), db)
	require.NoError(t, err)
}

func TestPostgresEventLogger(t *testing.T) {
	db := startPostgres(t)

	logger, err := session.NewPostgresEventLogger(t.Context(), db)
	require.NoError(t, err)

	store := session.Open(t.Context(), session.NewMemoryStorage(), session.WithEventLogger(logger))
	store.RecordAnswer("q001", true)
	store.CompleteModule("assessment")

	var n int
	err = db.Pool.QueryRow(t.Context(), `SELECT count(*) FROM events`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var data string
	err = db.Pool.QueryRow(t.Context(),
		`SELECT data::text FROM events WHERE event_type = $1`, session.EventAnswerRecorded,
	).Scan(&data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"question_id":"q001","correct":true}`, data)
}

func TestNewPostgresStorage_NilPool(t *testing.T) {
	_, err := session.NewPostgresStorage(t.Context(), nil)
	assert.Error(t, err)

	_, err = session.NewPostgresEventLogger(t.Context(), &database.DB{})
	assert.Error(t, err)
}
