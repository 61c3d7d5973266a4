package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/statsmd/internal/platform/database"
)

// Event types recorded by the Store.
const (
	EventAnswerRecorded  = "answer_recorded"
	EventModuleCompleted = "module_completed"
	EventBookmarkToggled = "bookmark_toggled"
)

// Event is a learning-analytics record.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(ctx context.Context, event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(context.Context, Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(_ context.Context, event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	event = withDefaults(event)

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

const eventsSchema = `CREATE TABLE IF NOT EXISTS events (
	id         UUID PRIMARY KEY,
	event_type TEXT NOT NULL,
	data       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
)`

// PostgresEventLogger inserts events into the events table.
type PostgresEventLogger struct {
	db *database.DB
}

// NewPostgresEventLogger creates the events table if needed.
func NewPostgresEventLogger(ctx context.Context, db *database.DB) (*PostgresEventLogger, error) {
	if db == nil || db.Pool == nil {
		return nil, fmt.Errorf("event logger pool is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := db.Migrate(ctx, eventsSchema); err != nil {
		return nil, fmt.Errorf("creating events table: %w", err)
	}
	return &PostgresEventLogger{db: db}, nil
}

func (l *PostgresEventLogger) LogEvent(ctx context.Context, event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	event = withDefaults(event)

	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = l.db.Pool.Exec(ctx,
		`INSERT INTO events (id, event_type, data, created_at)
		 VALUES ($1::uuid, $2, $3::jsonb, $4)`,
		event.ID,
		event.Type,
		string(data),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged", "type", event.Type, "id", event.ID)
	return nil
}

func withDefaults(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return event
}
