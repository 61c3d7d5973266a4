package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// Store owns the session State. Every mutation goes through Update, which
// persists the durable subset and notifies subscribers before returning.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
	events  EventLogger
	now     func() time.Time

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(State)
}

// Option configures a Store.
type Option func(*Store)

// WithEventLogger records learning events.
func WithEventLogger(l EventLogger) Option {
	return func(s *Store) { s.events = l }
}

// WithClock overrides time.Now for LastAccessed stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open rehydrates a Store from storage. A missing key starts from defaults;
// an unreadable or undecodable snapshot does too, with a warning.
func Open(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := &Store{
		state:   DefaultState(),
		storage: storage,
		events:  NopEventLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	p, err := loadPersisted(ctx, storage)
	switch {
	case err == nil:
		s.state.DarkMode = p.DarkMode
		s.state.Progress = p.Progress
		slog.Info("session restored",
			"completed_modules", len(p.Progress.CompletedModules),
			"scores", len(p.Progress.AssessmentScores),
			"bookmarks", len(p.Progress.Bookmarks),
		)
	case errors.Is(err, ErrNotFound):
		slog.Info("no stored session, using defaults")
	default:
		slog.Warn("stored session unusable, using defaults", "error", err)
	}
	return s
}

func loadPersisted(ctx context.Context, storage Storage) (Persisted, error) {
	if storage == nil {
		return Persisted{}, ErrNotFound
	}
	data, err := storage.Load(ctx, StorageKey)
	if err != nil {
		return Persisted{}, err
	}
	return DecodeSnapshot(data)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Update applies fn under the store lock, then persists and notifies.
// Observers run with the lock held and must not call back into the Store.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	snap := s.state.clone()

	s.persist(snap)
	for _, sub := range s.subs {
		sub.fn(snap.clone())
	}
}

func (s *Store) persist(st State) {
	if s.storage == nil {
		return
	}
	data, err := EncodeSnapshot(st.Persisted())
	if err != nil {
		slog.Error("encoding session snapshot", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := s.storage.Save(ctx, StorageKey, data); err != nil {
		slog.Warn("saving session snapshot", "error", err)
	}
}

// Subscribe registers fn to receive the state after every mutation, in
// registration order. The returned function removes it.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.storage.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) SetOutcome(v catalog.VariableType) {
	s.Update(func(st *State) { st.Outcome = v })
}

func (s *Store) SetDesign(d catalog.StudyDesignType) {
	s.Update(func(st *State) { st.Design = d })
}

func (s *Store) SetComparison(c catalog.ComparisonType) {
	s.Update(func(st *State) { st.Comparison = c })
}

func (s *Store) AddPredictor(v catalog.Variable) {
	s.Update(func(st *State) { st.Predictors = append(st.Predictors, v) })
}

// RemovePredictor drops every predictor with id.
func (s *Store) RemovePredictor(id string) {
	s.Update(func(st *State) {
		st.Predictors = slices.DeleteFunc(st.Predictors, func(v catalog.Variable) bool { return v.ID == id })
	})
}

func (s *Store) ClearPredictors() {
	s.Update(func(st *State) { st.Predictors = []catalog.Variable{} })
}

// SetSampleSize sets the planned sample size; 0 clears it.
func (s *Store) SetSampleSize(n int) error {
	if n < 0 {
		return fmt.Errorf("setting sample size %d: %w", n, ErrInvalidSampleSize)
	}
	s.Update(func(st *State) { st.SampleSize = n })
	return nil
}

func (s *Store) SetPaired(paired bool) {
	s.Update(func(st *State) { st.Paired = paired })
}

// SetView navigates to v. Unknown views are rejected and leave the state as is.
func (s *Store) SetView(v View) error {
	if !v.Valid() {
		return fmt.Errorf("setting view %q: %w", v, ErrUnknownView)
	}
	s.Update(func(st *State) { st.View = v })
	return nil
}

func (s *Store) ToggleDarkMode() {
	s.Update(func(st *State) { st.DarkMode = !st.DarkMode })
}

// ResetSelections clears the questionnaire answers. Progress, theme and view
// are kept.
func (s *Store) ResetSelections() {
	s.Update(func(st *State) {
		def := DefaultState()
		st.Outcome = def.Outcome
		st.Design = def.Design
		st.Comparison = def.Comparison
		st.Predictors = def.Predictors
		st.SampleSize = def.SampleSize
		st.Paired = def.Paired
	})
}

// CompleteModule marks moduleID completed once and stamps LastAccessed.
func (s *Store) CompleteModule(moduleID string) {
	s.Update(func(st *State) {
		p := &st.Progress
		if !slices.Contains(p.CompletedModules, moduleID) {
			p.CompletedModules = append(p.CompletedModules, moduleID)
		}
		p.LastAccessed = s.now()
	})
	s.logEvent(EventModuleCompleted, map[string]any{"module_id": moduleID})
}

// UpdateAssessmentScore raises the score of id to score and stamps
// LastAccessed. Lower scores never replace a higher one.
func (s *Store) UpdateAssessmentScore(id string, score int) {
	s.Update(func(st *State) {
		p := &st.Progress
		if score > p.AssessmentScores[id] {
			p.AssessmentScores[id] = score
		}
		p.LastAccessed = s.now()
	})
}

// RecordAnswer implements the quiz recorder. The first correct answer to a
// question with no score sets its score to 1 and stamps LastAccessed; later
// answers leave progress as is.
func (s *Store) RecordAnswer(questionID string, correct bool) {
	if correct {
		s.Update(func(st *State) {
			p := &st.Progress
			if p.AssessmentScores[questionID] == 0 {
				p.AssessmentScores[questionID] = 1
				p.LastAccessed = s.now()
			}
		})
	}
	s.logEvent(EventAnswerRecorded, map[string]any{"question_id": questionID, "correct": correct})
}

// ToggleBookmark adds or removes itemID from the bookmarks.
func (s *Store) ToggleBookmark(itemID string) {
	var added bool
	s.Update(func(st *State) {
		p := &st.Progress
		if slices.Contains(p.Bookmarks, itemID) {
			p.Bookmarks = slices.DeleteFunc(p.Bookmarks, func(id string) bool { return id == itemID })
			return
		}
		p.Bookmarks = append(p.Bookmarks, itemID)
		added = true
	})
	s.logEvent(EventBookmarkToggled, map[string]any{"item_id": itemID, "bookmarked": added})
}

// ClearScores removes every assessment score.
func (s *Store) ClearScores() {
	s.Update(func(st *State) { st.Progress.AssessmentScores = map[string]int{} })
}

func (s *Store) logEvent(eventType string, data map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := s.events.LogEvent(ctx, Event{Type: eventType, Data: data}); err != nil {
		slog.Warn("logging event", "type", eventType, "error", err)
	}
}
