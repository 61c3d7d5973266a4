package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/recommend"
	"github.com/p-n-ai/statsmd/internal/session"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, storage session.Storage, opts ...session.Option) *session.Store {
	t.Helper()
	opts = append([]session.Option{session.WithClock(func() time.Time { return fixedNow })}, opts...)
	return session.Open(t.Context(), storage, opts...)
}

func TestOpen_Defaults(t *testing.T) {
	s := newStore(t, session.NewMemoryStorage())

	st := s.State()
	assert.True(t, st.DarkMode)
	assert.Equal(t, session.ViewHome, st.View)
	assert.Empty(t, st.Outcome)
	assert.NotNil(t, st.Predictors)
	assert.NotNil(t, st.Progress.AssessmentScores)
}

type failingStorage struct{}

func (failingStorage) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStorage) Save(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestOpen_FallsBackOnErrors(t *testing.T) {
	corrupt := session.NewMemoryStorage()
	require.NoError(t, corrupt.Save(t.Context(), session.StorageKey, []byte("{not json")))

	for name, storage := range map[string]session.Storage{
		"corrupt":     corrupt,
		"unavailable": failingStorage{},
		"nil":         nil,
	} {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, storage)
			assert.Equal(t, session.DefaultState(), s.State())
		})
	}
}

func TestStore_SaveFailureIsIgnored(t *testing.T) {
	s := newStore(t, failingStorage{})

	s.ToggleDarkMode()
	assert.False(t, s.State().DarkMode)
}

func TestStore_PersistsOnlyThemeAndProgress(t *testing.T) {
	storage := session.NewMemoryStorage()
	s := newStore(t, storage)

	s.SetOutcome(catalog.Continuous)
	s.SetDesign(catalog.RCT)
	require.NoError(t, s.SetView(session.ViewGlossary))
	s.ToggleDarkMode()
	s.CompleteModule("test-selector")
	s.ToggleBookmark("t-test")

	reopened := newStore(t, storage)
	st := reopened.State()
	assert.False(t, st.DarkMode)
	assert.Equal(t, []string{"test-selector"}, st.Progress.CompletedModules)
	assert.Equal(t, []string{"t-test"}, st.Progress.Bookmarks)
	assert.True(t, st.Progress.LastAccessed.Equal(fixedNow))

	assert.Empty(t, st.Outcome)
	assert.Empty(t, st.Design)
	assert.Equal(t, session.ViewHome, st.View)
}

func TestStore_ResetSelections(t *testing.T) {
	s := newStore(t, session.NewMemoryStorage())
	s.SetOutcome(catalog.Continuous)
	s.SetDesign(catalog.RCT)
	s.SetComparison(catalog.TwoGroups)
	s.AddPredictor(catalog.Variable{ID: "treatment", Type: catalog.Binary, Role: catalog.RolePredictor})
	require.NoError(t, s.SetSampleSize(120))
	s.SetPaired(true)
	require.NoError(t, s.SetView(session.ViewTestSelector))
	s.ToggleDarkMode()
	s.CompleteModule("glossary")

	s.ResetSelections()

	st := s.State()
	assert.Equal(t, recommend.Selection{}, st.Selection())
	assert.Empty(t, st.Predictors)
	assert.Zero(t, st.SampleSize)
	assert.False(t, st.Paired)
	assert.Equal(t, session.ViewTestSelector, st.View)
	assert.False(t, st.DarkMode)
	assert.Equal(t, []string{"glossary"}, st.Progress.CompletedModules)

	c, err := catalog.Default()
	require.NoError(t, err)
	assert.Empty(t, recommend.Recommend(c.Tests(), st.Selection()))
}

func TestStore_Predictors(t *testing.T) {
	s := newStore(t, nil)
	s.AddPredictor(catalog.Variable{ID: "age"})
	s.AddPredictor(catalog.Variable{ID: "sex"})
	s.AddPredictor(catalog.Variable{ID: "bmi"})

	s.RemovePredictor("sex")
	got := s.State().Predictors
	require.Len(t, got, 2)
	assert.Equal(t, "age", got[0].ID)
	assert.Equal(t, "bmi", got[1].ID)

	s.ClearPredictors()
	assert.Empty(t, s.State().Predictors)
}

func TestStore_Validation(t *testing.T) {
	s := newStore(t, nil)

	assert.ErrorIs(t, s.SetView("settings"), session.ErrUnknownView)
	assert.Equal(t, session.ViewHome, s.State().View)

	assert.ErrorIs(t, s.SetSampleSize(-1), session.ErrInvalidSampleSize)
	assert.NoError(t, s.SetSampleSize(0))
}

func TestStore_CompleteModuleIsASet(t *testing.T) {
	s := newStore(t, nil)
	s.CompleteModule("cases")
	s.CompleteModule("cases")
	assert.Equal(t, []string{"cases"}, s.State().Progress.CompletedModules)
}

func TestStore_ToggleBookmarkKeepsLastAccessed(t *testing.T) {
	s := newStore(t, nil)
	s.ToggleBookmark("p-value")
	assert.True(t, s.State().Progress.LastAccessed.IsZero())
	assert.True(t, s.State().Progress.IsBookmarked("p-value"))

	s.ToggleBookmark("p-value")
	assert.False(t, s.State().Progress.IsBookmarked("p-value"))
}

func TestStore_RecordAnswerMonotonic(t *testing.T) {
	s := newStore(t, nil)

	sequence := []bool{false, true, false, true, false, false}
	prev := 0
	for _, correct := range sequence {
		s.RecordAnswer("q001", correct)
		score := s.State().Progress.AssessmentScores["q001"]
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
	assert.Equal(t, 1, prev)
}

func TestStore_RecordAnswerWrongFirst(t *testing.T) {
	s := newStore(t, nil)
	s.RecordAnswer("q002", false)

	_, ok := s.State().Progress.AssessmentScores["q002"]
	assert.False(t, ok)
	assert.True(t, s.State().Progress.LastAccessed.IsZero())
}

func TestStore_RecordAnswerStampsOnlyFirstCorrect(t *testing.T) {
	now := fixedNow
	s := session.Open(t.Context(), nil, session.WithClock(func() time.Time { return now }))

	s.RecordAnswer("q001", true)
	assert.True(t, s.State().Progress.LastAccessed.Equal(fixedNow))

	now = fixedNow.Add(time.Hour)
	s.RecordAnswer("q001", true)
	assert.True(t, s.State().Progress.LastAccessed.Equal(fixedNow))
	assert.Equal(t, 1, s.State().Progress.AssessmentScores["q001"])
}

func TestStore_UpdateAssessmentScoreNeverDecreases(t *testing.T) {
	s := newStore(t, nil)
	s.UpdateAssessmentScore("q003", 3)
	s.UpdateAssessmentScore("q003", 1)
	assert.Equal(t, 3, s.State().Progress.AssessmentScores["q003"])

	s.ClearScores()
	assert.Empty(t, s.State().Progress.AssessmentScores)
}

func TestStore_Subscribe(t *testing.T) {
	s := newStore(t, nil)

	var order []string
	var last session.State
	cancelA := s.Subscribe(func(st session.State) { order = append(order, "a"); last = st })
	s.Subscribe(func(session.State) { order = append(order, "b") })

	s.SetOutcome(catalog.Binary)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, catalog.Binary, last.Outcome)

	cancelA()
	s.SetDesign(catalog.Cohort)
	assert.Equal(t, []string{"a", "b", "b"}, order)
}

func TestStore_SubscriberGetsCopy(t *testing.T) {
	s := newStore(t, nil)
	s.Subscribe(func(st session.State) {
		st.Progress.CompletedModules = append(st.Progress.CompletedModules, "tampered")
		st.Progress.AssessmentScores["tampered"] = 9
	})

	s.CompleteModule("home")
	p := s.State().Progress
	assert.Equal(t, []string{"home"}, p.CompletedModules)
	assert.NotContains(t, p.AssessmentScores, "tampered")
}

func TestStore_Events(t *testing.T) {
	events := session.NewMemoryEventLogger()
	s := newStore(t, nil, session.WithEventLogger(events))

	s.RecordAnswer("q001", true)
	s.CompleteModule("assessment")
	s.ToggleBookmark("q001")

	got := events.Events()
	require.Len(t, got, 3)
	assert.Equal(t, session.EventAnswerRecorded, got[0].Type)
	assert.Equal(t, true, got[0].Data["correct"])
	assert.Equal(t, session.EventModuleCompleted, got[1].Type)
	assert.Equal(t, session.EventBookmarkToggled, got[2].Type)
	assert.Equal(t, true, got[2].Data["bookmarked"])
	for _, e := range got {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
}
