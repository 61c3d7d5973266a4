package quiz_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/quiz"
	"github.com/p-n-ai/statsmd/internal/session"
)

type answer struct {
	id      string
	correct bool
}

type recorder struct{ got []answer }

func (r *recorder) RecordAnswer(id string, correct bool) {
	r.got = append(r.got, answer{id, correct})
}

func question(id string, d catalog.Difficulty, correct string) catalog.AssessmentQuestion {
	q := catalog.AssessmentQuestion{
		ID:          id,
		Type:        catalog.MultipleChoice,
		Question:    "Question " + id,
		Explanation: "Because " + id,
		Difficulty:  d,
	}
	for _, o := range []string{"a", "b", "c"} {
		q.Options = append(q.Options, catalog.Option{ID: o, Text: o, IsCorrect: o == correct})
	}
	return q
}

func bank() []catalog.AssessmentQuestion {
	return []catalog.AssessmentQuestion{
		question("q1", catalog.Beginner, "a"),
		question("q2", catalog.Intermediate, "b"),
		question("q3", catalog.Beginner, "c"),
		question("q4", catalog.Advanced, "a"),
	}
}

func TestQuiz_SubmitFlow(t *testing.T) {
	rec := &recorder{}
	q := quiz.New(bank(), rec)
	require.NoError(t, q.Start())

	_, err := q.Submit()
	assert.ErrorIs(t, err, quiz.ErrNoSelection)

	assert.ErrorIs(t, q.Select("z"), quiz.ErrUnknownOption)
	require.NoError(t, q.Select("a"))

	correct, err := q.Submit()
	require.NoError(t, err)
	assert.True(t, correct)
	assert.True(t, q.Revealed())

	assert.ErrorIs(t, q.Select("b"), quiz.ErrAlreadyAnswered)
	_, err = q.Submit()
	assert.ErrorIs(t, err, quiz.ErrAlreadyAnswered)

	require.True(t, q.Next())
	assert.Empty(t, q.Selected())
	assert.False(t, q.Revealed())

	require.NoError(t, q.Select("a"))
	correct, err = q.Submit()
	require.NoError(t, err)
	assert.False(t, correct)

	assert.Equal(t, []answer{{"q1", true}, {"q2", false}}, rec.got)
	assert.Equal(t, quiz.Score{Answered: 2, Correct: 1, Percentage: 50}, q.Score())
}

func TestQuiz_ScoreEmpty(t *testing.T) {
	q := quiz.New(bank(), nil)
	assert.Equal(t, quiz.Score{}, q.Score())
}

func TestQuiz_ResubmitOverwritesSessionAnswer(t *testing.T) {
	q := quiz.New(bank(), nil)
	require.NoError(t, q.Start())

	require.NoError(t, q.Select("b"))
	_, err := q.Submit()
	require.NoError(t, err)

	q.Next()
	q.Prev()
	require.NoError(t, q.Select("a"))
	_, err = q.Submit()
	require.NoError(t, err)

	assert.Equal(t, quiz.Score{Answered: 1, Correct: 1, Percentage: 100}, q.Score())
}

func TestQuiz_NavigationBounds(t *testing.T) {
	q := quiz.New(bank(), nil)
	require.NoError(t, q.Start())

	assert.False(t, q.Prev())
	for range 3 {
		assert.True(t, q.Next())
	}
	assert.False(t, q.Next())
	assert.Equal(t, 3, q.Index())

	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "q4", cur.ID)
}

func TestQuiz_SetDifficulty(t *testing.T) {
	q := quiz.New(bank(), nil)
	require.NoError(t, q.Start())
	q.Next()
	require.NoError(t, q.Select("a"))

	require.NoError(t, q.SetDifficulty(catalog.Beginner))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 0, q.Index())
	assert.Empty(t, q.Selected())

	cur, _ := q.Current()
	assert.Equal(t, "q1", cur.ID)
	q.Next()
	cur, _ = q.Current()
	assert.Equal(t, "q3", cur.ID)

	require.NoError(t, q.SetDifficulty(""))
	assert.Equal(t, 4, q.Len())

	assert.ErrorIs(t, q.SetDifficulty("expert"), catalog.ErrUnknownValue)
}

func TestQuiz_StartWithoutQuestions(t *testing.T) {
	q := quiz.New(bank(), nil)
	require.NoError(t, q.SetDifficulty(catalog.Advanced))
	require.NoError(t, q.Start())

	empty := quiz.New(nil, nil)
	assert.ErrorIs(t, empty.Start(), quiz.ErrNoQuestions)
	assert.ErrorIs(t, empty.Select("a"), quiz.ErrNoQuestions)
}

func TestQuiz_AnswersRequireStart(t *testing.T) {
	store := session.Open(t.Context(), session.NewMemoryStorage())
	q := quiz.New(bank(), store)

	assert.ErrorIs(t, q.Select("a"), quiz.ErrNotStarted)
	_, err := q.Submit()
	assert.ErrorIs(t, err, quiz.ErrNotStarted)
	assert.Equal(t, quiz.Score{}, q.Score())
	assert.Empty(t, store.State().Progress.AssessmentScores)

	require.NoError(t, q.Start())
	q.Restart()
	assert.ErrorIs(t, q.Select("a"), quiz.ErrNotStarted)
}

func TestQuiz_RestartClearsAnswers(t *testing.T) {
	q := quiz.New(bank(), nil)
	require.NoError(t, q.Start())
	require.NoError(t, q.Select("a"))
	_, err := q.Submit()
	require.NoError(t, err)

	q.Restart()
	assert.False(t, q.Started())
	assert.Equal(t, quiz.Score{}, q.Score())

	require.NoError(t, q.Start())
	assert.True(t, q.Started())
	assert.Equal(t, 0, q.Index())
}

func TestQuiz_SnapshotHidesAnswerUntilRevealed(t *testing.T) {
	q := quiz.New(bank(), nil)
	assert.Nil(t, q.Snapshot().Question)

	require.NoError(t, q.Start())
	s := q.Snapshot()
	require.NotNil(t, s.Question)
	assert.Empty(t, s.Question.CorrectOption)
	assert.Empty(t, s.Question.Explanation)
	assert.Nil(t, s.Correct)
	assert.Len(t, s.Question.Options, 3)

	require.NoError(t, q.Select("c"))
	_, err := q.Submit()
	require.NoError(t, err)

	s = q.Snapshot()
	assert.Equal(t, "a", s.Question.CorrectOption)
	assert.Equal(t, "Because q1", s.Question.Explanation)
	require.NotNil(t, s.Correct)
	assert.False(t, *s.Correct)
}

func TestScoreMonotonicThroughStore(t *testing.T) {
	store := session.Open(t.Context(), session.NewMemoryStorage())
	q := quiz.New(bank(), store)
	require.NoError(t, q.Start())

	for _, opt := range []string{"a", "b", "c", "a"} {
		if q.Revealed() {
			q.Next()
			q.Prev()
		}
		before := store.State().Progress.AssessmentScores["q1"]
		require.NoError(t, q.Select(opt))
		_, err := q.Submit()
		require.NoError(t, err)
		after := store.State().Progress.AssessmentScores["q1"]
		assert.GreaterOrEqual(t, after, before)
	}
	assert.Equal(t, 1, store.State().Progress.AssessmentScores["q1"])
}

func TestOverall(t *testing.T) {
	p := session.NewUserProgress()
	assert.Equal(t, quiz.Mastery{Total: 12}, quiz.Overall(p, 12))

	p.AssessmentScores = map[string]int{"q1": 1, "q2": 0, "q3": 2}
	p.LastAccessed = time.Now()
	assert.Equal(t, quiz.Mastery{Mastered: 2, Total: 3, Percentage: 67}, quiz.Overall(p, 3))

	assert.Equal(t, 0, quiz.Overall(p, 0).Percentage)
}

func TestDefaultBank(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	q := quiz.New(cat.Questions(), nil)
	for _, d := range catalog.Difficulties {
		require.NoError(t, q.SetDifficulty(d))
		assert.Positive(t, q.Len(), d)
	}
	for _, x := range cat.Questions() {
		assert.NotEmpty(t, quiz.CorrectOption(x), x.ID)
	}
}
