// Package quiz runs assessment sessions over the question bank.
package quiz

import (
	"errors"
	"fmt"
	"math"

	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/session"
)

var (
	ErrNoQuestions     = errors.New("no questions")
	ErrNoSelection     = errors.New("no option selected")
	ErrUnknownOption   = errors.New("unknown option")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotStarted      = errors.New("quiz not started")
)

// Recorder receives every submitted answer. *session.Store implements it.
type Recorder interface {
	RecordAnswer(questionID string, correct bool)
}

// Score summarizes the answers given in the current session.
type Score struct {
	Answered   int     `json:"answered"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

// Mastery summarizes durable progress across the whole question bank.
type Mastery struct {
	Mastered   int `json:"mastered"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Quiz walks through the questions of one difficulty (or all of them). It is
// not safe for concurrent use.
type Quiz struct {
	bank     []catalog.AssessmentQuestion
	recorder Recorder

	difficulty catalog.Difficulty
	questions  []catalog.AssessmentQuestion
	started    bool
	index      int
	selected   string
	revealed   bool
	answers    map[string]bool
}

// New creates a quiz over questions. A nil recorder discards answers.
func New(questions []catalog.AssessmentQuestion, recorder Recorder) *Quiz {
	q := &Quiz{
		bank:     questions,
		recorder: recorder,
		answers:  map[string]bool{},
	}
	q.questions = q.filter()
	return q
}

func (q *Quiz) filter() []catalog.AssessmentQuestion {
	if q.difficulty == "" {
		return q.bank
	}
	var out []catalog.AssessmentQuestion
	for _, x := range q.bank {
		if x.Difficulty == q.difficulty {
			out = append(out, x)
		}
	}
	return out
}

// SetDifficulty restricts the quiz to d; the empty difficulty means all
// questions. The position, selection and reveal are cleared.
func (q *Quiz) SetDifficulty(d catalog.Difficulty) error {
	if d != "" && !d.Valid() {
		return fmt.Errorf("difficulty %q: %w", d, catalog.ErrUnknownValue)
	}
	q.difficulty = d
	q.questions = q.filter()
	q.index = 0
	q.selected = ""
	q.revealed = false
	return nil
}

func (q *Quiz) Difficulty() catalog.Difficulty { return q.difficulty }

// Start begins a fresh session at the first question.
func (q *Quiz) Start() error {
	if len(q.questions) == 0 {
		return ErrNoQuestions
	}
	q.reset()
	q.started = true
	return nil
}

// Restart abandons the session and returns to the not-started state.
func (q *Quiz) Restart() {
	q.reset()
	q.started = false
}

func (q *Quiz) reset() {
	q.index = 0
	q.selected = ""
	q.revealed = false
	q.answers = map[string]bool{}
}

func (q *Quiz) Started() bool { return q.started }

// Current returns the question at the current position.
func (q *Quiz) Current() (catalog.AssessmentQuestion, bool) {
	if q.index >= len(q.questions) {
		return catalog.AssessmentQuestion{}, false
	}
	return q.questions[q.index], true
}

func (q *Quiz) Index() int     { return q.index }
func (q *Quiz) Len() int       { return len(q.questions) }
func (q *Quiz) Revealed() bool { return q.revealed }

// Selected returns the chosen option id, or "".
func (q *Quiz) Selected() string { return q.selected }

// Select picks optionID for the current question.
func (q *Quiz) Select(optionID string) error {
	cur, ok := q.Current()
	if !ok {
		return ErrNoQuestions
	}
	if !q.started {
		return ErrNotStarted
	}
	if q.revealed {
		return ErrAlreadyAnswered
	}
	if _, ok := option(cur, optionID); !ok {
		return fmt.Errorf("option %q: %w", optionID, ErrUnknownOption)
	}
	q.selected = optionID
	return nil
}

// Submit grades the selection, reveals the explanation and forwards the
// result to the recorder.
func (q *Quiz) Submit() (bool, error) {
	cur, ok := q.Current()
	if !ok {
		return false, ErrNoQuestions
	}
	if !q.started {
		return false, ErrNotStarted
	}
	if q.revealed {
		return false, ErrAlreadyAnswered
	}
	if q.selected == "" {
		return false, ErrNoSelection
	}

	opt, _ := option(cur, q.selected)
	q.answers[cur.ID] = opt.IsCorrect
	q.revealed = true
	if q.recorder != nil {
		q.recorder.RecordAnswer(cur.ID, opt.IsCorrect)
	}
	return opt.IsCorrect, nil
}

// Next moves forward one question. It reports false at the last question.
func (q *Quiz) Next() bool {
	if q.index >= len(q.questions)-1 {
		return false
	}
	q.index++
	q.selected = ""
	q.revealed = false
	return true
}

// Prev moves back one question. It reports false at the first question.
func (q *Quiz) Prev() bool {
	if q.index == 0 {
		return false
	}
	q.index--
	q.selected = ""
	q.revealed = false
	return true
}

// Score is recomputed from the session answers on every call.
func (q *Quiz) Score() Score {
	s := Score{Answered: len(q.answers)}
	for _, correct := range q.answers {
		if correct {
			s.Correct++
		}
	}
	if s.Answered > 0 {
		s.Percentage = float64(s.Correct) / float64(s.Answered) * 100
	}
	return s
}

// Overall reports how many of total questions are mastered in p.
func Overall(p session.UserProgress, total int) Mastery {
	m := Mastery{Mastered: p.Mastered(), Total: total}
	if total > 0 {
		m.Percentage = int(math.Round(float64(m.Mastered) / float64(total) * 100))
	}
	return m
}

// CorrectOption returns the id of the option flagged correct.
func CorrectOption(q catalog.AssessmentQuestion) string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return ""
}

func option(q catalog.AssessmentQuestion, id string) (catalog.Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return catalog.Option{}, false
}
