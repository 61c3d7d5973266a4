package quiz

import "github.com/p-n-ai/statsmd/internal/catalog"

// OptionView is an option with its correctness withheld.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is what a learner sees. Correctness and explanation are only
// filled in once the answer is revealed.
type QuestionView struct {
	ID            string               `json:"id"`
	Type          catalog.QuestionType `json:"type"`
	Question      string               `json:"question"`
	Scenario      string               `json:"scenario,omitempty"`
	Options       []OptionView         `json:"options"`
	Difficulty    catalog.Difficulty   `json:"difficulty"`
	Tags          []string             `json:"tags"`
	Explanation   string               `json:"explanation,omitempty"`
	CorrectOption string               `json:"correct_option,omitempty"`
}

// Snapshot is a serializable view of a Quiz.
type Snapshot struct {
	Started    bool               `json:"started"`
	Difficulty catalog.Difficulty `json:"difficulty,omitempty"`
	Index      int                `json:"index"`
	Total      int                `json:"total"`
	Question   *QuestionView      `json:"question,omitempty"`
	Selected   string             `json:"selected,omitempty"`
	Revealed   bool               `json:"revealed"`
	Correct    *bool              `json:"correct,omitempty"`
	Score      Score              `json:"score"`
}

func (q *Quiz) Snapshot() Snapshot {
	s := Snapshot{
		Started:    q.started,
		Difficulty: q.difficulty,
		Index:      q.index,
		Total:      len(q.questions),
		Selected:   q.selected,
		Revealed:   q.revealed,
		Score:      q.Score(),
	}
	cur, ok := q.Current()
	if !ok || !q.started {
		return s
	}

	v := &QuestionView{
		ID:         cur.ID,
		Type:       cur.Type,
		Question:   cur.Question,
		Scenario:   cur.Scenario,
		Options:    make([]OptionView, 0, len(cur.Options)),
		Difficulty: cur.Difficulty,
		Tags:       cur.Tags,
	}
	for _, o := range cur.Options {
		v.Options = append(v.Options, OptionView{ID: o.ID, Text: o.Text})
	}
	if q.revealed {
		v.Explanation = cur.Explanation
		v.CorrectOption = CorrectOption(cur)
		correct := q.answers[cur.ID]
		s.Correct = &correct
	}
	s.Question = v
	return s
}
