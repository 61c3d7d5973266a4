package session

import (
	"slices"
	"time"
)

// UserProgress is the durable learning record. CompletedModules and Bookmarks
// have set semantics and keep insertion order.
type UserProgress struct {
	CompletedModules []string       `json:"completedModules"`
	AssessmentScores map[string]int `json:"assessmentScores"`
	Bookmarks        []string       `json:"bookmarks"`
	LastAccessed     time.Time      `json:"lastAccessed"`
}

func NewUserProgress() UserProgress {
	return UserProgress{
		CompletedModules: []string{},
		AssessmentScores: map[string]int{},
		Bookmarks:        []string{},
	}
}

func (p UserProgress) IsCompleted(moduleID string) bool {
	return slices.Contains(p.CompletedModules, moduleID)
}

func (p UserProgress) IsBookmarked(itemID string) bool {
	return slices.Contains(p.Bookmarks, itemID)
}

// Mastered counts questions with a positive score.
func (p UserProgress) Mastered() int {
	n := 0
	for _, score := range p.AssessmentScores {
		if score > 0 {
			n++
		}
	}
	return n
}
