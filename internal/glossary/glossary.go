// Package glossary searches the glossary table.
package glossary

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// Query selects glossary entries. An empty Text matches every entry; an
// empty or "all" Category disables the category filter.
type Query struct {
	Text     string
	Category string
}

// Index answers queries over a fixed glossary table.
type Index struct {
	terms  []catalog.GlossaryTerm
	byID   map[string]int
	folded []entry
}

type entry struct {
	term       string
	definition string
}

func New(terms []catalog.GlossaryTerm) *Index {
	fold := cases.Fold()
	idx := &Index{
		terms:  terms,
		byID:   make(map[string]int, len(terms)),
		folded: make([]entry, len(terms)),
	}
	for i, t := range terms {
		idx.byID[t.ID] = i
		idx.folded[i] = entry{term: fold.String(t.Term), definition: fold.String(t.Definition)}
	}
	return idx
}

// Search returns matching entries in table order. Text matches a
// case-folded substring of the term or the definition.
func (x *Index) Search(q Query) []catalog.GlossaryTerm {
	needle := cases.Fold().String(strings.TrimSpace(q.Text))
	out := []catalog.GlossaryTerm{}
	for i, t := range x.terms {
		if q.Category != "" && q.Category != AllCategories && string(t.Category) != q.Category {
			continue
		}
		e := x.folded[i]
		if needle != "" && !strings.Contains(e.term, needle) && !strings.Contains(e.definition, needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Categories lists "all" followed by each category present, in order of
// first appearance.
func (x *Index) Categories() []string {
	out := []string{AllCategories}
	seen := map[catalog.GlossaryCategory]bool{}
	for _, t := range x.terms {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, string(t.Category))
		}
	}
	return out
}

// Term returns the entry with id.
func (x *Index) Term(id string) (catalog.GlossaryTerm, bool) {
	i, ok := x.byID[id]
	if !ok {
		return catalog.GlossaryTerm{}, false
	}
	return x.terms[i], true
}

// Related resolves the related term ids of t, dropping the ones with no entry.
func (x *Index) Related(t catalog.GlossaryTerm) []catalog.GlossaryTerm {
	out := []catalog.GlossaryTerm{}
	for _, id := range t.RelatedTerms {
		if r, ok := x.Term(id); ok {
			out = append(out, r)
		}
	}
	return out
}
