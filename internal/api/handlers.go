package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/p-n-ai/statsmd/internal/casebook"
	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/glossary"
	"github.com/p-n-ai/statsmd/internal/guide"
	"github.com/p-n-ai/statsmd/internal/quiz"
	"github.com/p-n-ai/statsmd/internal/recommend"
	"github.com/p-n-ai/statsmd/internal/regression"
	"github.com/p-n-ai/statsmd/internal/session"
)

const readyTimeout = 2 * time.Second

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Reference tables.

func (s *Server) handleTests(w http.ResponseWriter, r *http.Request) {
	s.withETag(w, r, map[string]any{"tests": s.cat.Tests()})
}

func (s *Server) handleAssumptions(w http.ResponseWriter, r *http.Request) {
	s.withETag(w, r, map[string]any{"assumptions": s.cat.Assumptions()})
}

func (s *Server) handleStudyDesigns(w http.ResponseWriter, r *http.Request) {
	s.withETag(w, r, map[string]any{"study_designs": s.cat.StudyDesigns()})
}

func (s *Server) handleRegressionModels(w http.ResponseWriter, r *http.Request) {
	s.withETag(w, r, map[string]any{"regression_models": s.cat.RegressionModels()})
}

type alternativeName struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	t, ok := s.cat.Test(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "test not found")
		return
	}
	alts := []alternativeName{}
	for _, id := range t.Alternatives {
		if alt, ok := s.cat.Test(id); ok {
			alts = append(alts, alternativeName{ID: alt.ID, DisplayName: alt.DisplayName})
		}
	}
	s.withETag(w, r, map[string]any{
		"test":         t,
		"assumptions":  recommend.RelevantAssumptions(s.cat.Assumptions(), t),
		"alternatives": alts,
	})
}

// Recommendations.

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := s.store.State().Selection()
	if q.Has("outcome") || q.Has("design") || q.Has("comparison") {
		var err error
		sel, err = parseSelection(q.Get("outcome"), q.Get("design"), q.Get("comparison"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	tests := recommend.Recommend(s.cat.Tests(), sel)
	resp := map[string]any{"selection": sel, "tests": tests}
	switch {
	case !sel.Complete():
		resp["message"] = "select an outcome type and a study design to see recommendations"
	case len(tests) == 0:
		resp["message"] = "no tests match this combination; try relaxing the comparison type"
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseSelection(outcome, design, comparison string) (recommend.Selection, error) {
	o, err := catalog.ParseVariableType(outcome)
	if err != nil {
		return recommend.Selection{}, err
	}
	d, err := catalog.ParseStudyDesignType(design)
	if err != nil {
		return recommend.Selection{}, err
	}
	c, err := catalog.ParseComparisonType(comparison)
	if err != nil {
		return recommend.Selection{}, err
	}
	return recommend.Selection{Outcome: o, Design: d, Comparison: c}, nil
}

// Session state.

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !s.decode(w, r, &req) {
		return
	}

	predictors := make([]catalog.Variable, 0, len(req.Predictors))
	for _, p := range req.Predictors {
		role := p.Role
		if role == "" {
			role = catalog.RolePredictor
		}
		predictors = append(predictors, catalog.Variable{
			ID: p.ID, Name: p.Name, Type: p.Type, Description: p.Description, Role: role,
		})
	}

	s.store.Update(func(st *session.State) {
		st.Outcome = req.Outcome
		st.Design = req.Design
		st.Comparison = req.Comparison
		st.Predictors = predictors
		st.SampleSize = req.SampleSize
		st.Paired = req.Paired
	})
	writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.ResetSelections()
	writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.SetView(req.View); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleDarkMode()
	writeJSON(w, http.StatusOK, s.store.State())
}

// Progress.

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p := s.store.State().Progress
	writeJSON(w, http.StatusOK, map[string]any{
		"progress": p,
		"mastery":  quiz.Overall(p, len(s.cat.Questions())),
	})
}

func (s *Server) handleCompleteModule(w http.ResponseWriter, r *http.Request) {
	s.store.CompleteModule(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, s.store.State().Progress)
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	s.store.ToggleBookmark(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, s.store.State().Progress)
}

func (s *Server) handleClearScores(w http.ResponseWriter, r *http.Request) {
	s.store.ClearScores()
	writeJSON(w, http.StatusOK, s.store.State().Progress)
}

// Assumption checker.

func (s *Server) handleChecker(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.checker.Snapshot())
}

func (s *Server) handleCheckerSelect(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checker.Select(req.TestID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.checker.Snapshot())
}

func (s *Server) handleCheckerToggle(w http.ResponseWriter, r *http.Request) {
	var req assumptionRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checker.Test(); !ok {
		writeError(w, http.StatusBadRequest, "no test selected")
		return
	}
	if !s.checker.Toggle(req.Assumption) {
		writeError(w, http.StatusBadRequest, "assumption does not apply to the selected test")
		return
	}
	writeJSON(w, http.StatusOK, s.checker.Snapshot())
}

func (s *Server) handleCheckerExpand(w http.ResponseWriter, r *http.Request) {
	var req assumptionRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checker.Expand(req.Assumption)
	writeJSON(w, http.StatusOK, s.checker.Snapshot())
}

// Glossary.

func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category != "" && category != glossary.AllCategories {
		if _, err := catalog.ParseGlossaryCategory(category); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	terms := s.glossary.Search(glossary.Query{Text: q.Get("q"), Category: category})
	writeJSON(w, http.StatusOK, map[string]any{"terms": terms})
}

func (s *Server) handleGlossaryCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.glossary.Categories()})
}

func (s *Server) handleGlossaryTerm(w http.ResponseWriter, r *http.Request) {
	t, ok := s.glossary.Term(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "term not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"term": t, "related": s.glossary.Related(t)})
}

// Case library.

type caseSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Server) handleCases(w http.ResponseWriter, r *http.Request) {
	out := make([]caseSummary, 0, len(s.cat.Cases()))
	for _, c := range s.cat.Cases() {
		out = append(out, caseSummary{ID: c.ID, Title: c.Title})
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": out})
}

func (s *Server) handleCurrentCase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.practice.Snapshot())
}

func (s *Server) handleSelectCase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.practice.Select(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.practice.Snapshot())
}

func (s *Server) handleAnswerCase(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.practice.Answer(req.TestID)
	switch {
	case errors.Is(err, casebook.ErrNoCase), errors.Is(err, casebook.ErrNotAnOption):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNextCase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.practice.Next(); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.practice.Snapshot())
}

func (s *Server) handleResetCase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.practice.Reset()
	writeJSON(w, http.StatusOK, s.practice.Snapshot())
}

// Quiz.

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.quiz.Start(); err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func (s *Server) handleQuizRestart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quiz.Restart()
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func (s *Server) handleQuizDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.quiz.SetDifficulty(req.Difficulty); err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func (s *Server) handleQuizSelect(w http.ResponseWriter, r *http.Request) {
	var req optionRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.quiz.Select(req.OptionID); err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.quiz.Submit(); err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func (s *Server) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quiz.Next()
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func (s *Server) handleQuizPrev(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quiz.Prev()
	writeJSON(w, http.StatusOK, s.quiz.Snapshot())
}

func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNoQuestions),
		errors.Is(err, quiz.ErrNoSelection),
		errors.Is(err, quiz.ErrUnknownOption),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNotStarted),
		errors.Is(err, catalog.ErrUnknownValue):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Regression playground and study guide.

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request) {
	pg, ok := regression.Lookup(s.cat, chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "regression model not found")
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

var guideTypes = map[guide.Format]string{
	guide.FormatHTML:     "text/html; charset=utf-8",
	guide.FormatMarkdown: "text/markdown; charset=utf-8",
	guide.FormatXLSX:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	f := guide.FormatHTML
	if r.URL.Path != "/guide" {
		var err error
		if f, err = guide.FormatFor(r.URL.Path); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}

	data, err := guide.Render(s.cat, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", guideTypes[f])
	if f != guide.FormatHTML {
		w.Header().Set("Content-Disposition", `attachment; filename="statsmd-guide.`+string(f)+`"`)
	}
	if _, err := w.Write(data); err != nil {
		slog.Warn("writing study guide", "format", f, "error", err)
	}
}
