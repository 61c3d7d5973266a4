// Package api serves the single-session view layer over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/p-n-ai/statsmd/internal/casebook"
	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/glossary"
	"github.com/p-n-ai/statsmd/internal/quiz"
	"github.com/p-n-ai/statsmd/internal/recommend"
	"github.com/p-n-ai/statsmd/internal/session"
)

// Server owns the HTTP routes and the per-session interactive state.
type Server struct {
	cat      *catalog.Catalog
	store    *session.Store
	glossary *glossary.Index
	validate *validator.Validate
	hub      *Hub
	router   chi.Router

	unsubscribe func()

	// mu guards the interactive components below.
	mu       sync.Mutex
	checker  *recommend.Checker
	quiz     *quiz.Quiz
	practice *casebook.Practice
}

// New wires the routes for cat and store. Close releases the store
// subscription.
func New(cat *catalog.Catalog, store *session.Store) *Server {
	s := &Server{
		cat:      cat,
		store:    store,
		glossary: glossary.New(cat.Glossary()),
		validate: newValidator(),
		hub:      NewHub(),
		checker:  recommend.NewChecker(cat),
		quiz:     quiz.New(cat.Questions(), store),
		practice: casebook.New(cat),
	}
	s.unsubscribe = store.Subscribe(s.broadcast)
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close detaches from the store and disconnects websocket subscribers.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.Close()
}

func (s *Server) broadcast(st session.State) {
	msg, err := json.Marshal(st)
	if err != nil {
		slog.Error("encoding state notification", "error", err)
		return
	}
	s.hub.Broadcast(msg)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/ws", s.handleWebsocket)

	r.Get("/guide", s.handleGuide)
	r.Get("/guide.md", s.handleGuide)
	r.Get("/guide.xlsx", s.handleGuide)

	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/tests", s.handleTests)
			r.Get("/tests/{id}", s.handleTest)
			r.Get("/assumptions", s.handleAssumptions)
			r.Get("/study-designs", s.handleStudyDesigns)
			r.Get("/regression-models", s.handleRegressionModels)
		})

		r.Get("/recommendations", s.handleRecommendations)

		r.Route("/state", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Put("/selection", s.handleSetSelection)
			r.Post("/reset", s.handleReset)
			r.Put("/view", s.handleSetView)
			r.Post("/theme/toggle", s.handleToggleTheme)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", s.handleProgress)
			r.Post("/modules/{id}", s.handleCompleteModule)
			r.Post("/bookmarks/{id}", s.handleToggleBookmark)
			r.Delete("/scores", s.handleClearScores)
		})

		r.Route("/checker", func(r chi.Router) {
			r.Get("/", s.handleChecker)
			r.Post("/select", s.handleCheckerSelect)
			r.Post("/toggle", s.handleCheckerToggle)
			r.Post("/expand", s.handleCheckerExpand)
		})

		r.Route("/glossary", func(r chi.Router) {
			r.Get("/", s.handleGlossary)
			r.Get("/categories", s.handleGlossaryCategories)
			r.Get("/{id}", s.handleGlossaryTerm)
		})

		r.Route("/cases", func(r chi.Router) {
			r.Get("/", s.handleCases)
			r.Get("/current", s.handleCurrentCase)
			r.Post("/{id}/select", s.handleSelectCase)
			r.Post("/answer", s.handleAnswerCase)
			r.Post("/next", s.handleNextCase)
			r.Post("/reset", s.handleResetCase)
		})

		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", s.handleQuiz)
			r.Post("/start", s.handleQuizStart)
			r.Post("/restart", s.handleQuizRestart)
			r.Put("/difficulty", s.handleQuizDifficulty)
			r.Post("/select", s.handleQuizSelect)
			r.Post("/submit", s.handleQuizSubmit)
			r.Post("/next", s.handleQuizNext)
			r.Post("/prev", s.handleQuizPrev)
		})

		r.Get("/regression", s.handleRegression)
		r.Get("/regression/{id}", s.handleRegression)
	})

	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
