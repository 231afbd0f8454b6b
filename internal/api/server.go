package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/extractify/internal/bulk"
	"github.com/MikeSquared-Agency/extractify/internal/events"
	"github.com/MikeSquared-Agency/extractify/internal/extractor"
	"github.com/MikeSquared-Agency/extractify/internal/metrics"
	"github.com/MikeSquared-Agency/extractify/internal/store"
)

const Version = "2.0.0"

// ConversationStore is the persistence the API depends on. *store.Store
// satisfies it.
type ConversationStore interface {
	SaveConversation(ctx context.Context, c store.NewConversation) (store.Conversation, error)
	ListConversations(ctx context.Context) ([]store.Conversation, error)
	GetConversation(ctx context.Context, id string) (store.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type Options struct {
	Port        int
	CORSOrigins []string
	APIToken    string // optional bearer token for write routes
	Store       ConversationStore
	Extractor   *extractor.Extractor
	Events      events.Publisher
	Logger      *slog.Logger
}

type Server struct {
	router    *chi.Mux
	http      *http.Server
	store     ConversationStore
	extractor *extractor.Extractor
	bulk      *bulk.Runner
	events    events.Publisher
	logger    *slog.Logger
}

func NewServer(opts Options) *Server {
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router: router,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:     opts.Store,
		extractor: opts.Extractor,
		bulk:      bulk.NewRunner(opts.Extractor, opts.Logger),
		events:    opts.Events,
		logger:    opts.Logger,
	}

	router.Get("/", s.root)
	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/extract", s.extract)
	router.Post("/extract-bulk", s.extractBulk)

	router.Route("/conversations", func(r chi.Router) {
		r.Get("/", s.listConversations)
		r.Get("/export", s.exportConversations)
		r.Get("/{id}", s.getConversation)

		r.Group(func(w chi.Router) {
			w.Use(BearerAuthMiddleware(opts.APIToken))
			w.Post("/", s.createConversation)
			w.Post("/bulk-save", s.bulkSave)
			w.Delete("/{id}", s.deleteConversation)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown. It returns http.ErrServerClosed once the
// server has been shut down, including when Shutdown ran first.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	feature := "regex_only"
	if s.extractor.LLMAvailable() {
		feature = "llm_extraction"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Welcome to Extractify Backend API",
		"version":  Version,
		"features": []string{"regex_extraction", feature},
		"database": "postgres",
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status, database := "healthy", "connected"
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("database ping failed", "error", err)
		status, database = "degraded", "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        status,
		"llm_available": s.extractor.LLMAvailable(),
		"database":      database,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
