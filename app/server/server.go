package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"GoRAGWorkshop/app/chat"
	"GoRAGWorkshop/app/ingest"
	"GoRAGWorkshop/app/rag"
	"GoRAGWorkshop/app/storage"
)

const (
	chatTimeout     = 2 * time.Minute
	maxChatBody     = 1 << 20
	maxUploadBody   = 64 << 20
	shutdownTimeout = 10 * time.Second
)

type Options struct {
	DocsDir        string
	InitSplitter   *rag.Splitter
	UploadSplitter *rag.Splitter
}

type Server struct {
	chat     *chat.Handler
	pipeline *ingest.Pipeline
	ledger   storage.Interface
	store    rag.VectorStore
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

func New(chatHandler *chat.Handler, pipeline *ingest.Pipeline, store rag.VectorStore, ledger storage.Interface,
	opts Options, logger *zap.Logger) *Server {
	return &Server{
		chat:     chatHandler,
		pipeline: pipeline,
		ledger:   ledger,
		store:    store,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.With(middleware.Timeout(chatTimeout)).Post("/chat", s.handleChat)
	r.Route("/ingest", func(r chi.Router) {
		r.Post("/", s.handleIngest)
		r.Post("/init", s.handleIngestInit)
		r.Get("/history", s.handleHistory)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "route not found"})
	})
	return r
}

// ListenAndServe blocks until ctx is done or the listener fails, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
