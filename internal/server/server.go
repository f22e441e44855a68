// Package server is the local HTTP surface of formc: record storage,
// preview compilation, published forms and a submission sink for testing
// compiled forms end to end.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/logger"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/pipeline"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/publish"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/store"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Server wires the HTTP routes to the build services.
type Server struct {
	pipeline  *pipeline.Pipeline
	store     *store.Store
	publisher *publish.Service
	log       logger.Logger
	router    *mux.Router
}

// New builds the router. st and pub may be nil, in which case the record
// and publish routes answer 503.
func New(p *pipeline.Pipeline, st *store.Store, pub *publish.Service, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{pipeline: p, store: st, publisher: pub, log: log}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/forms/{formId}/", s.handlePublished).Methods(http.MethodGet)
	r.HandleFunc("/forms/{formId}/{file}", s.handlePublished).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/preview", s.handlePreview).Methods(http.MethodPost)
	api.HandleFunc("/submissions", s.handleSubmission).Methods(http.MethodPost)
	api.HandleFunc("/forms", s.handleListForms).Methods(http.MethodGet)
	api.HandleFunc("/forms/{formId}/record", s.handleSaveRecord).Methods(http.MethodPut)
	api.HandleFunc("/forms/{formId}/record", s.handleGetRecord).Methods(http.MethodGet)
	api.HandleFunc("/forms/{formId}/publish", s.handlePublish).Methods(http.MethodPost)
	api.HandleFunc("/forms/{formId}/publications", s.handlePublications).Methods(http.MethodGet)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenConfig holds the listener settings.
type ListenConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg ListenConfig) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", logger.Fields{"address": cfg.Address})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("server shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
