// Package mockapi is an in-process implementation of the facility API, used to exercise the
// contract tests without a real deployment.
//
// Identifiers are UUIDs. A path id that is not a UUID gets a 400 response; a well-formed id
// that matches nothing gets a 404. A known path with an unsupported method gets a 405.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/pointr-qa/facility-contract-tests/mockapi/store"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

const (
	idPattern       = "/{id}"
	shutdownTimeout = time.Second * 5
)

// Server serves the facility API from a Store.
type Server struct {
	handler http.Handler
}

// NewServer returns a Server backed by s. It does not seed s.
func NewServer(s store.Store) *Server {
	h := &handlers{store: s}
	router := mux.NewRouter()

	router.HandleFunc(servicedef.PathRoot, h.root).Methods(http.MethodGet)
	router.HandleFunc(servicedef.PathHealth, h.health).Methods(http.MethodGet)

	router.HandleFunc(servicedef.PathSites, h.listSites).Methods(http.MethodGet)
	router.HandleFunc(servicedef.PathSites, h.createSite).Methods(http.MethodPost)
	router.HandleFunc(servicedef.PathSites+idPattern, h.getSite).Methods(http.MethodGet)
	router.HandleFunc(servicedef.PathSites+idPattern, h.updateSite).Methods(http.MethodPut)
	router.HandleFunc(servicedef.PathSites+idPattern, h.deleteSite).Methods(http.MethodDelete)

	router.HandleFunc(servicedef.PathBuildings, h.listBuildings).Methods(http.MethodGet)
	router.HandleFunc(servicedef.PathBuildings, h.createBuilding).Methods(http.MethodPost)
	router.HandleFunc(servicedef.PathBuildings+idPattern, h.getBuilding).Methods(http.MethodGet)
	router.HandleFunc(servicedef.PathBuildings+idPattern, h.deleteBuilding).Methods(http.MethodDelete)

	router.HandleFunc(servicedef.PathLevels, h.listLevels).Methods(http.MethodGet)
	router.HandleFunc(servicedef.PathLevels, h.createLevels).Methods(http.MethodPost)
	router.HandleFunc(servicedef.PathLevels+idPattern, h.getLevel).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "no such resource")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.Use(logRequests)

	return &Server{handler: cors.AllowAll().Handler(router)}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: time.Second * 10,
	}
	slog.Info("mock facility API listening", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(started),
		)
	})
}
