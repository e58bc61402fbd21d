// Package server exposes the published top list, a manual refresh trigger and
// Prometheus metrics over local HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/srodi/appimpact/pkg/engine"
	"github.com/srodi/appimpact/pkg/insight"
	"github.com/srodi/appimpact/pkg/report"
	"github.com/srodi/appimpact/pkg/types"
)

const shutdownTimeout = 3 * time.Second

// Publisher is the part of the orchestrator the server reads from.
type Publisher interface {
	Snapshot() engine.Snapshot
	State() engine.State
	Refresh() bool
}

// AppView is one ranked app plus its human-readable explanation.
type AppView struct {
	types.AppImpact
	Details string `json:"details"`
	Tooltip string `json:"tooltip"`
}

// TopResponse is the body of GET /api/top.
type TopResponse struct {
	Cycle     uint64    `json:"cycle"`
	UpdatedAt time.Time `json:"updated_at"`
	State     string    `json:"state"`
	Apps      []AppView `json:"apps"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// Server serves the HTTP surface.
type Server struct {
	pub      Publisher
	insights *insight.Registry
	router   *mux.Router
	log      *logrus.Entry
}

// New wires the routes. metrics may be nil to leave /metrics out.
func New(pub Publisher, insights *insight.Registry, metrics http.Handler, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.WithField("component", "server")
	}
	s := &Server{pub: pub, insights: insights, router: mux.NewRouter(), log: log}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/top", s.getTop).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.postRefresh).Methods(http.MethodPost)
	if metrics != nil {
		s.router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) getTop(w http.ResponseWriter, r *http.Request) {
	snap := s.pub.Snapshot()
	resp := TopResponse{
		Cycle:     snap.Cycle,
		UpdatedAt: snap.UpdatedAt,
		State:     s.pub.State().String(),
		Apps:      make([]AppView, 0, len(snap.Apps)),
	}
	for _, app := range snap.Apps {
		resp.Apps = append(resp.Apps, AppView{
			AppImpact: app,
			Details:   report.Details(app),
			Tooltip:   report.Tooltip(app, s.insights),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) postRefresh(w http.ResponseWriter, r *http.Request) {
	if s.pub.Refresh() {
		s.writeJSON(w, http.StatusAccepted, statusResponse{Status: "started"})
		return
	}
	s.writeJSON(w, http.StatusConflict, statusResponse{Status: "busy"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Debug("writing response failed")
	}
}
