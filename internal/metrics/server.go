// Package metrics serves the prometheus registry over HTTP.
package metrics

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storsim/internal/config"
)

type Server struct {
	Logger *slog.Logger
	Config *config.Config

	srv *http.Server
}

func (s *Server) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "metrics.Server")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.srv = &http.Server{Addr: s.Config.MetricsAddr, Handler: mux}

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}

	s.Logger.Info("Starting HTTP server", "addr", s.srv.Addr)
	go s.srv.Serve(ln) //nolint:errcheck

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
