// Package web serves the chart dashboard: an HTML page plus a JSON
// endpoint exposing the collected price series.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/getrepo/trade/internal/services/collector"
)

type chartDataSource interface {
	ChartData() ([]collector.Series, error)
}

// Server exposes HTTP endpoints serving the chart UI and its data.
type Server struct {
	Addr   string
	Charts chartDataSource
	Log    *zap.Logger
}

// NewServer creates a dashboard server.
func NewServer(addr string, charts chartDataSource, log *zap.Logger) *Server {
	return &Server{Addr: addr, Charts: charts, Log: log}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/charts", s.handleCharts)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic certificates via
// ACME, plus an HTTP server on port 80 for the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domain, certDir string) error {
	if domain == "" {
		return fmt.Errorf("no domain provided for automatic TLS")
	}
	if certDir == "" {
		certDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domain),
		Cache:      autocert.DirCache(certDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		_ = httpsSrv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("acme http server failed", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// handleCharts serves the collected series as JSON. An optional filter
// query parameter restricts the output to a comma-separated instrument
// list, e.g. /charts?filter=BTC,XRP.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	series, err := s.Charts.ChartData()
	if err != nil {
		s.Log.Error("chart data load failed", zap.Error(err))
		http.Error(w, "failed to load chart data", http.StatusInternalServerError)
		return
	}

	if filter := r.URL.Query().Get("filter"); filter != "" {
		wanted := make(map[string]bool)
		for _, name := range strings.Split(filter, ",") {
			if name = strings.ToUpper(strings.TrimSpace(name)); name != "" {
				wanted[name] = true
			}
		}

		filtered := series[:0]
		for _, set := range series {
			if wanted[set.Instrument] {
				filtered = append(filtered, set)
			}
		}
		series = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(series); err != nil {
		s.Log.Error("chart data encode failed", zap.Error(err))
	}
}
