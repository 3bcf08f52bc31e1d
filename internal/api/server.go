// Package api serves the research dashboard REST API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies, render input included.
const maxBodyBytes = 1 << 20

// Options configures NewHandler.
type Options struct {
	// CORSOrigins lists browser origins allowed to call the API. "*" allows any.
	CORSOrigins []string
	// Registry receives the HTTP and engine metrics. Nil creates a private one.
	Registry *prometheus.Registry
}

// NewHandler builds the router with all routes and middleware.
func NewHandler(opts Options) http.Handler {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := newHTTPMetrics(reg)
	reg.MustRegister(engineCollector{})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors(opts.CORSOrigins))
	r.Use(m.instrument)

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/topics", handleTopics)
		r.Post("/script", handleScript)
		r.Post("/research", handleResearch)
		r.Post("/render", handleRender)
		r.Get("/history", handleHistoryList)
		r.Get("/history/{id}", handleHistoryGet)
		r.Get("/history/{id}/html", handleHistoryHTML)
	})
	return r
}

// NewServer wraps the handler with the timeouts used in production.
// Research runs call scrapers and the LLM in sequence, so writes get minutes.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      600 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
