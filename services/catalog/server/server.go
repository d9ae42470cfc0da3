// Package server exposes the merged dataset read-only over HTTP. It does
// no filtering or querying of its own: the front end gets the flat record
// list plus the last-run timestamp and applies its own predicates.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catwatch-backend/services/catalog"
	"catwatch-backend/services/catalog/store"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catwatch_requests_total",
		Help: "Requests served, by route and status.",
	},
	[]string{"route", "status"},
)

type Server struct {
	store   *store.Store
	limiter *ipLimiter
}

func New(st *store.Store, requestsPerMinute int) *Server {
	return &Server{
		store:   st,
		limiter: newIpLimiter(requestsPerMinute),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.limiter.middleware)

	r.Get("/api/cats", s.handleCats)
	r.Get("/api/meta", s.handleMeta)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) handleCats(w http.ResponseWriter, r *http.Request) {
	cats := s.store.Load()
	if cats == nil {
		// no dataset yet is an empty list, not an error
		cats = []catalog.CatRecord{}
	}
	writeJson(w, "cats", http.StatusOK, cats)
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := s.store.LoadMeta()
	if err != nil {
		requestsTotal.WithLabelValues("meta", "404").Inc()
		http.Error(w, "no completed run yet", http.StatusNotFound)
		return
	}
	writeJson(w, "meta", http.StatusOK, meta)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	requestsTotal.WithLabelValues("healthz", "200").Inc()
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJson(w http.ResponseWriter, route string, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to encode response", "route", route, "err", err)
	}
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
