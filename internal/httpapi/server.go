package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/iurisrag/healthcheck/internal/health"
	"github.com/iurisrag/healthcheck/internal/httpapi/middleware"
	"github.com/iurisrag/healthcheck/internal/report"
)

// ReportSource exposes the latest finalized health report.
type ReportSource interface {
	Latest() *health.Report
}

// Server serves the latest report over HTTP so monitors can poll the
// engine instead of shelling out to it.
type Server struct {
	Logger  *zap.Logger
	Reports ReportSource
	Keys    []string
	RPM     int
	Burst   int
}

func NewServer(l *zap.Logger, src ReportSource, keys []string) *Server {
	return &Server{Logger: l, Reports: src, Keys: keys, RPM: 120, Burst: 30}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireKey(s.Keys))
		r.Use(middleware.RateLimit(float64(s.RPM)/60.0, s.Burst))
		r.Get("/api/report", s.handleReport)
	})

	return r
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep := s.Reports.Latest()
	if rep == nil {
		http.Error(w, "no run completed yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, rep); err != nil {
		s.Logger.Warn("report_encode_failed", zap.Error(err))
	}
}
