package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"loganalyser/internal/db"
	"loganalyser/internal/handlers/api"
	"loganalyser/internal/metrics"
)

// RegisterRoutes registers all application routes.
// recorder may be nil, in which case /metrics is not served.
func (s *Server) RegisterRoutes(store db.Store, recorder *metrics.Recorder) {
	// Initialize handlers
	analysisHandler := api.NewAnalysisHandler(store, recorder)
	probeHandler := api.NewProbeHandler(store)

	// Probes
	s.App.Get("/", probeHandler.Root)
	s.App.Get("/health", probeHandler.Liveness)
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)

	// Analyses - summary must precede :id
	s.App.Post("/analyse", analysisHandler.Analyse)
	s.App.Get("/analyses", analysisHandler.List)
	s.App.Get("/analyses/summary", analysisHandler.Summary)
	s.App.Get("/analyses/:id", analysisHandler.Get)

	if recorder != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))
	}
}
