package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"loganalyser/internal/analyser"
	"loganalyser/internal/db"
	"loganalyser/internal/metrics"
	"loganalyser/internal/models"
)

// AnalysisHandler classifies submitted logs and serves stored analyses.
type AnalysisHandler struct {
	store   db.Store
	metrics *metrics.Recorder
}

// NewAnalysisHandler creates a new analysis handler. recorder may be nil.
func NewAnalysisHandler(store db.Store, recorder *metrics.Recorder) *AnalysisHandler {
	return &AnalysisHandler{store: store, metrics: recorder}
}

// Analyse classifies the submitted text, stores the result and returns it with its id.
func (h *AnalysisHandler) Analyse(c fiber.Ctx) error {
	var body models.AnalyseRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	var text string
	if body.Text != nil {
		text = *body.Text
	}

	result := analyser.AnalyseText(text)

	analysis := models.NewAnalysis(result)
	if err := h.store.CreateAnalysis(c.Context(), analysis); err != nil {
		slog.Error("failed to store analysis", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to store analysis")
	}

	h.metrics.ObserveResult(result)
	slog.Debug("analysis stored",
		"id", analysis.ID,
		"total_lines", result.TotalLines,
		"malformed_lines", result.MalformedLines,
	)

	return c.JSON(models.NewAnalyseResponse(analysis))
}

// List returns every stored analysis.
func (h *AnalysisHandler) List(c fiber.Ctx) error {
	analyses, err := h.store.ListAnalyses(c.Context())
	if err != nil {
		slog.Error("failed to list analyses", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch analyses")
	}

	return c.JSON(analyses)
}

// Get returns a single analysis by id.
func (h *AnalysisHandler) Get(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid analysis id")
	}

	analysis, err := h.store.GetAnalysis(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrAnalysisNotFound) {
			return jsonError(c, fiber.StatusNotFound, "analysis not found")
		}
		slog.Error("failed to fetch analysis", "id", id, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch analysis")
	}

	return c.JSON(analysis)
}

// Summary returns totals across every stored analysis.
func (h *AnalysisHandler) Summary(c fiber.Ctx) error {
	summary, err := h.store.SummarizeAnalyses(c.Context())
	if err != nil {
		slog.Error("failed to summarize analyses", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to summarize analyses")
	}

	return c.JSON(summary)
}
