package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/frontier/internal/analysis"
	"github.com/wonny/frontier/internal/analysisconfig"
	"github.com/wonny/frontier/internal/render"
	"github.com/wonny/frontier/pkg/logger"
)

// maxBodyBytes caps analyze request bodies
const maxBodyBytes = 1 << 20

// Analyzer runs analyses (analysis.Service)
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
	Config() *analysisconfig.Config
}

// AnalysisHandler handles portfolio analysis endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	service Analyzer
	timeout time.Duration
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler.
// timeout bounds one analysis including price loading; 0 means none.
func NewAnalysisHandler(service Analyzer, timeout time.Duration, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		timeout: timeout,
		logger:  log,
	}
}

// PresetResponse is one preset portfolio
type PresetResponse struct {
	Name     string                   `json:"name"`
	Holdings []analysisconfig.Holding `json:"holdings"`
}

// ListPresets returns the configured preset portfolios
// GET /api/presets
func (h *AnalysisHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Config()

	presets := make([]PresetResponse, len(cfg.Presets))
	for i, p := range cfg.Presets {
		presets[i] = PresetResponse{Name: p.Name, Holdings: p.Holdings}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"presets":   presets,
		"benchmark": cfg.Analysis.Benchmark,
		"count":     len(presets),
	})
}

// AnalyzeResponse is the JSON body of /api/analyze
type AnalyzeResponse struct {
	Report  *analysis.Report    `json:"report"`
	Metrics []render.MetricsRow `json:"metrics_table"`
}

// Analyze runs one analysis and returns the report
// POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, AnalyzeResponse{
		Report:  report,
		Metrics: render.MetricsTable(report),
	})
}

// AnalyzeChart runs one analysis and returns a PNG chart
// POST /api/analyze/chart?kind=cumulative|original|max_sharpe|min_volatility
func (h *AnalysisHandler) AnalyzeChart(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "cumulative"
	}
	switch kind {
	case "cumulative", analysis.AllocationOriginal, analysis.AllocationMaxSharpe, analysis.AllocationMinVolatility:
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown chart kind %q", kind))
		return
	}

	report, ok := h.run(w, r)
	if !ok {
		return
	}

	var png []byte
	var err error
	if kind == "cumulative" {
		png, err = render.CumulativeChart(report)
	} else {
		a, _ := report.Allocation(kind)
		png, err = render.AllocationPie(*a, report.Assets)
	}
	if err != nil {
		h.logger.WithError(err).WithField("kind", kind).Error("Failed to render chart")
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Run-ID", report.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// run decodes the request and executes the analysis, writing an error
// response itself when it fails
func (h *AnalysisHandler) run(w http.ResponseWriter, r *http.Request) (*analysis.Report, bool) {
	var req analysis.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	report, err := h.service.Analyze(ctx, req)
	if err != nil {
		status := statusFor(err)
		log := h.logger.WithError(err).WithFields(map[string]interface{}{
			"preset": req.Preset,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			log.Error("Analysis failed")
		} else {
			log.Warn("Analysis rejected")
		}

		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Internal error during analysis"
		}
		respondError(w, status, msg)
		return nil, false
	}

	return report, true
}
