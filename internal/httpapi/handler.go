package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shannong20/Evalytics-sub000/internal/analytics"
)

type AnalyticsService interface {
	InstructorReport(ctx context.Context, f analytics.Filter) (*analytics.Report, error)
}

// Handler serves instructor reports as JSON.
type Handler struct {
	analytics    AnalyticsService
	logger       *zap.Logger
	minResponses int
}

type Option func(*Handler)

// WithDefaultMinResponses sets the low-sample threshold used when the query
// omits min_responses.
func WithDefaultMinResponses(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.minResponses = n
		}
	}
}

func NewHandler(svc AnalyticsService, logger *zap.Logger, opts ...Option) *Handler {
	if svc == nil {
		panic("analytics service must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{analytics: svc, logger: logger, minResponses: analytics.DefaultMinResponses}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router with metrics, health and report routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(h.logger))
	r.Use(PrometheusMiddleware)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/instructors/{id}/report", h.instructorReport)
	})
	return r
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) instructorReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		id = 0
	}

	raw := rawFilter(r)
	if raw.MinResponses == "" {
		raw.MinResponses = strconv.Itoa(h.minResponses)
	}

	f, err := analytics.ParseFilter(id, raw)
	if err != nil {
		h.writeError(w, err)
		return
	}

	report, err := h.analytics.InstructorReport(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// rawFilter reads the report query parameters. course_ids may be repeated or
// comma separated.
func rawFilter(r *http.Request) analytics.RawFilter {
	q := r.URL.Query()
	raw := analytics.RawFilter{
		StartDate:     q.Get("start_date"),
		EndDate:       q.Get("end_date"),
		EvaluatorType: q.Get("evaluator_type"),
		MinResponses:  q.Get("min_responses"),
	}
	for _, v := range q["course_ids"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				raw.CourseIDs = append(raw.CourseIDs, part)
			}
		}
	}
	return raw
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ife *analytics.InvalidFilterError
	switch {
	case errors.As(err, &ife):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid filter", Fields: ife.Fields})
	case errors.Is(err, analytics.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "instructor not found"})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "request timed out"})
	default:
		h.logger.Error("instructor report failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
