package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"salarycalc/internal/core"
	"salarycalc/internal/log"
	"salarycalc/internal/services"
)

const emptyResultDetail = "No salary data found for the given filters"

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to encode JSON response", log.FieldError, err)
	}
}

func writeDetail(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	writeJSON(ctx, w, status, errorBody{Detail: detail})
}

// writeError maps service errors to API responses. action completes the
// "Error <action>: <msg>" detail used for unexpected failures.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyResult):
		writeDetail(ctx, w, http.StatusNotFound, emptyResultDetail)
	case errors.Is(err, services.ErrExportDisabled):
		writeDetail(ctx, w, http.StatusServiceUnavailable, err.Error())
	default:
		log.FromContext(ctx).ErrorContext(ctx, "Request failed",
			log.FieldError, err,
			log.FieldOperation, action)
		writeDetail(ctx, w, http.StatusInternalServerError, "Error "+action+": "+err.Error())
	}
}

// logQuery records a served query with the request-scoped logger and bumps
// the query counter.
func (s *Server) logQuery(ctx context.Context, op string, f core.Filter, matched int, start time.Time) {
	atomic.AddInt64(&s.appMetrics.queries, 1)
	log.NewStructuredLogger(log.FromContext(ctx)).LogQuery(ctx, op, f, matched, time.Since(start))
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// handleRateLimited answers requests rejected by the rate limiter in the
// caller's format.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		"client_ip", s.securityDetector.ExtractClientIP(r),
		"path", r.URL.Path)

	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			TriggerErrorNotification("Too many requests, please try again later").
			Write(w)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeDetail(r.Context(), w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		return
	}
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}
