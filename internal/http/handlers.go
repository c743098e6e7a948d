package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)
	fail := func(name, reason string) {
		checks[name] = "failed: " + reason
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.salaries == nil {
		fail("dataset", "not loaded")
	} else {
		checks["dataset"] = map[string]any{
			"status":    "ok",
			"entries":   s.salaries.Size(),
			"countries": len(s.salaries.Countries()),
		}
	}

	if s.templates == nil {
		fail("templates", "templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	if s.readyCheck != nil {
		if err := s.readyCheck(ctx); err != nil {
			fail("storage", err.Error())
		} else {
			checks["storage"] = "ok"
		}
	}

	if s.exports.Enabled() {
		checks["exports"] = "enabled"
	} else {
		checks["exports"] = "disabled"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(r.Context(), w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	entries := 0
	if s.salaries != nil {
		entries = s.salaries.Size()
	}

	w.WriteHeader(http.StatusOK)

	// Write metrics in Prometheus-like format
	writeMetric(w, "http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	writeMetric(w, "http_client_errors_total", "counter", "HTTP responses with a 4xx status", traceMetrics.ClientErrors)
	writeMetric(w, "http_server_errors_total", "counter", "HTTP responses with a 5xx status", traceMetrics.ServerErrors)
	writeMetric(w, "http_request_duration_avg_ms", "gauge", "Average request duration in milliseconds", traceMetrics.AverageResponseTime.Milliseconds())
	writeMetric(w, "salary_queries_total", "counter", "Query layer calls served", atomic.LoadInt64(&s.appMetrics.queries))
	writeMetric(w, "salary_csv_downloads_total", "counter", "CSV downloads served", atomic.LoadInt64(&s.appMetrics.csvDownloads))
	writeMetric(w, "salary_exports_queued_total", "counter", "Export requests queued", atomic.LoadInt64(&s.appMetrics.exportsQueued))
	writeMetric(w, "salary_dataset_entries", "gauge", "Entries in the loaded dataset", int64(entries))
	writeMetric(w, "security_suspicious_requests_total", "counter", "Requests flagged as suspicious", securityMetrics.SuspiciousRequests)
	writeMetric(w, "rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.TotalHits)
	writeMetric(w, "rate_limit_active_clients", "gauge", "Clients tracked by the rate limiter", rateLimitMetrics.ClientCount)
	writeMetric(w, "uptime_seconds", "gauge", "Seconds since the server started", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n\n", name, value)
}
