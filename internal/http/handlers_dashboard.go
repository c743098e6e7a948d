package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"
	"time"

	"salarycalc/internal/core"
	"salarycalc/internal/export"
	"salarycalc/internal/log"
	"salarycalc/internal/services"
)

// maxTableRows caps the raw data table; the CSV download has everything.
const maxTableRows = 500

var templateFuncs = template.FuncMap{
	"thousands":   core.FormatThousands,
	"salaryRange": statsRange,
	"responses":   core.FormatCount,
}

func statsRange(s core.Stats) string {
	return core.FormatRange(s.Min, s.Max)
}

type dashboardView struct {
	Filter    core.Filter
	Countries []string
	Languages []string
	Levels    []string

	AllCountries        string
	AllLanguages        string
	AllExperienceLevels string

	HasData       bool
	Stats         core.Stats
	HistogramJSON string
	CategoryJSON  string
	Table         export.Table
	TotalRows     int
	Truncated     bool
	CSVURL        string

	ExportsEnabled bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", s.buildDashboard(r, ParseFormFilter(r.URL.Query())))
}

// handleDashboard renders the filter form and results partial.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", "HX-Request")
	s.render(w, r, "dashboard", s.buildDashboard(r, ParseFormFilter(r.URL.Query())))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	ctx := r.Context()
	if s.templates == nil {
		log.FromContext(ctx).ErrorContext(ctx, "Templates not loaded",
			"path", r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			"template", name)
		InternalServerError("Failed to render page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// buildDashboard resolves the cascading selects and runs the queries for the
// result panels. Selections that are no longer offered by the select above
// them are cleared.
func (s *Server) buildDashboard(r *http.Request, f core.Filter) dashboardView {
	ctx := r.Context()
	start := time.Now()

	view := dashboardView{
		Countries:           s.salaries.Countries(),
		AllCountries:        export.AllCountries,
		AllLanguages:        export.AllLanguages,
		AllExperienceLevels: export.AllExperienceLevels,
		ExportsEnabled:      s.exports.Enabled(),
	}

	if f.Country != "" && !slices.Contains(view.Countries, f.Country) {
		f.Country = ""
	}
	view.Languages = s.salaries.Languages(f.Country)
	if f.Language != "" && !slices.Contains(view.Languages, f.Language) {
		f.Language = ""
	}
	view.Levels = s.salaries.ExperienceLevels(f.Country, f.Language)
	if f.Experience != "" && !slices.Contains(view.Levels, f.Experience) {
		f.Experience = ""
	}
	view.Filter = f

	entries := s.salaries.Entries(f)
	defer s.logQuery(ctx, log.OpQuery, f, len(entries), start)

	stats, err := core.ComputeStats(entries)
	if err != nil {
		return view
	}
	view.HasData = true
	view.Stats = stats
	view.CSVURL = "/api/salary-data.csv" + filterQuery(f)

	if histogram, err := core.BuildHistogram(entries, s.histogramBins); err == nil {
		view.HistogramJSON = chartJSON(r, histogram)
	}
	if categories, err := core.StatsByCategory(entries); err == nil {
		view.CategoryJSON = chartJSON(r, categories)
	}

	table := export.BuildTable(entries)
	view.TotalRows = len(table.Rows)
	if len(table.Rows) > maxTableRows {
		table.Rows = table.Rows[:maxTableRows]
		view.Truncated = true
	}
	view.Table = table
	return view
}

// handleUIExport queues a Google Sheets export for the dashboard's current
// filter and answers with a notification trigger.
func (s *Server) handleUIExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").
			TriggerErrorNotification("Invalid request format").
			Write(w)
		return
	}

	f := ParseFormFilter(r.Form)
	id, err := s.exports.RequestExport(ctx, f)
	switch {
	case err == nil:
		atomic.AddInt64(&s.appMetrics.exportsQueued, 1)
		NewHTMXResponse().
			Status(http.StatusAccepted).
			TriggerExportQueued(id).
			TriggerSuccessNotification("Export queued (" + id + ")").
			Write(w)
	case errors.Is(err, services.ErrExportDisabled):
		NewHTMXResponse().
			Status(http.StatusServiceUnavailable).
			TriggerNotification(NotificationWarning, "Google Sheets export is not configured", 5000).
			Write(w)
	case errors.Is(err, core.ErrEmptyResult):
		NewHTMXResponse().
			Status(http.StatusNotFound).
			TriggerInfoNotification(emptyResultDetail).
			Write(w)
	default:
		log.FromContext(ctx).ErrorContext(ctx, "Export request failed",
			log.NewFields().WithError(err).WithOperation(log.OpExport).WithFilter(f).ToSlice()...)
		InternalServerError("Export failed").
			TriggerErrorNotification("Export failed, please try again later").
			Write(w)
	}
}

func filterQuery(f core.Filter) string {
	q := url.Values{}
	if f.Country != "" {
		q.Set("country", f.Country)
	}
	if f.Language != "" {
		q.Set("language", f.Language)
	}
	if f.Experience != "" {
		q.Set("experience", f.Experience)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func chartJSON(r *http.Request, v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Chart data encoding failed", log.FieldError, err)
		return ""
	}
	return string(b)
}
