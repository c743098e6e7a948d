package http

import (
	"mime"
	"net/http"
	"sync/atomic"
	"time"

	"salarycalc/internal/core"
	"salarycalc/internal/export"
	"salarycalc/internal/log"
)

const (
	apiName    = "Salary Calculator API"
	apiVersion = "1.0.0"
)

type exportAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type histogramResponse struct {
	Bins []core.HistogramBin `json:"bins"`
}

func (s *Server) handleAPIRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"message": apiName,
		"version": apiVersion,
	})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	countries := s.salaries.Countries()
	s.logQuery(r.Context(), log.OpList, core.Filter{}, len(countries), start)
	writeJSON(r.Context(), w, http.StatusOK, countries)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f := core.Filter{Country: ParseFilter(r.URL.Query()).Country}
	languages := s.salaries.Languages(f.Country)
	s.logQuery(r.Context(), log.OpList, f, len(languages), start)
	writeJSON(r.Context(), w, http.StatusOK, languages)
}

func (s *Server) handleExperienceLevels(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := ParseFilter(r.URL.Query())
	f := core.Filter{Country: q.Country, Language: q.Language}
	levels := s.salaries.ExperienceLevels(f.Country, f.Language)
	s.logQuery(r.Context(), log.OpList, f, len(levels), start)
	writeJSON(r.Context(), w, http.StatusOK, levels)
}

func (s *Server) handleSalaryData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f := ParseFilter(r.URL.Query())
	entries := s.salaries.Entries(f)
	s.logQuery(r.Context(), log.OpQuery, f, len(entries), start)
	writeJSON(r.Context(), w, http.StatusOK, entries)
}

func (s *Server) handleSalaryStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f := ParseFilter(r.URL.Query())
	stats, err := s.salaries.Stats(f)
	if err != nil {
		s.writeError(r.Context(), w, "computing statistics", err)
		return
	}
	s.logQuery(r.Context(), log.OpStats, f, stats.Count, start)
	writeJSON(r.Context(), w, http.StatusOK, stats)
}

func (s *Server) handleSalaryStatsByCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f := ParseFilter(r.URL.Query())
	stats, err := s.salaries.StatsByCategory(f)
	if err != nil {
		s.writeError(r.Context(), w, "computing category statistics", err)
		return
	}
	s.logQuery(r.Context(), log.OpStats, f, len(stats), start)
	writeJSON(r.Context(), w, http.StatusOK, stats)
}

func (s *Server) handleSalaryHistogram(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query()
	bins, err := ParseBins(query, s.histogramBins)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusBadRequest, err.Error())
		return
	}

	f := ParseFilter(query)
	histogram, err := s.salaries.Histogram(f, bins)
	if err != nil {
		s.writeError(r.Context(), w, "building histogram", err)
		return
	}
	s.logQuery(r.Context(), log.OpHistogram, f, len(histogram), start)
	writeJSON(r.Context(), w, http.StatusOK, histogramResponse{Bins: histogram})
}

func (s *Server) handleSalaryCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	f := ParseFilter(r.URL.Query())
	entries := s.salaries.Entries(f)
	if len(entries) == 0 {
		s.writeError(r.Context(), w, "exporting data", core.ErrEmptyResult)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(f)}))
	if err := export.WriteCSV(w, export.BuildTable(entries)); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV write failed",
			log.FieldError, err,
			log.FieldOperation, log.OpExport)
		return
	}
	atomic.AddInt64(&s.appMetrics.csvDownloads, 1)
	s.logQuery(r.Context(), log.OpExport, f, len(entries), start)
}

func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	f := ParseFilter(r.URL.Query())
	id, err := s.exports.RequestExport(r.Context(), f)
	if err != nil {
		s.writeError(r.Context(), w, "queuing export", err)
		return
	}
	atomic.AddInt64(&s.appMetrics.exportsQueued, 1)
	writeJSON(r.Context(), w, http.StatusAccepted, exportAccepted{ID: id, Status: "queued"})
}
