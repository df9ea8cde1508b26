package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/export"
	"github.com/simaogato/pemetrics-backend/internal/usecase/filter"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "pemetrics",
	})
}

// handleMetrics computes the report for the filters in the query string
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	report, ok := s.compute(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, NewReportResponse(report))
}

// handleRecordsCSV exports the filtered per-record table
func (s *Server) handleRecordsCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := s.compute(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, report.Records); err != nil {
		s.log.Error().Err(err).Msg("Failed to write CSV response")
	}
}

// handleFunds lists the distinct funds of the session records
func (s *Server) handleFunds(w http.ResponseWriter, r *http.Request) {
	records, err := s.dashboard.Source.Records(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load records")
		s.writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"funds": filter.Funds(records),
	})
}

func (s *Server) compute(w http.ResponseWriter, r *http.Request) (*dashboard.Report, bool) {
	params, err := queryParams(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	query, err := params.Query()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	report, err := s.dashboard.Compute(r.Context(), query)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to compute metrics")
		s.writeError(w, http.StatusInternalServerError, "failed to compute metrics")
		return nil, false
	}
	return report, true
}

// queryParams reads the filter parameters:
// fund (repeatable), status, year_from, year_to, moic_min, moic_max, q, period, top_n
func queryParams(values url.Values) (dashboard.QueryParams, error) {
	params := dashboard.QueryParams{
		Status: values.Get("status"),
		Text:   values.Get("q"),
		Period: values.Get("period"),
	}

	if funds, ok := values["fund"]; ok {
		params.Funds = make([]string, 0, len(funds))
		for _, fund := range funds {
			if fund = strings.TrimSpace(fund); fund != "" {
				params.Funds = append(params.Funds, fund)
			}
		}
	}

	var err error
	if params.YearFrom, err = intParam(values, "year_from"); err != nil {
		return params, err
	}
	if params.YearTo, err = intParam(values, "year_to"); err != nil {
		return params, err
	}
	if params.MOICMin, err = floatParam(values, "moic_min"); err != nil {
		return params, err
	}
	if params.MOICMax, err = floatParam(values, "moic_max"); err != nil {
		return params, err
	}

	topN, err := intParam(values, "top_n")
	if err != nil {
		return params, err
	}
	if topN != nil {
		params.TopN = *topN
	}

	return params, nil
}

func intParam(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: expected an integer", key, raw)
	}
	return &n, nil
}

func floatParam(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: expected a number", key, raw)
	}
	return &f, nil
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
