package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	mw "github.com/ocupalis/riskplan/internal/api/middleware"
	"github.com/ocupalis/riskplan/internal/api/response"
	"github.com/ocupalis/riskplan/internal/engine"
)

// AnalysisRunner defines the interface the handlers depend on.
type AnalysisRunner interface {
	Run(ctx context.Context, companyID uuid.UUID) (*engine.Result, error)
	LatestResult(ctx context.Context, companyID uuid.UUID) (*engine.Result, bool, error)
}

// NewRunAnalysisHandler returns an http.HandlerFunc for
// POST /api/v1/collective-analysis. It runs the full aggregate/classify/
// generate pipeline for the authenticated company and returns the summary.
func NewRunAnalysisHandler(runner AnalysisRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := mw.GetCompanyID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing company", nil)
			return
		}

		result, err := runner.Run(r.Context(), companyID)
		if err != nil {
			if errors.Is(err, engine.ErrRiskDataFetch) {
				response.Error(w, http.StatusServiceUnavailable, "RISK_DATA_UNAVAILABLE",
					"Could not load risk-exposure records; analysis aborted", result)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, result)
	}
}

// NewLatestAnalysisHandler returns an http.HandlerFunc for
// GET /api/v1/collective-analysis/latest, serving the cached result of the
// most recent run.
func NewLatestAnalysisHandler(runner AnalysisRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := mw.GetCompanyID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing company", nil)
			return
		}

		result, found, err := runner.LatestResult(r.Context(), companyID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if !found {
			response.Error(w, http.StatusNotFound, "NO_ANALYSIS",
				"No collective analysis has been run for this company yet", nil)
			return
		}

		response.JSON(w, result)
	}
}
