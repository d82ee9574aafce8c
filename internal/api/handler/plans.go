package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/ocupalis/riskplan/internal/api/middleware"
	"github.com/ocupalis/riskplan/internal/api/response"
	"github.com/ocupalis/riskplan/internal/store"
	"github.com/ocupalis/riskplan/pkg/models"
)

// PlanReader is the subset of the store the plan handlers depend on.
type PlanReader interface {
	ListActionPlans(ctx context.Context, filter store.PlanFilter) ([]*models.ActionPlan, int, error)
	GetActionPlan(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*models.ActionPlan, error)
	ListActionPlanItems(ctx context.Context, planID uuid.UUID) ([]*models.ActionPlanItem, error)
}

// NewListPlansHandler returns an http.HandlerFunc for GET /api/v1/action-plans.
// Supports sector_id, status, risk_level, since (RFC3339), page and limit
// query parameters.
func NewListPlansHandler(plans PlanReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := mw.GetCompanyID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing company", nil)
			return
		}

		filter := store.PlanFilter{CompanyID: companyID}
		q := r.URL.Query()

		if v := q.Get("sector_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "sector_id must be a UUID", nil)
				return
			}
			filter.SectorID = id
		}
		if v := q.Get("status"); v != "" {
			status := models.PlanStatus(v)
			if !status.Valid() {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid status", nil)
				return
			}
			filter.Status = status
		}
		if v := q.Get("risk_level"); v != "" {
			level := models.RiskLevel(v)
			if !level.Valid() {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid risk_level", nil)
				return
			}
			filter.RiskLevel = level
		}
		if v := q.Get("since"); v != "" {
			since, err := time.Parse(time.RFC3339, v)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "since must be a valid RFC3339 timestamp", nil)
				return
			}
			filter.Since = since
		}
		filter.Page, _ = strconv.Atoi(q.Get("page"))
		filter.Limit, _ = strconv.Atoi(q.Get("limit"))

		plansList, total, err := plans.ListActionPlans(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		page := filter.Page
		if page <= 0 {
			page = 1
		}
		limit := filter.Limit
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}
		if plansList == nil {
			plansList = []*models.ActionPlan{}
		}

		response.Collection(w, plansList, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewGetPlanHandler returns an http.HandlerFunc for
// GET /api/v1/action-plans/{planID}.
func NewGetPlanHandler(plans PlanReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := mw.GetCompanyID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing company", nil)
			return
		}

		planID, err := uuid.Parse(chi.URLParam(r, "planID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "planID must be a UUID", nil)
			return
		}

		plan, err := plans.GetActionPlan(r.Context(), planID, companyID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Action plan not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, plan)
	}
}

// NewListPlanItemsHandler returns an http.HandlerFunc for
// GET /api/v1/action-plans/{planID}/items.
func NewListPlanItemsHandler(plans PlanReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := mw.GetCompanyID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing company", nil)
			return
		}

		planID, err := uuid.Parse(chi.URLParam(r, "planID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "planID must be a UUID", nil)
			return
		}

		// Ownership check before exposing items
		if _, err := plans.GetActionPlan(r.Context(), planID, companyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Action plan not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		items, err := plans.ListActionPlanItems(r.Context(), planID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if items == nil {
			items = []*models.ActionPlanItem{}
		}

		response.JSON(w, items)
	}
}
