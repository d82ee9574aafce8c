package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	mw "github.com/ocupalis/riskplan/internal/api/middleware"
	"github.com/ocupalis/riskplan/internal/engine"
	"github.com/ocupalis/riskplan/pkg/models"
)

func setCompanyCtx(ctx context.Context, id uuid.UUID) context.Context {
	return mw.SetCompanyID(ctx, id)
}

// --- mock AnalysisRunner ---

type mockRunner struct {
	runFn    func(companyID uuid.UUID) (*engine.Result, error)
	latestFn func(companyID uuid.UUID) (*engine.Result, bool, error)
}

func (m *mockRunner) Run(_ context.Context, companyID uuid.UUID) (*engine.Result, error) {
	return m.runFn(companyID)
}

func (m *mockRunner) LatestResult(_ context.Context, companyID uuid.UUID) (*engine.Result, bool, error) {
	return m.latestFn(companyID)
}

func successResult() *engine.Result {
	return &engine.Result{
		Success:              true,
		AnalysisPerformed:    true,
		ActionPlansGenerated: 1,
		CollectiveRisks: []models.CollectiveRiskAnalysis{{
			SectorID:             uuid.New(),
			SectorName:           "Assembly Line",
			TotalEmployees:       20,
			CollectiveRiskLevel:  models.RiskHigh,
			RequiresActionPlan:   true,
			InterventionPriority: models.InterventionCorrective,
		}},
		Message: "Analyzed 1 organizational units, generated 1 action plans",
	}
}

// --- helpers ---

func parseOK(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func parseErr(t *testing.T, rec *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, env.Error.Code
}

// --- run analysis tests ---

func TestRunAnalysisHandler_Success(t *testing.T) {
	companyID := uuid.New()
	var gotCompany uuid.UUID
	mock := &mockRunner{runFn: func(id uuid.UUID) (*engine.Result, error) {
		gotCompany = id
		return successResult(), nil
	}}

	h := NewRunAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/collective-analysis", nil)
	r = r.WithContext(setCompanyCtx(r.Context(), companyID))
	h.ServeHTTP(rec, r)

	data := parseOK(t, rec)
	if gotCompany != companyID {
		t.Errorf("expected company %s, got %s", companyID, gotCompany)
	}
	if data["success"] != true {
		t.Errorf("unexpected success: %v", data["success"])
	}
	if int(data["action_plans_generated"].(float64)) != 1 {
		t.Errorf("unexpected action_plans_generated: %v", data["action_plans_generated"])
	}
	risks, ok := data["collective_risks"].([]any)
	if !ok || len(risks) != 1 {
		t.Fatalf("unexpected collective_risks: %v", data["collective_risks"])
	}
}

func TestRunAnalysisHandler_NoCompany(t *testing.T) {
	mock := &mockRunner{runFn: func(uuid.UUID) (*engine.Result, error) {
		t.Fatal("runner should not be called")
		return nil, nil
	}}

	h := NewRunAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/collective-analysis", nil)
	// No company context set
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
	if code != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %s", code)
	}
}

func TestRunAnalysisHandler_RiskDataUnavailable(t *testing.T) {
	mock := &mockRunner{runFn: func(uuid.UUID) (*engine.Result, error) {
		err := fmt.Errorf("%w: connection refused", engine.ErrRiskDataFetch)
		return &engine.Result{
			Success:         false,
			CollectiveRisks: []models.CollectiveRiskAnalysis{},
			Message:         "collective analysis aborted: " + err.Error(),
		}, err
	}}

	h := NewRunAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/collective-analysis", nil)
	r = r.WithContext(setCompanyCtx(r.Context(), uuid.New()))
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", status)
	}
	if code != "RISK_DATA_UNAVAILABLE" {
		t.Errorf("expected RISK_DATA_UNAVAILABLE, got %s", code)
	}
}

func TestRunAnalysisHandler_UnexpectedError(t *testing.T) {
	mock := &mockRunner{runFn: func(uuid.UUID) (*engine.Result, error) {
		return nil, errors.New("something went wrong")
	}}

	h := NewRunAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/collective-analysis", nil)
	r = r.WithContext(setCompanyCtx(r.Context(), uuid.New()))
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", status)
	}
	if code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", code)
	}
}

// --- latest analysis tests ---

func TestLatestAnalysisHandler_Found(t *testing.T) {
	mock := &mockRunner{latestFn: func(uuid.UUID) (*engine.Result, bool, error) {
		return successResult(), true, nil
	}}

	h := NewLatestAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/collective-analysis/latest", nil)
	r = r.WithContext(setCompanyCtx(r.Context(), uuid.New()))
	h.ServeHTTP(rec, r)

	data := parseOK(t, rec)
	if data["message"] != "Analyzed 1 organizational units, generated 1 action plans" {
		t.Errorf("unexpected message: %v", data["message"])
	}
}

func TestLatestAnalysisHandler_NotFound(t *testing.T) {
	mock := &mockRunner{latestFn: func(uuid.UUID) (*engine.Result, bool, error) {
		return nil, false, nil
	}}

	h := NewLatestAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/collective-analysis/latest", nil)
	r = r.WithContext(setCompanyCtx(r.Context(), uuid.New()))
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
	if code != "NO_ANALYSIS" {
		t.Errorf("expected NO_ANALYSIS, got %s", code)
	}
}

func TestLatestAnalysisHandler_NoCompany(t *testing.T) {
	mock := &mockRunner{latestFn: func(uuid.UUID) (*engine.Result, bool, error) {
		t.Fatal("runner should not be called")
		return nil, false, nil
	}}

	h := NewLatestAnalysisHandler(mock)
	rec := httptest.NewRecorder()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/collective-analysis/latest", nil)
	h.ServeHTTP(rec, r)

	status, code := parseErr(t, rec)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
	if code != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %s", code)
	}
}
