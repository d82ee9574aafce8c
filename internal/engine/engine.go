package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ocupalis/riskplan/internal/cache"
	"github.com/ocupalis/riskplan/internal/notify"
	"github.com/ocupalis/riskplan/internal/store"
	"github.com/ocupalis/riskplan/pkg/models"
)

// Result is the summary of one collective analysis run for a company.
type Result struct {
	Success              bool                            `json:"success"`
	AnalysisPerformed    bool                            `json:"analysis_performed"`
	ActionPlansGenerated int                             `json:"action_plans_generated"`
	CollectiveRisks      []models.CollectiveRiskAnalysis `json:"collective_risks"`
	Message              string                          `json:"message"`
}

// Engine runs the collective risk analysis pipeline: fetch records, aggregate
// per sector, classify, and generate deduplicated action plans. Stateless
// between runs; everything it knows lives in the store.
type Engine struct {
	store    store.Store
	cache    cache.Cache
	notifier notify.Notifier
	cacheTTL time.Duration
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source. Used by tests to pin plan
// and item deadlines.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNotifier sets the mailer client used for best-effort plan-created
// notifications.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithResultCache enables caching the latest run result per company.
func WithResultCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// New creates an Engine backed by the given store.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    st,
		notifier: notify.NopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes a full collective analysis for one company. Only a failure to
// fetch the risk records aborts the run; per-unit generation failures are
// logged and counted as "not generated". Units are processed sequentially and
// independently: no unit's outcome depends on another's.
func (e *Engine) Run(ctx context.Context, companyID uuid.UUID) (*Result, error) {
	records, err := e.store.ListRiskRecords(ctx, companyID)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrRiskDataFetch, err)
		return &Result{
			Success:         false,
			CollectiveRisks: []models.CollectiveRiskAnalysis{},
			Message:         fmt.Sprintf("collective analysis aborted: %v", wrapped),
		}, wrapped
	}

	analyses := e.analyze(records)

	generated := 0
	for _, a := range analyses {
		if !a.RequiresActionPlan {
			continue
		}
		created, err := e.generatePlan(ctx, companyID, a)
		if err != nil {
			slog.Error("action plan generation failed",
				"company_id", companyID,
				"sector_id", a.SectorID,
				"risk_level", a.CollectiveRiskLevel,
				"error", err,
			)
			continue
		}
		if created {
			generated++
		}
	}

	result := &Result{
		Success:              true,
		AnalysisPerformed:    true,
		ActionPlansGenerated: generated,
		CollectiveRisks:      analyses,
		Message: fmt.Sprintf("Analyzed %d organizational units, generated %d action plans",
			len(analyses), generated),
	}

	e.cacheResult(ctx, companyID, result)

	return result, nil
}

// analyze aggregates and classifies without touching the store.
func (e *Engine) analyze(records []models.RiskRecord) []models.CollectiveRiskAnalysis {
	aggs := Aggregate(records)

	analyses := make([]models.CollectiveRiskAnalysis, 0, len(aggs))
	for _, agg := range aggs {
		cls := Classify(agg.Percentages)
		analyses = append(analyses, models.CollectiveRiskAnalysis{
			SectorID:             agg.SectorID,
			SectorName:           agg.SectorName,
			TotalEmployees:       agg.TotalEmployees,
			RiskDistribution:     agg.Distribution,
			RiskPercentages:      agg.Percentages,
			CollectiveRiskLevel:  cls.Level,
			RequiresActionPlan:   cls.RequiresActionPlan,
			InterventionPriority: cls.Priority,
		})
	}
	return analyses
}

// generatePlan creates a plan and its sub-items for one unit unless an open
// plan already exists for the same (company, sector, risk level). A plan for
// a different risk level does not block: an escalated sector gets a new plan
// even while the older, lower-tier plan stays open.
func (e *Engine) generatePlan(ctx context.Context, companyID uuid.UUID, a models.CollectiveRiskAnalysis) (bool, error) {
	_, err := e.store.FindOpenActionPlan(ctx, companyID, a.SectorID, a.CollectiveRiskLevel)
	if err == nil {
		slog.Debug("open action plan already exists, skipping",
			"company_id", companyID, "sector_id", a.SectorID, "risk_level", a.CollectiveRiskLevel)
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("checking existing plan: %w", err)
	}

	plan, items := BuildPlan(companyID, a, e.now())

	if err := e.store.CreateActionPlanWithItems(ctx, &plan, items); err != nil {
		if errors.Is(err, store.ErrDuplicateOpenPlan) {
			// Lost a race with a concurrent run; same outcome as the
			// pre-check finding the plan.
			return false, nil
		}
		return false, fmt.Errorf("creating plan: %w", err)
	}

	if err := e.notifier.PlanCreated(ctx, notify.PlanNotification{
		CompanyID:  companyID,
		PlanID:     plan.ID,
		SectorName: a.SectorName,
		RiskLevel:  plan.RiskLevel,
		Priority:   plan.Priority,
		DueDate:    plan.DueDate,
	}); err != nil {
		// Notification is best-effort; the plan is already persisted.
		slog.Warn("plan-created notification failed",
			"company_id", companyID, "plan_id", plan.ID, "error", err)
	}

	return true, nil
}

// cacheResult stores the latest run result for cheap read-back. Best-effort.
func (e *Engine) cacheResult(ctx context.Context, companyID uuid.UUID, result *Result) {
	if e.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, cache.LatestAnalysisKey(companyID), payload, e.cacheTTL); err != nil {
		slog.Warn("caching analysis result failed", "company_id", companyID, "error", err)
	}
}

// LatestResult returns the cached result of the most recent run for a
// company, if one exists.
func (e *Engine) LatestResult(ctx context.Context, companyID uuid.UUID) (*Result, bool, error) {
	if e.cache == nil {
		return nil, false, nil
	}
	payload, found, err := e.cache.Get(ctx, cache.LatestAnalysisKey(companyID))
	if err != nil || !found {
		return nil, false, err
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, true, nil
}
