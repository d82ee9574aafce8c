package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanStatus is the action plan lifecycle state. The engine only ever creates
// plans in draft; the remaining transitions belong to external workflow.
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "draft"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
	PlanStatusCancelled  PlanStatus = "cancelled"
)

// OpenPlanStatuses are the states that count as "open" for deduplication:
// at most one open plan may exist per (company, sector, risk level).
var OpenPlanStatuses = []PlanStatus{PlanStatusDraft, PlanStatusInProgress}

// Valid reports whether the status is a known lifecycle state.
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusInProgress, PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// PlanPriority is the plan/item priority scale.
type PlanPriority string

const (
	PriorityLow    PlanPriority = "low"
	PriorityMedium PlanPriority = "medium"
	PriorityHigh   PlanPriority = "high"
)

// Valid reports whether the priority is a known value.
func (p PlanPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ActionPlan is a persisted NR-01 remediation plan for one sector of a
// company. Created by the collective risk engine; never mutated by it after
// creation.
type ActionPlan struct {
	ID          uuid.UUID  `db:"id"          json:"id"`
	CompanyID   uuid.UUID  `db:"company_id"  json:"company_id"`
	SectorID    uuid.UUID  `db:"sector_id"   json:"sector_id"`
	Title       string     `db:"title"       json:"title"`
	Description string     `db:"description" json:"description"`
	Status      PlanStatus `db:"status"      json:"status"`
	Priority    PlanPriority `db:"priority"  json:"priority"`
	RiskLevel   RiskLevel  `db:"risk_level"  json:"risk_level"`
	StartDate   time.Time  `db:"start_date"  json:"start_date"`
	DueDate     time.Time  `db:"due_date"    json:"due_date"`
	CreatedAt   time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"  json:"updated_at"`
}

// ActionPlanItem is a dated, prioritized sub-task of an ActionPlan. Items are
// owned exclusively by their parent plan (cascade-deleted with it).
type ActionPlanItem struct {
	ID             uuid.UUID    `db:"id"              json:"id"`
	ActionPlanID   uuid.UUID    `db:"action_plan_id"  json:"action_plan_id"`
	Title          string       `db:"title"           json:"title"`
	Description    string       `db:"description"     json:"description"`
	Priority       PlanPriority `db:"priority"        json:"priority"`
	EstimatedHours int          `db:"estimated_hours" json:"estimated_hours"`
	DueDate        time.Time    `db:"due_date"        json:"due_date"`
	Department     string       `db:"department"      json:"department"`
	CreatedAt      time.Time    `db:"created_at"      json:"created_at"`
}
