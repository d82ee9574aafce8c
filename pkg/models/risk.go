// Package models contains shared data models used across the riskplan codebase.
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ExposureLevel is the ordinal classification of an individual's assessed
// psychosocial risk exposure.
type ExposureLevel string

const (
	ExposureLow      ExposureLevel = "low"
	ExposureMedium   ExposureLevel = "medium"
	ExposureHigh     ExposureLevel = "high"
	ExposureCritical ExposureLevel = "critical"
)

// ExposureLevels lists all exposure tiers in ascending severity order.
var ExposureLevels = []ExposureLevel{ExposureLow, ExposureMedium, ExposureHigh, ExposureCritical}

// Valid reports whether the level is one of the four known tiers.
func (l ExposureLevel) Valid() bool {
	switch l {
	case ExposureLow, ExposureMedium, ExposureHigh, ExposureCritical:
		return true
	}
	return false
}

// RiskLevel is the collective (population-level) risk tier assigned to an
// organizational unit. Shares the tier names with ExposureLevel but is a
// distinct concept: it is derived from percentage thresholds, not assessed
// per individual.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Valid reports whether the level is one of the four known tiers.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// InterventionPriority is the urgency tier driving plan deadlines and content.
type InterventionPriority string

const (
	InterventionNone       InterventionPriority = "none"
	InterventionMonitoring InterventionPriority = "monitoring"
	InterventionPreventive InterventionPriority = "preventive"
	InterventionCorrective InterventionPriority = "corrective"
	InterventionEmergency  InterventionPriority = "emergency"
)

// Valid reports whether the priority is one of the five known tiers.
func (p InterventionPriority) Valid() bool {
	switch p {
	case InterventionNone, InterventionMonitoring, InterventionPreventive,
		InterventionCorrective, InterventionEmergency:
		return true
	}
	return false
}

// RiskRecord is a single individual risk-exposure record, read-only input to
// the collective risk engine. Role is optional finer-grained grouping;
// EmployeeID may be nil when the assessment response could not be linked back
// to an employee.
type RiskRecord struct {
	SectorID      uuid.UUID     `db:"sector_id"      json:"sector_id"`
	SectorName    string        `db:"sector_name"    json:"sector_name"`
	RoleID        *uuid.UUID    `db:"role_id"        json:"role_id,omitempty"`
	RoleName      *string       `db:"role_name"      json:"role_name,omitempty"`
	ExposureLevel ExposureLevel `db:"exposure_level" json:"exposure_level"`
	EmployeeID    *uuid.UUID    `db:"employee_id"    json:"employee_id,omitempty"`
}

// Validate checks the record at the store boundary.
func (r *RiskRecord) Validate() error {
	if r.SectorID == uuid.Nil {
		return fmt.Errorf("risk record: sector_id is required")
	}
	if !r.ExposureLevel.Valid() {
		return fmt.Errorf("risk record: invalid exposure level %q", r.ExposureLevel)
	}
	return nil
}

// RiskDistribution holds per-tier counts or percentages for a unit.
type RiskDistribution struct {
	Low      float64 `json:"low"`
	Medium   float64 `json:"medium"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

// CollectiveRiskAnalysis is the classifier output for one organizational
// unit. It is ephemeral: computed per run, consumed by the plan generator and
// returned to the caller, never persisted as its own entity.
type CollectiveRiskAnalysis struct {
	SectorID             uuid.UUID            `json:"sector_id"`
	SectorName           string               `json:"sector_name"`
	RoleID               *uuid.UUID           `json:"role_id,omitempty"`
	RoleName             *string              `json:"role_name,omitempty"`
	TotalEmployees       int                  `json:"total_employees"`
	RiskDistribution     RiskDistribution     `json:"risk_distribution"`
	RiskPercentages      RiskDistribution     `json:"risk_percentages"`
	CollectiveRiskLevel  RiskLevel            `json:"collective_risk_level"`
	RequiresActionPlan   bool                 `json:"requires_action_plan"`
	InterventionPriority InterventionPriority `json:"intervention_priority"`
}
