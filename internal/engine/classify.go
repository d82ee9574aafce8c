package engine

import "github.com/ocupalis/riskplan/pkg/models"

// NR-01 escalation thresholds, in percent of the assessed population.
// All comparisons are strict: a sector at exactly 30.0% high+critical is
// classified high, not critical. The boundaries are regulatory, not tunable.
const (
	criticalThreshold = 30 // high+critical share above which risk is critical
	highThreshold     = 20 // high+critical share above which risk is high
	mediumThreshold   = 10 // medium+high+critical share above which risk is medium
)

// Classification is the derived collective risk assessment for one unit.
type Classification struct {
	Level              models.RiskLevel
	RequiresActionPlan bool
	Priority           models.InterventionPriority
}

// Classify applies the NR-01 threshold ladder to a unit's exposure
// percentages. Pure function: no randomness, no external state. Rules are
// evaluated top-to-bottom, first match wins.
func Classify(p models.RiskDistribution) Classification {
	elevated := p.High + p.Critical
	switch {
	case elevated > criticalThreshold:
		return Classification{
			Level:              models.RiskCritical,
			RequiresActionPlan: true,
			Priority:           models.InterventionEmergency,
		}
	case elevated > highThreshold:
		return Classification{
			Level:              models.RiskHigh,
			RequiresActionPlan: true,
			Priority:           models.InterventionCorrective,
		}
	case p.Medium+elevated > mediumThreshold:
		return Classification{
			Level:              models.RiskMedium,
			RequiresActionPlan: true,
			Priority:           models.InterventionPreventive,
		}
	default:
		return Classification{
			Level:              models.RiskLow,
			RequiresActionPlan: false,
			Priority:           models.InterventionMonitoring,
		}
	}
}

// planPriority maps a collective risk level to the created plan's priority.
func planPriority(level models.RiskLevel) models.PlanPriority {
	switch level {
	case models.RiskCritical, models.RiskHigh:
		return models.PriorityHigh
	case models.RiskMedium:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
