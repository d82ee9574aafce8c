package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ocupalis/riskplan/pkg/models"
)

// planDueDays maps intervention priority to the plan-level deadline in days.
// Monitoring is defined for completeness even though units that only need
// monitoring never generate a plan.
func planDueDays(p models.InterventionPriority) int {
	switch p {
	case models.InterventionEmergency:
		return 7
	case models.InterventionCorrective:
		return 30
	case models.InterventionPreventive:
		return 60
	default:
		return 180
	}
}

// itemTemplate describes one deterministic sub-task of a plan. DueDays is an
// offset from the plan start date. The templates encode the NR-01 response
// playbook per intervention tier and must not drift between runs.
type itemTemplate struct {
	Title          string
	Description    string
	Priority       models.PlanPriority
	EstimatedHours int
	DueDays        int
}

func itemTemplates(p models.InterventionPriority) []itemTemplate {
	switch p {
	case models.InterventionEmergency:
		return []itemTemplate{
			{
				Title:          "Root-cause investigation",
				Description:    "Investigate the organizational causes of the critical psychosocial exposure identified in this sector, interviewing affected employees and reviewing working conditions.",
				Priority:       models.PriorityHigh,
				EstimatedHours: 16,
				DueDays:        3,
			},
			{
				Title:          "Immediate collective control measures",
				Description:    "Implement immediate administrative and collective protection measures to reduce exposure while the root-cause investigation is underway.",
				Priority:       models.PriorityHigh,
				EstimatedHours: 40,
				DueDays:        7,
			},
			{
				Title:          "Daily monitoring setup",
				Description:    "Establish a daily monitoring routine for the sector until exposure indicators return below the critical threshold.",
				Priority:       models.PriorityHigh,
				EstimatedHours: 8,
				DueDays:        14,
			},
		}
	case models.InterventionCorrective:
		return []itemTemplate{
			{
				Title:          "Detailed psychosocial working-conditions analysis",
				Description:    "Perform a detailed analysis of the psychosocial working conditions in this sector to identify the factors driving elevated exposure.",
				Priority:       models.PriorityMedium,
				EstimatedHours: 24,
				DueDays:        15,
			},
			{
				Title:          "Organizational-improvement implementation",
				Description:    "Implement the organizational improvements identified by the working-conditions analysis (workload, autonomy, support structures).",
				Priority:       models.PriorityMedium,
				EstimatedHours: 60,
				DueDays:        30,
			},
			{
				Title:          "Leadership training on psychosocial risk management",
				Description:    "Train sector leadership on recognizing and managing psychosocial risk factors in day-to-day operations.",
				Priority:       models.PriorityMedium,
				EstimatedHours: 16,
				DueDays:        45,
			},
		}
	case models.InterventionPreventive:
		return []itemTemplate{
			{
				Title:          "Sector-specific prevention program",
				Description:    "Design and roll out a prevention program tailored to the risk profile of this sector.",
				Priority:       models.PriorityLow,
				EstimatedHours: 32,
				DueDays:        60,
			},
			{
				Title:          "Monthly monitoring routine setup",
				Description:    "Establish a monthly monitoring routine to track the sector's exposure indicators over time.",
				Priority:       models.PriorityLow,
				EstimatedHours: 8,
				DueDays:        30,
			},
		}
	default:
		// monitoring / none: no items, never an error
		return []itemTemplate{}
	}
}

// BuildPlan materializes an ActionPlan and its sub-items for a unit
// requiring intervention. Pure function of the analysis and the clock;
// persistence is the caller's concern.
func BuildPlan(companyID uuid.UUID, a models.CollectiveRiskAnalysis, now time.Time) (models.ActionPlan, []models.ActionPlanItem) {
	now = now.UTC()
	plan := models.ActionPlan{
		ID:          uuid.New(),
		CompanyID:   companyID,
		SectorID:    a.SectorID,
		Title:       fmt.Sprintf("Collective Action Plan - %s", a.SectorName),
		Description: planDescription(a),
		Status:      models.PlanStatusDraft,
		Priority:    planPriority(a.CollectiveRiskLevel),
		RiskLevel:   a.CollectiveRiskLevel,
		StartDate:   now,
		DueDate:     now.AddDate(0, 0, planDueDays(a.InterventionPriority)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	templates := itemTemplates(a.InterventionPriority)
	items := make([]models.ActionPlanItem, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, models.ActionPlanItem{
			ID:             uuid.New(),
			ActionPlanID:   plan.ID,
			Title:          tpl.Title,
			Description:    tpl.Description,
			Priority:       tpl.Priority,
			EstimatedHours: tpl.EstimatedHours,
			DueDate:        now.AddDate(0, 0, tpl.DueDays),
			Department:     a.SectorName,
			CreatedAt:      now,
		})
	}

	return plan, items
}

// planDescription builds the free-text summary embedded in the plan record:
// risk level, population size, elevated-exposure share, and the full
// per-tier percentage breakdown.
func planDescription(a models.CollectiveRiskAnalysis) string {
	elevatedCount := a.RiskDistribution.High + a.RiskDistribution.Critical
	elevatedPct := a.RiskPercentages.High + a.RiskPercentages.Critical
	return fmt.Sprintf(
		"Collective risk level %s identified in sector %q (%d employees assessed). "+
			"%.0f employees (%.1f%%) at high or critical psychosocial exposure. "+
			"Exposure breakdown: low %.1f%%, medium %.1f%%, high %.1f%%, critical %.1f%%.",
		a.CollectiveRiskLevel, a.SectorName, a.TotalEmployees,
		elevatedCount, elevatedPct,
		a.RiskPercentages.Low, a.RiskPercentages.Medium,
		a.RiskPercentages.High, a.RiskPercentages.Critical,
	)
}
