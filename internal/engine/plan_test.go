package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ocupalis/riskplan/pkg/models"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func analysisFixture(priority models.InterventionPriority, level models.RiskLevel) models.CollectiveRiskAnalysis {
	return models.CollectiveRiskAnalysis{
		SectorID:             uuid.New(),
		SectorName:           "Assembly Line",
		TotalEmployees:       20,
		RiskDistribution:     models.RiskDistribution{Low: 10, Medium: 4, High: 4, Critical: 2},
		RiskPercentages:      models.RiskDistribution{Low: 50, Medium: 20, High: 20, Critical: 10},
		CollectiveRiskLevel:  level,
		RequiresActionPlan:   true,
		InterventionPriority: priority,
	}
}

func TestPlanDueDays(t *testing.T) {
	tests := []struct {
		priority models.InterventionPriority
		want     int
	}{
		{models.InterventionEmergency, 7},
		{models.InterventionCorrective, 30},
		{models.InterventionPreventive, 60},
		{models.InterventionMonitoring, 180},
		{models.InterventionNone, 180},
	}
	for _, tt := range tests {
		if got := planDueDays(tt.priority); got != tt.want {
			t.Errorf("planDueDays(%q): expected %d, got %d", tt.priority, tt.want, got)
		}
	}
}

// The item templates are the regulatory response playbook; they must be
// byte-for-byte deterministic between runs.
func TestItemTemplates_Deterministic(t *testing.T) {
	type itemSnapshot struct {
		title    string
		priority models.PlanPriority
		hours    int
		dueDays  int
	}

	tests := []struct {
		priority models.InterventionPriority
		want     []itemSnapshot
	}{
		{
			priority: models.InterventionEmergency,
			want: []itemSnapshot{
				{"Root-cause investigation", models.PriorityHigh, 16, 3},
				{"Immediate collective control measures", models.PriorityHigh, 40, 7},
				{"Daily monitoring setup", models.PriorityHigh, 8, 14},
			},
		},
		{
			priority: models.InterventionCorrective,
			want: []itemSnapshot{
				{"Detailed psychosocial working-conditions analysis", models.PriorityMedium, 24, 15},
				{"Organizational-improvement implementation", models.PriorityMedium, 60, 30},
				{"Leadership training on psychosocial risk management", models.PriorityMedium, 16, 45},
			},
		},
		{
			priority: models.InterventionPreventive,
			want: []itemSnapshot{
				{"Sector-specific prevention program", models.PriorityLow, 32, 60},
				{"Monthly monitoring routine setup", models.PriorityLow, 8, 30},
			},
		},
		{priority: models.InterventionMonitoring, want: []itemSnapshot{}},
		{priority: models.InterventionNone, want: []itemSnapshot{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			got := itemTemplates(tt.priority)
			if got == nil {
				t.Fatal("expected non-nil template set")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d items, got %d", len(tt.want), len(got))
			}
			for i, want := range tt.want {
				if got[i].Title != want.title {
					t.Errorf("item %d title: expected %q, got %q", i, want.title, got[i].Title)
				}
				if got[i].Priority != want.priority {
					t.Errorf("item %d priority: expected %q, got %q", i, want.priority, got[i].Priority)
				}
				if got[i].EstimatedHours != want.hours {
					t.Errorf("item %d hours: expected %d, got %d", i, want.hours, got[i].EstimatedHours)
				}
				if got[i].DueDays != want.dueDays {
					t.Errorf("item %d due days: expected %d, got %d", i, want.dueDays, got[i].DueDays)
				}
				if got[i].Description == "" {
					t.Errorf("item %d: empty description", i)
				}
			}
		})
	}
}

func TestBuildPlan_Fields(t *testing.T) {
	companyID := uuid.New()
	a := analysisFixture(models.InterventionCorrective, models.RiskHigh)

	plan, items := BuildPlan(companyID, a, fixedNow)

	if plan.Title != "Collective Action Plan - Assembly Line" {
		t.Errorf("unexpected title: %q", plan.Title)
	}
	if plan.CompanyID != companyID || plan.SectorID != a.SectorID {
		t.Errorf("plan ownership mismatch: %+v", plan)
	}
	if plan.Status != models.PlanStatusDraft {
		t.Errorf("expected draft status, got %q", plan.Status)
	}
	if plan.Priority != models.PriorityHigh {
		t.Errorf("high risk maps to high priority, got %q", plan.Priority)
	}
	if plan.RiskLevel != models.RiskHigh {
		t.Errorf("expected risk level high, got %q", plan.RiskLevel)
	}
	if !plan.StartDate.Equal(fixedNow) {
		t.Errorf("start date: expected %v, got %v", fixedNow, plan.StartDate)
	}
	if want := fixedNow.AddDate(0, 0, 30); !plan.DueDate.Equal(want) {
		t.Errorf("due date: expected %v, got %v", want, plan.DueDate)
	}

	if len(items) != 3 {
		t.Fatalf("corrective tier has 3 items, got %d", len(items))
	}
	wantDue := []time.Time{
		fixedNow.AddDate(0, 0, 15),
		fixedNow.AddDate(0, 0, 30),
		fixedNow.AddDate(0, 0, 45),
	}
	for i, item := range items {
		if item.ActionPlanID != plan.ID {
			t.Errorf("item %d not linked to plan", i)
		}
		if item.Department != "Assembly Line" {
			t.Errorf("item %d department: got %q", i, item.Department)
		}
		if !item.DueDate.Equal(wantDue[i]) {
			t.Errorf("item %d due date: expected %v, got %v", i, wantDue[i], item.DueDate)
		}
	}
}

func TestBuildPlan_Description(t *testing.T) {
	a := analysisFixture(models.InterventionCorrective, models.RiskHigh)
	plan, _ := BuildPlan(uuid.New(), a, fixedNow)

	for _, fragment := range []string{
		"high",            // risk level
		"Assembly Line",   // sector name
		"20 employees",    // population
		"6 employees",     // high+critical count
		"(30.0%)",         // high+critical share
		"low 50.0%",       // full breakdown
		"medium 20.0%",
		"high 20.0%",
		"critical 10.0%",
	} {
		if !strings.Contains(plan.Description, fragment) {
			t.Errorf("description missing %q:\n%s", fragment, plan.Description)
		}
	}
}

func TestBuildPlan_EmergencyDeadline(t *testing.T) {
	a := analysisFixture(models.InterventionEmergency, models.RiskCritical)
	plan, items := BuildPlan(uuid.New(), a, fixedNow)

	if want := fixedNow.AddDate(0, 0, 7); !plan.DueDate.Equal(want) {
		t.Errorf("emergency due date: expected %v, got %v", want, plan.DueDate)
	}
	if len(items) != 3 {
		t.Fatalf("emergency tier has 3 items, got %d", len(items))
	}
}
