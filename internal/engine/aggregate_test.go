package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ocupalis/riskplan/pkg/models"
)

func record(sector uuid.UUID, name string, level models.ExposureLevel, employee *uuid.UUID) models.RiskRecord {
	return models.RiskRecord{
		SectorID:      sector,
		SectorName:    name,
		ExposureLevel: level,
		EmployeeID:    employee,
	}
}

func employeeID() *uuid.UUID {
	id := uuid.New()
	return &id
}

func TestAggregate_EmptyInput(t *testing.T) {
	got := Aggregate(nil)
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected no aggregations, got %d", len(got))
	}
}

func TestAggregate_GroupsBySector(t *testing.T) {
	sectorA := uuid.New()
	sectorB := uuid.New()

	records := []models.RiskRecord{
		record(sectorA, "Assembly", models.ExposureLow, employeeID()),
		record(sectorA, "Assembly", models.ExposureHigh, employeeID()),
		record(sectorB, "Logistics", models.ExposureMedium, employeeID()),
	}

	got := Aggregate(records)
	if len(got) != 2 {
		t.Fatalf("expected 2 sectors, got %d", len(got))
	}
	for _, agg := range got {
		switch agg.SectorID {
		case sectorA:
			if agg.SectorName != "Assembly" {
				t.Errorf("sector A name: got %q", agg.SectorName)
			}
			if agg.TotalEmployees != 2 {
				t.Errorf("sector A employees: expected 2, got %d", agg.TotalEmployees)
			}
		case sectorB:
			if agg.TotalEmployees != 1 {
				t.Errorf("sector B employees: expected 1, got %d", agg.TotalEmployees)
			}
		default:
			t.Errorf("unexpected sector %s", agg.SectorID)
		}
	}
}

func TestAggregate_CountsDistinctEmployees(t *testing.T) {
	sector := uuid.New()
	emp := employeeID()

	// Same employee assessed twice
	records := []models.RiskRecord{
		record(sector, "Assembly", models.ExposureLow, emp),
		record(sector, "Assembly", models.ExposureHigh, emp),
	}

	got := Aggregate(records)
	if len(got) != 1 {
		t.Fatalf("expected 1 sector, got %d", len(got))
	}
	if got[0].TotalEmployees != 1 {
		t.Errorf("expected 1 distinct employee, got %d", got[0].TotalEmployees)
	}
	// Both records still count toward the distribution
	if got[0].Distribution.Low != 1 || got[0].Distribution.High != 1 {
		t.Errorf("distribution should keep both records: %+v", got[0].Distribution)
	}
}

func TestAggregate_NilEmployeeCountsInDistributionOnly(t *testing.T) {
	sector := uuid.New()

	records := []models.RiskRecord{
		record(sector, "Assembly", models.ExposureCritical, nil),
		record(sector, "Assembly", models.ExposureLow, employeeID()),
	}

	got := Aggregate(records)
	if got[0].TotalEmployees != 1 {
		t.Errorf("nil employee must not grow population: expected 1, got %d", got[0].TotalEmployees)
	}
	if got[0].Distribution.Critical != 1 {
		t.Errorf("nil-employee record must still increment its tier bucket: %+v", got[0].Distribution)
	}
}

func TestAggregate_ZeroEmployees_NoNaN(t *testing.T) {
	sector := uuid.New()

	// Only unlinked records: population is zero
	records := []models.RiskRecord{
		record(sector, "Assembly", models.ExposureHigh, nil),
		record(sector, "Assembly", models.ExposureCritical, nil),
	}

	got := Aggregate(records)
	if got[0].TotalEmployees != 0 {
		t.Fatalf("expected 0 employees, got %d", got[0].TotalEmployees)
	}
	p := got[0].Percentages
	for name, v := range map[string]float64{
		"low": p.Low, "medium": p.Medium, "high": p.High, "critical": p.Critical,
	} {
		if v != 0 {
			t.Errorf("percentage %s: expected 0 with empty population, got %v", name, v)
		}
	}
}

func TestAggregate_Percentages(t *testing.T) {
	sector := uuid.New()

	var records []models.RiskRecord
	for i := 0; i < 10; i++ {
		records = append(records, record(sector, "Assembly Line", models.ExposureLow, employeeID()))
	}
	for i := 0; i < 4; i++ {
		records = append(records, record(sector, "Assembly Line", models.ExposureMedium, employeeID()))
	}
	for i := 0; i < 4; i++ {
		records = append(records, record(sector, "Assembly Line", models.ExposureHigh, employeeID()))
	}
	for i := 0; i < 2; i++ {
		records = append(records, record(sector, "Assembly Line", models.ExposureCritical, employeeID()))
	}

	got := Aggregate(records)
	if got[0].TotalEmployees != 20 {
		t.Fatalf("expected 20 employees, got %d", got[0].TotalEmployees)
	}
	p := got[0].Percentages
	if p.Low != 50 || p.Medium != 20 || p.High != 20 || p.Critical != 10 {
		t.Errorf("unexpected percentages: %+v", p)
	}
}

func TestAggregate_PlaceholderSectorName(t *testing.T) {
	sector := uuid.New()
	records := []models.RiskRecord{
		record(sector, "", models.ExposureLow, employeeID()),
	}

	got := Aggregate(records)
	if got[0].SectorName != "unidentified sector" {
		t.Errorf("expected placeholder name, got %q", got[0].SectorName)
	}
}

func TestAggregate_StableOrder(t *testing.T) {
	records := []models.RiskRecord{}
	for i := 0; i < 5; i++ {
		records = append(records, record(uuid.New(), "S", models.ExposureLow, employeeID()))
	}

	first := Aggregate(records)
	second := Aggregate(records)
	for i := range first {
		if first[i].SectorID != second[i].SectorID {
			t.Fatalf("aggregation order not stable at index %d", i)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].SectorID.String() >= first[i].SectorID.String() {
			t.Fatalf("aggregations not sorted by sector id")
		}
	}
}
