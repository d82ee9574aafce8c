// Package engine implements the collective psychosocial risk analysis for
// NR-01 compliance: it aggregates individual exposure records into per-sector
// distributions, classifies collective risk against regulatory thresholds,
// and generates deduplicated action plans with templated sub-items.
package engine

import (
	"sort"

	"github.com/google/uuid"
	"github.com/ocupalis/riskplan/pkg/models"
)

// placeholderSectorName is used when a record carries no sector name.
const placeholderSectorName = "unidentified sector"

// Aggregation holds the per-sector population statistics computed from raw
// risk records, before classification.
type Aggregation struct {
	SectorID       uuid.UUID
	SectorName     string
	TotalEmployees int
	Distribution   models.RiskDistribution
	Percentages    models.RiskDistribution
}

// Aggregate groups risk records by sector and computes per-tier counts and
// percentages. TotalEmployees counts distinct employee ids; records without
// an employee reference still increment their tier bucket but do not grow the
// population size. Percentages are 0 when TotalEmployees is 0 (never
// NaN/Inf). Output is sorted by sector id for stable, reproducible results.
// Returns an empty slice for empty input, never nil.
func Aggregate(records []models.RiskRecord) []Aggregation {
	type sectorState struct {
		name      string
		employees map[uuid.UUID]struct{}
		counts    map[models.ExposureLevel]int
	}

	groups := make(map[uuid.UUID]*sectorState)

	for _, rec := range records {
		st, exists := groups[rec.SectorID]
		if !exists {
			st = &sectorState{
				employees: make(map[uuid.UUID]struct{}),
				counts:    make(map[models.ExposureLevel]int),
			}
			groups[rec.SectorID] = st
		}
		if st.name == "" {
			st.name = rec.SectorName
		}
		if rec.EmployeeID != nil && *rec.EmployeeID != uuid.Nil {
			st.employees[*rec.EmployeeID] = struct{}{}
		}
		st.counts[rec.ExposureLevel]++
	}

	aggs := make([]Aggregation, 0, len(groups))
	for sectorID, st := range groups {
		name := st.name
		if name == "" {
			name = placeholderSectorName
		}

		total := len(st.employees)
		dist := models.RiskDistribution{
			Low:      float64(st.counts[models.ExposureLow]),
			Medium:   float64(st.counts[models.ExposureMedium]),
			High:     float64(st.counts[models.ExposureHigh]),
			Critical: float64(st.counts[models.ExposureCritical]),
		}

		aggs = append(aggs, Aggregation{
			SectorID:       sectorID,
			SectorName:     name,
			TotalEmployees: total,
			Distribution:   dist,
			Percentages: models.RiskDistribution{
				Low:      percentage(dist.Low, total),
				Medium:   percentage(dist.Medium, total),
				High:     percentage(dist.High, total),
				Critical: percentage(dist.Critical, total),
			},
		})
	}

	sort.Slice(aggs, func(i, j int) bool {
		return aggs[i].SectorID.String() < aggs[j].SectorID.String()
	})

	return aggs
}

// percentage guards against division by zero for empty populations.
func percentage(count float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return count / float64(total) * 100
}
