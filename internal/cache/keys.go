package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// LatestAnalysisKey stores the most recent collective analysis result for a
// company, for cheap read-back without re-running the engine.
func LatestAnalysisKey(companyID uuid.UUID) string {
	return fmt.Sprintf("analysis:latest:%s", companyID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
