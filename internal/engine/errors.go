package engine

import "errors"

var (
	// ErrRiskDataFetch tags a failure to load risk-exposure records. It is
	// the only error class that aborts a whole run.
	ErrRiskDataFetch = errors.New("risk data fetch failed")
)
