package services

import "errors"

var (
	// ErrValidation covers malformed input to a write path; nothing is persisted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced user/purchase/schedule row is missing. Batch
	// operations skip the item and continue; single-item operations surface it.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means another run updated the row since we read it. The item is
	// skipped and will be picked up by the next cycle if still due.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrDataCorruption flags impossible stored state (cyclic sponsor chain, nonpositive
	// total days). Logged loudly, item excluded, never silently repaired.
	ErrDataCorruption = errors.New("data corruption detected")
)
