package types

// Onboarding/progress status vocabulary. The same strings are used for the
// user-level onboarding status and per-module progress rows.
const (
	StatusNotStarted = "Not started"
	StatusInProgress = "In progress"
	StatusCompleted  = "Completed"
	StatusFailed     = "Failed"
)
