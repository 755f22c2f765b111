package checklist

import "fmt"

// FeatureFlags is the facility capability consulted by the case gates.
type FeatureFlags struct {
	EnableTimeoutDebrief bool
}

// CanStartCase reports whether a case may move to in-progress.
// With the feature off every case passes; with it on the TIMEOUT checklist
// must be completed.
func CanStartCase(flags FeatureFlags, timeout Status) GuardResult {
	return requireCompleted(flags, TypeTimeout, timeout)
}

// CanCompleteCase reports whether a case may move to completed.
// With the feature on the DEBRIEF checklist must be completed.
func CanCompleteCase(flags FeatureFlags, debrief Status) GuardResult {
	return requireCompleted(flags, TypeDebrief, debrief)
}

func requireCompleted(flags FeatureFlags, t Type, status Status) GuardResult {
	if !flags.EnableTimeoutDebrief {
		return allow()
	}
	if status == StatusCompleted {
		return allow()
	}
	if status == "" {
		status = StatusNotStarted
	}
	return GuardResult{
		Allowed: false,
		Kind:    KindInvalidState,
		Reason:  fmt.Sprintf("%s checklist must be completed (current status: %s)", t, status),
	}
}
