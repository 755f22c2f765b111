package primary

import "context"

// GateService answers the case lifecycle's checklist questions.
// Both predicates are read-only.
type GateService interface {
	// CanStartCase reports whether a case may move to in-progress.
	CanStartCase(ctx context.Context, facilityID, caseID string) (*GateDecision, error)

	// CanCompleteCase reports whether a case may move to completed.
	CanCompleteCase(ctx context.Context, facilityID, caseID string) (*GateDecision, error)
}

// GateDecision is the result of a case gate check.
type GateDecision struct {
	CaseID         string `json:"caseId"`
	Allowed        bool   `json:"allowed"`
	FeatureEnabled bool   `json:"featureEnabled"`
	Reason         string `json:"reason,omitempty"`
}
