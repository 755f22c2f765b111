package checklist

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// CompletionInput is everything the completion gate reads. The caller loads
// it inside the same transaction that persists the outcome.
type CompletionInput struct {
	Items       []Item
	Signatures  []RequiredSignature
	Responses   map[string]string // latest value per item key
	SignedRoles mapset.Set[Role]
}

// CompletionOutcome is the state to persist when the gate passes.
type CompletionOutcome struct {
	Pending PendingReviews
	// Unflagged lists conditional roles that are required and unsigned but
	// have no review flag to carry the obligation.
	Unflagged []Role
}

// EvaluateCompletion runs the completion gate:
//  1. every required, non-readonly, unrestricted item has a non-blank response
//  2. every required non-conditional signature is present
//  3. required-but-unsigned conditional signatures become pending reviews
//  4. at least one signature exists when any non-conditional role is defined
func EvaluateCompletion(in CompletionInput) (CompletionOutcome, error) {
	signed := in.SignedRoles
	if signed == nil {
		signed = mapset.NewThreadUnsafeSet[Role]()
	}

	for _, item := range in.Items {
		if !item.Required || item.Kind == KindReadonly || item.RoleRestriction != "" {
			continue
		}
		if strings.TrimSpace(in.Responses[item.Key]) == "" {
			label := item.Label
			if label == "" {
				label = item.Key
			}
			return CompletionOutcome{}, &Error{
				Kind:    KindMissingRequiredItem,
				Message: "required item not completed: " + label,
				Subject: label,
			}
		}
	}

	var outcome CompletionOutcome
	baseline := mapset.NewThreadUnsafeSet[Role]()
	for _, def := range in.Signatures {
		if !def.Conditional {
			baseline.Add(def.Role)
		}
		if !IsSignatureRequired(def, in.Responses) || signed.Contains(def.Role) {
			continue
		}
		if !def.Conditional {
			return CompletionOutcome{}, &Error{
				Kind:    KindMissingSignature,
				Message: "missing required signature: " + string(def.Role),
				Subject: string(def.Role),
			}
		}
		if !outcome.Pending.Mark(def.Role) {
			outcome.Unflagged = append(outcome.Unflagged, def.Role)
		}
	}

	if baseline.Cardinality() > 0 && signed.Cardinality() == 0 {
		return CompletionOutcome{}, &Error{
			Kind:    KindNoSignatures,
			Message: "at least one signature is required to complete the checklist",
		}
	}

	return outcome, nil
}
