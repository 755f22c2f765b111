package checklist

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    ErrorKind
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error converts the guard result to a typed error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &Error{Kind: r.Kind, Message: r.Reason}
}

func allow() GuardResult {
	return GuardResult{Allowed: true}
}

func deny(kind ErrorKind, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// StartContext provides context for starting a checklist.
// Populated by the caller with pre-fetched case, instance and template state.
type StartContext struct {
	CaseID            string
	Type              Type
	CaseExists        bool
	CaseActive        bool
	CaseCancelled     bool
	InstanceExists    bool
	TemplateAvailable bool // active template with a current version
	RoomID            string
	RoomValid         bool
}

// CanStartChecklist evaluates whether a checklist can be started.
// Rules, first failure wins:
// - Case must exist in the facility
// - Case must be active
// - Case must not be cancelled
// - No instance may exist for (case, type)
// - An active template with a current version must exist
// - A given room must be an active room in the facility
func CanStartChecklist(ctx StartContext) GuardResult {
	if !ctx.CaseExists {
		return deny(KindNotFound, "case %s not found", ctx.CaseID)
	}
	if !ctx.CaseActive {
		return deny(KindInvalidState, "case %s must be activated first", ctx.CaseID)
	}
	if ctx.CaseCancelled {
		return deny(KindInvalidState, "case %s is cancelled", ctx.CaseID)
	}
	if ctx.InstanceExists {
		return deny(KindAlreadyExists, "%s checklist already exists for case %s", ctx.Type, ctx.CaseID)
	}
	if !ctx.TemplateAvailable {
		return deny(KindNotFound, "no active %s template for this facility", ctx.Type)
	}
	if ctx.RoomID != "" && !ctx.RoomValid {
		return deny(KindInvalidInput, "room %s is not an active room in this facility", ctx.RoomID)
	}
	return allow()
}

// RespondContext provides context for recording an item response.
type RespondContext struct {
	InstanceID     string
	InstanceExists bool
	Status         Status
	ItemKey        string
	ItemDefined    bool
}

// CanRecordResponse evaluates whether a response can be appended.
// Rules:
// - Instance must exist in the facility
// - Instance must not be completed
// - Item key must exist in the pinned version
func CanRecordResponse(ctx RespondContext) GuardResult {
	if !ctx.InstanceExists {
		return deny(KindNotFound, "checklist %s not found", ctx.InstanceID)
	}
	if ctx.Status == StatusCompleted {
		return deny(KindInvalidState, "cannot modify a completed checklist")
	}
	if !ctx.ItemDefined {
		return deny(KindInvalidInput, "unknown checklist item %q", ctx.ItemKey)
	}
	return allow()
}

// SignContext provides context for adding a signature.
type SignContext struct {
	InstanceID     string
	InstanceExists bool
	Status         Status
	Role           Role
	RoleDefined    bool // role appears in the pinned version's signature list
	AlreadySigned  bool
}

// CanAddSignature evaluates whether a role may sign.
// Rules:
// - Instance must exist in the facility
// - Instance must not be completed
// - Role must be defined on the pinned version (whether or not it is currently required)
// - Role must not have signed already
func CanAddSignature(ctx SignContext) GuardResult {
	if !ctx.InstanceExists {
		return deny(KindNotFound, "checklist %s not found", ctx.InstanceID)
	}
	if ctx.Status == StatusCompleted {
		return deny(KindInvalidState, "cannot modify a completed checklist")
	}
	if !ctx.RoleDefined {
		return deny(KindInvalidInput, "invalid signature role %s", ctx.Role)
	}
	if ctx.AlreadySigned {
		return deny(KindAlreadySigned, "%s has already signed this checklist", ctx.Role)
	}
	return allow()
}

// CompleteContext provides context for the pre-gate completion checks.
type CompleteContext struct {
	InstanceID     string
	InstanceExists bool
	Status         Status
}

// CanComplete evaluates whether completion may be attempted.
// Rules:
// - Instance must exist in the facility
// - Instance must not already be completed
func CanComplete(ctx CompleteContext) GuardResult {
	if !ctx.InstanceExists {
		return deny(KindNotFound, "checklist %s not found", ctx.InstanceID)
	}
	if ctx.Status == StatusCompleted {
		return deny(KindAlreadyCompleted, "checklist %s is already completed", ctx.InstanceID)
	}
	return allow()
}

// ReviewContext provides context for a post-completion asynchronous review.
type ReviewContext struct {
	InstanceID     string
	InstanceExists bool
	Type           Type
	Status         Status
	Role           Role
	Pending        bool
	AlreadySigned  bool
}

// CanRecordAsyncReview evaluates whether a deferred review may be recorded.
// Rules:
// - Instance must exist in the facility
// - Role must be a review role (SCRUB or SURGEON)
// - Checklist must be a completed DEBRIEF
// - Role must not have signed already
// - Role must have a pending review
func CanRecordAsyncReview(ctx ReviewContext) GuardResult {
	if !ctx.InstanceExists {
		return deny(KindNotFound, "checklist %s not found", ctx.InstanceID)
	}
	if !IsReviewRole(ctx.Role) {
		return deny(KindInvalidInput, "role %s cannot record an asynchronous review", ctx.Role)
	}
	if ctx.Type != TypeDebrief {
		return deny(KindInvalidState, "asynchronous review is only available for DEBRIEF checklists")
	}
	if ctx.Status != StatusCompleted {
		return deny(KindInvalidState, "asynchronous review requires a completed checklist (current status: %s)", ctx.Status)
	}
	if ctx.AlreadySigned {
		return deny(KindAlreadyReviewed, "%s review already recorded", ctx.Role)
	}
	if !ctx.Pending {
		return deny(KindNoPendingReview, "no pending %s review for checklist %s", ctx.Role, ctx.InstanceID)
	}
	return allow()
}
