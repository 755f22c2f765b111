// Package checklist contains the pure business logic for OR safety checklists.
// This is part of the Functional Core - no I/O, only pure functions.
package checklist

import (
	"fmt"
	"strings"
)

// Type identifies which checklist a case is running.
type Type string

const (
	// TypeTimeout is the pre-incision safety check.
	TypeTimeout Type = "TIMEOUT"
	// TypeDebrief is the post-operative review.
	TypeDebrief Type = "DEBRIEF"
)

// Types lists every checklist type in display order.
var Types = []Type{TypeTimeout, TypeDebrief}

// ParseType normalizes a user-supplied checklist type.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeTimeout:
		return TypeTimeout, nil
	case TypeDebrief:
		return TypeDebrief, nil
	}
	return "", Errorf(KindInvalidInput, "invalid checklist type %q (expected TIMEOUT or DEBRIEF)", s)
}

// Status represents the lifecycle state of a checklist instance.
type Status string

const (
	// StatusNotStarted is implicit: no instance row exists yet.
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// InitialStatus returns the status of a freshly started instance.
func InitialStatus() Status {
	return StatusInProgress
}

// ItemKind is the input kind of a checklist item.
type ItemKind string

const (
	KindCheckbox ItemKind = "checkbox"
	KindSelect   ItemKind = "select"
	KindText     ItemKind = "text"
	KindReadonly ItemKind = "readonly"
)

// Valid reports whether k is one of the four supported item kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindCheckbox, KindSelect, KindText, KindReadonly:
		return true
	}
	return false
}

// Role is a clinical role that can attest to a checklist.
type Role string

const (
	RoleCirculator Role = "CIRCULATOR"
	RoleScrub      Role = "SCRUB"
	RoleSurgeon    Role = "SURGEON"
	RoleAnesthesia Role = "ANESTHESIA"
)

// ParseRole upper-cases and trims a role name.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// SignatureMethod records how an attestation was captured.
type SignatureMethod string

const (
	MethodLogin  SignatureMethod = "LOGIN"
	MethodPIN    SignatureMethod = "PIN"
	MethodBadge  SignatureMethod = "BADGE"
	MethodVerbal SignatureMethod = "VERBAL"
)

// ParseMethod defaults to LOGIN when s is blank.
func ParseMethod(s string) (SignatureMethod, error) {
	m := SignatureMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case "":
		return MethodLogin, nil
	case MethodLogin, MethodPIN, MethodBadge, MethodVerbal:
		return m, nil
	}
	return "", Errorf(KindInvalidInput, "invalid signature method %q", s)
}

// Item is one row of a checklist template version.
type Item struct {
	Key      string   `json:"key" yaml:"key"`
	Label    string   `json:"label" yaml:"label"`
	Kind     ItemKind `json:"kind" yaml:"kind"`
	Required bool     `json:"required" yaml:"required"`
	// Options is only meaningful for select items.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	// VisibleWhen uses the signature condition language.
	VisibleWhen string `json:"visibleWhen,omitempty" yaml:"visible_when,omitempty"`
	// RoleRestriction limits who answers the item. Restricted items are
	// gated through signatures, not item completeness.
	RoleRestriction Role `json:"roleRestriction,omitempty" yaml:"role_restriction,omitempty"`
}

// RequiredSignature is a signature rule on a template version.
type RequiredSignature struct {
	Role        Role     `json:"role" yaml:"role"`
	Required    bool     `json:"required" yaml:"required"`
	Conditional bool     `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	Conditions  []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// FindItem returns the item with the given key.
func FindItem(items []Item, key string) (Item, bool) {
	for _, it := range items {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}

// RoleDefined reports whether role appears in the signature definitions.
func RoleDefined(sigs []RequiredSignature, role Role) bool {
	for _, s := range sigs {
		if s.Role == role {
			return true
		}
	}
	return false
}

// PendingReviews holds the two post-completion review flags.
type PendingReviews struct {
	Scrub   bool
	Surgeon bool
}

// reviewFlags maps each asynchronous reviewer role to its flag.
// Adding a reviewer role means adding a row here and a column in storage.
var reviewFlags = map[Role]func(*PendingReviews) *bool{
	RoleScrub:   func(p *PendingReviews) *bool { return &p.Scrub },
	RoleSurgeon: func(p *PendingReviews) *bool { return &p.Surgeon },
}

// ReviewRoles lists roles that support deferred sign-off.
var ReviewRoles = []Role{RoleScrub, RoleSurgeon}

// IsReviewRole reports whether role can carry a pending review.
func IsReviewRole(role Role) bool {
	_, ok := reviewFlags[role]
	return ok
}

// Mark sets the pending flag for role. Returns false for unsupported roles.
func (p *PendingReviews) Mark(role Role) bool {
	field, ok := reviewFlags[role]
	if !ok {
		return false
	}
	*field(p) = true
	return true
}

// Clear resets the pending flag for role.
func (p *PendingReviews) Clear(role Role) bool {
	field, ok := reviewFlags[role]
	if !ok {
		return false
	}
	*field(p) = false
	return true
}

// IsPending reports whether role currently owes a review.
func (p PendingReviews) IsPending(role Role) bool {
	field, ok := reviewFlags[role]
	if !ok {
		return false
	}
	return *field(&p)
}

// Any reports whether any review is outstanding.
func (p PendingReviews) Any() bool {
	return p.Scrub || p.Surgeon
}

// NotesKey is the synthetic response key that stores a reviewer's notes.
func NotesKey(role Role) string {
	return fmt.Sprintf("%s_notes", strings.ToLower(string(role)))
}
