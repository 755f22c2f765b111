// Package template contains the pure business logic for checklist template versions.
// Versions are immutable; guards here decide whether a new one may be published.
package template

import (
	"fmt"
	"strings"

	"github.com/example/safecase/internal/core/checklist"
)

// PublishContext provides the proposed contents of a new template version.
type PublishContext struct {
	Type       checklist.Type
	Items      []checklist.Item
	Signatures []checklist.RequiredSignature
}

// PublishResult is the outcome of validating a publish request. Warnings do
// not block publishing.
type PublishResult struct {
	checklist.GuardResult
	Warnings []string
}

// CanPublishVersion evaluates whether a template version may be published.
// Rules:
// - At least one item
// - Item keys non-empty, unique and free of '=' and '!', kinds known
// - Select items carry at least one option; other kinds carry none
// - Signature roles non-empty and unique
// - Conditional signatures carry at least one condition
// Conditions that do not parse are kept (they never match) and reported as warnings.
func CanPublishVersion(ctx PublishContext) PublishResult {
	if len(ctx.Items) == 0 {
		return denied("template must define at least one item")
	}

	keys := make(map[string]bool, len(ctx.Items))
	var warnings []string
	for i, item := range ctx.Items {
		key := strings.TrimSpace(item.Key)
		if key == "" {
			return denied("item %d has no key", i+1)
		}
		if !checklist.KeyReferenceable(key) {
			return denied("item key %q cannot contain '=' or '!'", key)
		}
		if keys[key] {
			return denied("duplicate item key %q", key)
		}
		keys[key] = true

		if !item.Kind.Valid() {
			return denied("item %q has invalid kind %q", key, item.Kind)
		}
		if item.Kind == checklist.KindSelect && len(item.Options) == 0 {
			return denied("select item %q must define options", key)
		}
		if item.Kind != checklist.KindSelect && len(item.Options) > 0 {
			return denied("item %q of kind %s cannot define options", key, item.Kind)
		}
		if item.VisibleWhen != "" {
			if _, err := checklist.ParseCondition(item.VisibleWhen); err != nil {
				warnings = append(warnings, fmt.Sprintf("item %q visibility condition %q is not recognized and will never match", key, item.VisibleWhen))
			}
		}
	}

	roles := make(map[checklist.Role]bool, len(ctx.Signatures))
	for i, sig := range ctx.Signatures {
		if sig.Role == "" {
			return denied("signature %d has no role", i+1)
		}
		if roles[sig.Role] {
			return denied("duplicate signature role %s", sig.Role)
		}
		roles[sig.Role] = true

		if !sig.Conditional {
			continue
		}
		if len(sig.Conditions) == 0 {
			return denied("conditional signature %s must define at least one condition", sig.Role)
		}
		for _, raw := range sig.Conditions {
			if _, err := checklist.ParseCondition(raw); err != nil {
				warnings = append(warnings, fmt.Sprintf("signature %s condition %q is not recognized and will never match", sig.Role, raw))
			}
		}
		switch {
		case !checklist.IsReviewRole(sig.Role):
			warnings = append(warnings, fmt.Sprintf("conditional signature %s has no pending-review flag; it will not block completion", sig.Role))
		case ctx.Type != checklist.TypeDebrief:
			warnings = append(warnings, fmt.Sprintf("conditional signature %s on a %s checklist cannot be reviewed after completion; it will not block completion", sig.Role, ctx.Type))
		}
	}

	return PublishResult{GuardResult: checklist.GuardResult{Allowed: true}, Warnings: warnings}
}

func denied(format string, args ...any) PublishResult {
	return PublishResult{GuardResult: checklist.GuardResult{
		Allowed: false,
		Kind:    checklist.KindInvalidInput,
		Reason:  fmt.Sprintf(format, args...),
	}}
}

// NextVersionNumber returns max(existing)+1, starting at 1.
func NextVersionNumber(existing []int) int {
	highest := 0
	for _, n := range existing {
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

// Normalize trims keys and upper-cases roles so stored versions are canonical.
func Normalize(items []checklist.Item, sigs []checklist.RequiredSignature) ([]checklist.Item, []checklist.RequiredSignature) {
	outItems := make([]checklist.Item, len(items))
	for i, it := range items {
		it.Key = strings.TrimSpace(it.Key)
		it.Kind = checklist.ItemKind(strings.ToLower(strings.TrimSpace(string(it.Kind))))
		if it.RoleRestriction != "" {
			it.RoleRestriction = checklist.ParseRole(string(it.RoleRestriction))
		}
		outItems[i] = it
	}
	outSigs := make([]checklist.RequiredSignature, len(sigs))
	for i, s := range sigs {
		s.Role = checklist.ParseRole(string(s.Role))
		outSigs[i] = s
	}
	return outItems, outSigs
}

// DefaultName returns the display name for a provisioned template.
func DefaultName(t checklist.Type) string {
	switch t {
	case checklist.TypeTimeout:
		return "Surgical Time Out"
	case checklist.TypeDebrief:
		return "Post-Op Debrief"
	}
	return string(t)
}
