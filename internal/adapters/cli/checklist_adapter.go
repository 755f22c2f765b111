package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
)

// ChecklistAdapter is a thin adapter that translates CLI operations to ChecklistService calls.
type ChecklistAdapter struct {
	service primary.ChecklistService
	out     io.Writer
}

// NewChecklistAdapter creates a new ChecklistAdapter with the given service.
func NewChecklistAdapter(service primary.ChecklistService, out io.Writer) *ChecklistAdapter {
	return &ChecklistAdapter{
		service: service,
		out:     out,
	}
}

// Start starts a checklist and prints it.
func (a *ChecklistAdapter) Start(ctx context.Context, req primary.StartChecklistRequest) error {
	p, err := a.service.StartChecklist(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Started %s checklist %s for %s\n", okMark(), p.Type, p.ID, p.CaseID)
	a.render(p)
	return nil
}

// Respond records a response.
func (a *ChecklistAdapter) Respond(ctx context.Context, req primary.RecordResponseRequest) error {
	p, err := a.service.RecordResponse(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Recorded %s = %q on %s\n", okMark(), req.ItemKey, req.Value, p.ID)
	return nil
}

// Sign records a role attestation.
func (a *ChecklistAdapter) Sign(ctx context.Context, req primary.AddSignatureRequest) error {
	p, err := a.service.AddSignature(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s signed %s\n", okMark(), strings.ToUpper(string(req.Role)), p.ID)
	return nil
}

// Complete runs the completion gate.
func (a *ChecklistAdapter) Complete(ctx context.Context, req primary.CompleteChecklistRequest) error {
	p, err := a.service.CompleteChecklist(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s checklist %s completed\n", okMark(), p.Type, p.ID)
	for _, role := range pendingRoles(p) {
		fmt.Fprintf(a.out, "  %s\n", pendingMarker(role))
	}
	return nil
}

// Review records a deferred sign-off.
func (a *ChecklistAdapter) Review(ctx context.Context, req primary.AsyncReviewRequest) error {
	p, err := a.service.RecordAsyncReview(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s review recorded on %s\n", okMark(), strings.ToUpper(string(req.Role)), p.ID)
	return nil
}

// Show prints one checklist.
func (a *ChecklistAdapter) Show(ctx context.Context, facilityID, instanceID string) error {
	p, err := a.service.GetChecklist(ctx, facilityID, instanceID)
	if err != nil {
		return err
	}
	a.render(p)
	return nil
}

// List prints every checklist type for a case.
func (a *ChecklistAdapter) List(ctx context.Context, facilityID, caseID string) error {
	projections, err := a.service.GetChecklistsForCase(ctx, facilityID, caseID)
	if err != nil {
		return fmt.Errorf("failed to list checklists: %w", err)
	}

	fmt.Fprintf(a.out, "\n%-10s %-38s %-12s %s\n", "TYPE", "ID", "STATUS", "COMPLETED")
	fmt.Fprintln(a.out, rule)
	for _, p := range projections {
		fmt.Fprintf(a.out, "%-10s %-38s %-12s %s", p.Type, orDash(p.ID), statusBadge(p.Status), formatTimePtr(p.CompletedAt))
		for _, role := range pendingRoles(p) {
			fmt.Fprintf(a.out, " %s", pendingMarker(role))
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintln(a.out)
	return nil
}

// History prints every response on a checklist in recorded order.
func (a *ChecklistAdapter) History(ctx context.Context, facilityID, instanceID, itemKey string) error {
	entries, err := a.service.GetResponseHistory(ctx, facilityID, instanceID, itemKey)
	if err != nil {
		return fmt.Errorf("failed to get response history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No responses recorded")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-17s %-24s %-20s %s\n", "RECORDED", "ITEM", "BY", "VALUE")
	fmt.Fprintln(a.out, rule)
	for _, e := range entries {
		fmt.Fprintf(a.out, "%-17s %-24s %-20s %s\n", formatTime(e.CompletedAt), e.ItemKey, orDash(e.ActorName), e.Value)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Pending prints outstanding deferred reviews.
func (a *ChecklistAdapter) Pending(ctx context.Context, facilityID string) error {
	pending, err := a.service.GetPendingReviews(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("failed to list pending reviews: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No pending reviews")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-38s %-12s %-10s %s\n", "CHECKLIST", "CASE", "ROLE", "COMPLETED")
	fmt.Fprintln(a.out, rule)
	for _, r := range pending {
		fmt.Fprintf(a.out, "%-38s %-12s %-10s %s\n", r.InstanceID, r.CaseID, r.Role, formatTimePtr(r.CompletedAt))
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *ChecklistAdapter) render(p *primary.ChecklistProjection) {
	fmt.Fprintf(a.out, "\n%s checklist %s [%s]\n", p.Type, orDash(p.ID), statusBadge(p.Status))
	fmt.Fprintf(a.out, "Case:      %s\n", p.CaseID)
	if p.TemplateName != "" {
		fmt.Fprintf(a.out, "Template:  %s v%d\n", p.TemplateName, p.TemplateVersionNumber)
	}
	if p.RoomID != "" {
		fmt.Fprintf(a.out, "Room:      %s\n", orDash(p.RoomName))
	}
	if p.StartedAt != nil {
		fmt.Fprintf(a.out, "Started:   %s by %s\n", formatTime(*p.StartedAt), orDash(p.StartedByName))
	}
	if p.CompletedAt != nil {
		fmt.Fprintf(a.out, "Completed: %s\n", formatTime(*p.CompletedAt))
	}

	if len(p.Items) > 0 {
		fmt.Fprintln(a.out, "\nItems:")
		for _, it := range p.Items {
			a.renderItem(it)
		}
	}

	if len(p.Signatures) > 0 {
		fmt.Fprintln(a.out, "\nSignatures:")
		for _, s := range p.Signatures {
			a.renderSignature(s)
		}
	}

	for _, role := range pendingRoles(p) {
		fmt.Fprintf(a.out, "\n%s\n", pendingMarker(role))
	}
	if len(p.ReviewNotes) > 0 {
		fmt.Fprintln(a.out, "\nReview notes:")
		for _, n := range p.ReviewNotes {
			fmt.Fprintf(a.out, "  %s (%s, %s): %s\n", n.ItemKey, orDash(n.ActorName), formatTime(n.CompletedAt), n.Value)
		}
	}
	fmt.Fprintln(a.out)
}

func (a *ChecklistAdapter) renderItem(it primary.ItemView) {
	label := it.Label
	if it.Required {
		label += " *"
	}
	switch {
	case !it.Visible:
		fmt.Fprintf(a.out, "  %s %-40s %s\n", idleMark(), label, color.New(color.FgHiBlack).Sprint("(hidden)"))
	case it.Response != nil:
		fmt.Fprintf(a.out, "  %s %-40s %-16s %s\n", okMark(), label, it.Response.Value, orDash(it.Response.ActorName))
	case it.Required && it.RoleRestriction == "":
		fmt.Fprintf(a.out, "  %s %-40s\n", missingMark(), label)
	default:
		fmt.Fprintf(a.out, "  %s %-40s\n", idleMark(), label)
	}
}

func (a *ChecklistAdapter) renderSignature(s primary.SignatureView) {
	switch {
	case s.Signed:
		fmt.Fprintf(a.out, "  %s %-11s %s (%s, %s)\n", okMark(), s.Role, orDash(s.ActorName), s.Method, formatTimePtr(s.SignedAt))
	case s.CurrentlyRequired:
		fmt.Fprintf(a.out, "  %s %-11s required\n", missingMark(), s.Role)
	case s.Conditional:
		fmt.Fprintf(a.out, "  %s %-11s required when %s\n", idleMark(), s.Role, strings.Join(s.Conditions, " or "))
	default:
		fmt.Fprintf(a.out, "  %s %-11s optional\n", idleMark(), s.Role)
	}
}

func pendingRoles(p *primary.ChecklistProjection) []checklist.Role {
	var roles []checklist.Role
	if p.PendingScrubReview {
		roles = append(roles, checklist.RoleScrub)
	}
	if p.PendingSurgeonReview {
		roles = append(roles, checklist.RoleSurgeon)
	}
	return roles
}
