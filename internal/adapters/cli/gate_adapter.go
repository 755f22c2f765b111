package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/safecase/internal/ports/primary"
)

// GateAdapter prints case gate decisions.
type GateAdapter struct {
	service primary.GateService
	out     io.Writer
}

// NewGateAdapter creates a new GateAdapter with the given service.
func NewGateAdapter(service primary.GateService, out io.Writer) *GateAdapter {
	return &GateAdapter{
		service: service,
		out:     out,
	}
}

// CanStart prints whether a case may start. The decision is also returned
// so callers can set an exit status.
func (a *GateAdapter) CanStart(ctx context.Context, facilityID, caseID string) (*primary.GateDecision, error) {
	d, err := a.service.CanStartCase(ctx, facilityID, caseID)
	if err != nil {
		return nil, err
	}
	a.render("start", d)
	return d, nil
}

// CanComplete prints whether a case may complete.
func (a *GateAdapter) CanComplete(ctx context.Context, facilityID, caseID string) (*primary.GateDecision, error) {
	d, err := a.service.CanCompleteCase(ctx, facilityID, caseID)
	if err != nil {
		return nil, err
	}
	a.render("complete", d)
	return d, nil
}

func (a *GateAdapter) render(action string, d *primary.GateDecision) {
	if d.Allowed {
		fmt.Fprintf(a.out, "%s %s may %s", okMark(), d.CaseID, action)
	} else {
		fmt.Fprintf(a.out, "%s %s may not %s: %s", missingMark(), d.CaseID, action, d.Reason)
	}
	if !d.FeatureEnabled {
		fmt.Fprint(a.out, color.New(color.FgHiBlack).Sprint(" (checklists disabled for facility)"))
	}
	fmt.Fprintln(a.out)
}
