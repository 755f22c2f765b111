package app

import (
	"context"
	"fmt"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
	"github.com/example/safecase/internal/ports/secondary"
)

// GateServiceImpl implements the GateService interface.
type GateServiceImpl struct {
	settings      secondary.FacilitySettingsProvider
	checklistRepo secondary.ChecklistRepository
}

// NewGateService creates a new GateService with injected dependencies.
func NewGateService(settings secondary.FacilitySettingsProvider, checklistRepo secondary.ChecklistRepository) *GateServiceImpl {
	return &GateServiceImpl{
		settings:      settings,
		checklistRepo: checklistRepo,
	}
}

// CanStartCase reports whether the case's TIMEOUT allows it to move to in-progress.
func (s *GateServiceImpl) CanStartCase(ctx context.Context, facilityID, caseID string) (*primary.GateDecision, error) {
	return s.decide(ctx, facilityID, caseID, checklist.TypeTimeout, checklist.CanStartCase)
}

// CanCompleteCase reports whether the case's DEBRIEF allows it to move to completed.
func (s *GateServiceImpl) CanCompleteCase(ctx context.Context, facilityID, caseID string) (*primary.GateDecision, error) {
	return s.decide(ctx, facilityID, caseID, checklist.TypeDebrief, checklist.CanCompleteCase)
}

func (s *GateServiceImpl) decide(
	ctx context.Context,
	facilityID, caseID string,
	t checklist.Type,
	gate func(checklist.FeatureFlags, checklist.Status) checklist.GuardResult,
) (*primary.GateDecision, error) {
	enabled, err := s.settings.GetEnableTimeoutDebrief(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get facility settings: %w", err)
	}
	flags := checklist.FeatureFlags{EnableTimeoutDebrief: enabled}

	status := checklist.StatusNotStarted
	if enabled {
		instance, err := s.checklistRepo.GetByCaseAndType(ctx, caseID, t)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s checklist: %w", t, err)
		}
		if instance != nil && instance.FacilityID == facilityID {
			status = instance.Status
		}
	}

	result := gate(flags, status)
	return &primary.GateDecision{
		CaseID:         caseID,
		Allowed:        result.Allowed,
		FeatureEnabled: enabled,
		Reason:         result.Reason,
	}, nil
}

// Ensure GateServiceImpl implements the interface
var _ primary.GateService = (*GateServiceImpl)(nil)
