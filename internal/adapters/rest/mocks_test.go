package rest

import (
	"context"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
)

// mockChecklistService implements primary.ChecklistService for testing
type mockChecklistService struct {
	startFn    func(ctx context.Context, req primary.StartChecklistRequest) (*primary.ChecklistProjection, error)
	respondFn  func(ctx context.Context, req primary.RecordResponseRequest) (*primary.ChecklistProjection, error)
	signFn     func(ctx context.Context, req primary.AddSignatureRequest) (*primary.ChecklistProjection, error)
	completeFn func(ctx context.Context, req primary.CompleteChecklistRequest) (*primary.ChecklistProjection, error)
	reviewFn   func(ctx context.Context, req primary.AsyncReviewRequest) (*primary.ChecklistProjection, error)
	getFn      func(ctx context.Context, facilityID, instanceID string) (*primary.ChecklistProjection, error)

	// Track calls for verification
	lastStartReq   primary.StartChecklistRequest
	lastRespondReq primary.RecordResponseRequest
	lastSignReq    primary.AddSignatureRequest
	lastReviewReq  primary.AsyncReviewRequest
	lastHistoryKey string
	lastFacility   string
}

func projectionFor(id string) *primary.ChecklistProjection {
	return &primary.ChecklistProjection{
		ID:         id,
		CaseID:     "CASE-001",
		FacilityID: "FAC-001",
		Type:       checklist.TypeTimeout,
		Status:     checklist.StatusInProgress,
	}
}

func (m *mockChecklistService) StartChecklist(ctx context.Context, req primary.StartChecklistRequest) (*primary.ChecklistProjection, error) {
	m.lastStartReq = req
	if m.startFn != nil {
		return m.startFn(ctx, req)
	}
	return projectionFor("chk-1"), nil
}

func (m *mockChecklistService) RecordResponse(ctx context.Context, req primary.RecordResponseRequest) (*primary.ChecklistProjection, error) {
	m.lastRespondReq = req
	if m.respondFn != nil {
		return m.respondFn(ctx, req)
	}
	return projectionFor(req.InstanceID), nil
}

func (m *mockChecklistService) AddSignature(ctx context.Context, req primary.AddSignatureRequest) (*primary.ChecklistProjection, error) {
	m.lastSignReq = req
	if m.signFn != nil {
		return m.signFn(ctx, req)
	}
	return projectionFor(req.InstanceID), nil
}

func (m *mockChecklistService) CompleteChecklist(ctx context.Context, req primary.CompleteChecklistRequest) (*primary.ChecklistProjection, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	p := projectionFor(req.InstanceID)
	p.Status = checklist.StatusCompleted
	return p, nil
}

func (m *mockChecklistService) RecordAsyncReview(ctx context.Context, req primary.AsyncReviewRequest) (*primary.ChecklistProjection, error) {
	m.lastReviewReq = req
	if m.reviewFn != nil {
		return m.reviewFn(ctx, req)
	}
	return projectionFor(req.InstanceID), nil
}

func (m *mockChecklistService) GetChecklist(ctx context.Context, facilityID, instanceID string) (*primary.ChecklistProjection, error) {
	m.lastFacility = facilityID
	if m.getFn != nil {
		return m.getFn(ctx, facilityID, instanceID)
	}
	return projectionFor(instanceID), nil
}

func (m *mockChecklistService) GetChecklistsForCase(ctx context.Context, facilityID, caseID string) ([]*primary.ChecklistProjection, error) {
	m.lastFacility = facilityID
	return []*primary.ChecklistProjection{
		projectionFor("chk-1"),
		{CaseID: caseID, FacilityID: facilityID, Type: checklist.TypeDebrief, Status: checklist.StatusNotStarted},
	}, nil
}

func (m *mockChecklistService) GetResponseHistory(ctx context.Context, facilityID, instanceID, itemKey string) ([]*primary.ResponseEntry, error) {
	m.lastHistoryKey = itemKey
	return []*primary.ResponseEntry{{ItemKey: "sponge_count", Value: "10"}}, nil
}

func (m *mockChecklistService) GetPendingReviews(ctx context.Context, facilityID string) ([]*primary.PendingReview, error) {
	m.lastFacility = facilityID
	return []*primary.PendingReview{{InstanceID: "chk-2", CaseID: "CASE-002", Role: checklist.RoleScrub}}, nil
}

// mockTemplateService implements primary.TemplateService for testing
type mockTemplateService struct {
	lastPublishReq primary.PublishTemplateRequest
}

func (m *mockTemplateService) PublishTemplateVersion(ctx context.Context, req primary.PublishTemplateRequest) (*primary.PublishTemplateResponse, error) {
	m.lastPublishReq = req
	if len(req.Items) == 0 {
		return nil, checklist.Errorf(checklist.KindInvalidInput, "a template version needs at least one item")
	}
	return &primary.PublishTemplateResponse{
		Version:  &primary.TemplateVersion{ID: "ver-2", VersionNumber: 2, Items: req.Items},
		Warnings: []string{"condition \"x>1\" is not understood and will never match"},
	}, nil
}

func (m *mockTemplateService) GetTemplates(ctx context.Context, facilityID string) ([]*primary.Template, error) {
	return []*primary.Template{{ID: "tpl-1", FacilityID: facilityID, Type: checklist.TypeTimeout, IsActive: true}}, nil
}

func (m *mockTemplateService) GetCurrentTemplate(ctx context.Context, facilityID string, t checklist.Type) (*primary.Template, error) {
	if t == checklist.TypeDebrief {
		return nil, checklist.Errorf(checklist.KindNotFound, "no active %s template for this facility", t)
	}
	return &primary.Template{ID: "tpl-1", Type: t, IsActive: true}, nil
}

func (m *mockTemplateService) GetTemplateVersion(ctx context.Context, facilityID, versionID string) (*primary.TemplateVersion, error) {
	return &primary.TemplateVersion{ID: versionID}, nil
}

func (m *mockTemplateService) ListTemplateVersions(ctx context.Context, facilityID string, t checklist.Type) ([]*primary.TemplateVersion, error) {
	return []*primary.TemplateVersion{{ID: "ver-2", VersionNumber: 2}, {ID: "ver-1", VersionNumber: 1}}, nil
}

func (m *mockTemplateService) SetTemplateActive(ctx context.Context, facilityID string, t checklist.Type, active bool) error {
	return nil
}

// mockGateService implements primary.GateService for testing
type mockGateService struct{}

func (m *mockGateService) CanStartCase(ctx context.Context, facilityID, caseID string) (*primary.GateDecision, error) {
	return &primary.GateDecision{CaseID: caseID, Allowed: true, FeatureEnabled: true}, nil
}

func (m *mockGateService) CanCompleteCase(ctx context.Context, facilityID, caseID string) (*primary.GateDecision, error) {
	return &primary.GateDecision{CaseID: caseID, Allowed: false, FeatureEnabled: true, Reason: "DEBRIEF checklist must be completed"}, nil
}

// mockLogService implements primary.LogService for testing
type mockLogService struct {
	lastFilters primary.LogFilters
}

func (m *mockLogService) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	m.lastFilters = filters
	return []*primary.LogEntry{{ID: "evt-1", EntityType: "checklist", EntityID: filters.EntityID, Action: "create"}}, nil
}
