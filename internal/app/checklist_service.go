package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
	"github.com/example/safecase/internal/ports/secondary"
)

// ChecklistServiceImpl implements the ChecklistService interface.
type ChecklistServiceImpl struct {
	checklistRepo   secondary.ChecklistRepository
	templateService primary.TemplateService
	caseProvider    secondary.CaseProvider
	roomDirectory   secondary.RoomDirectory
	userDirectory   secondary.UserDirectory
	logWriter       secondary.LogWriter
	now             func() time.Time
	newID           func() string
}

// NewChecklistService creates a new ChecklistService with injected dependencies.
func NewChecklistService(
	checklistRepo secondary.ChecklistRepository,
	templateService primary.TemplateService,
	caseProvider secondary.CaseProvider,
	roomDirectory secondary.RoomDirectory,
	userDirectory secondary.UserDirectory,
	logWriter secondary.LogWriter,
) *ChecklistServiceImpl {
	return &ChecklistServiceImpl{
		checklistRepo:   checklistRepo,
		templateService: templateService,
		caseProvider:    caseProvider,
		roomDirectory:   roomDirectory,
		userDirectory:   userDirectory,
		logWriter:       logWriter,
		now:             utcNow,
		newID:           uuid.NewString,
	}
}

// StartChecklist creates the instance for (case, type) pinned to the current template version.
func (s *ChecklistServiceImpl) StartChecklist(ctx context.Context, req primary.StartChecklistRequest) (*primary.ChecklistProjection, error) {
	t, err := checklist.ParseType(string(req.Type))
	if err != nil {
		return nil, err
	}

	// Gather context for guards
	caseState, err := s.caseProvider.GetCaseActiveState(ctx, req.CaseID, req.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	existing, err := s.checklistRepo.GetByCaseAndType(ctx, req.CaseID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing checklist: %w", err)
	}

	tpl, err := s.templateService.GetCurrentTemplate(ctx, req.FacilityID, t)
	if err != nil && !checklist.IsKind(err, checklist.KindNotFound) {
		return nil, err
	}

	var room *secondary.RoomRecord
	if req.RoomID != "" {
		room, err = s.roomDirectory.GetActiveRoom(ctx, req.RoomID, req.FacilityID)
		if err != nil {
			return nil, fmt.Errorf("failed to get room: %w", err)
		}
	}

	// Evaluate guard
	guardCtx := checklist.StartContext{
		CaseID:            req.CaseID,
		Type:              t,
		CaseExists:        caseState != nil,
		InstanceExists:    existing != nil,
		TemplateAvailable: tpl != nil && tpl.CurrentVersion != nil,
		RoomID:            req.RoomID,
		RoomValid:         room != nil,
	}
	if caseState != nil {
		guardCtx.CaseActive = caseState.IsActive
		guardCtx.CaseCancelled = caseState.IsCancelled
	}
	if err := checklist.CanStartChecklist(guardCtx).Error(); err != nil {
		return nil, err
	}

	record := &secondary.InstanceRecord{
		ID:                s.newID(),
		CaseID:            req.CaseID,
		FacilityID:        req.FacilityID,
		Type:              t,
		TemplateVersionID: tpl.CurrentVersion.ID,
		RoomID:            req.RoomID,
		Status:            checklist.InitialStatus(),
		CreatedBy:         req.ActorID,
		StartedAt:         s.now(),
	}
	if err := s.checklistRepo.Create(ctx, record); err != nil {
		if errors.Is(err, secondary.ErrConflict) {
			return nil, checklist.Errorf(checklist.KindAlreadyExists, "%s checklist already exists for case %s", t, req.CaseID)
		}
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}

	logAudit(s.logWriter.LogCreate(ctx, "checklist", record.ID))
	glog.V(1).Infof("started %s checklist %s for case %s (template v%d)",
		t, record.ID, req.CaseID, tpl.CurrentVersion.VersionNumber)

	return s.projectInstance(ctx, record, tpl.CurrentVersion)
}

// RecordResponse appends a response fact for one item.
func (s *ChecklistServiceImpl) RecordResponse(ctx context.Context, req primary.RecordResponseRequest) (*primary.ChecklistProjection, error) {
	instance, version, err := s.loadInstance(ctx, req.FacilityID, req.InstanceID)
	if err != nil {
		return nil, err
	}

	guardCtx := checklist.RespondContext{
		InstanceID:     req.InstanceID,
		InstanceExists: instance != nil,
		ItemKey:        req.ItemKey,
	}
	if instance != nil {
		guardCtx.Status = instance.Status
		_, guardCtx.ItemDefined = checklist.FindItem(version.Items, req.ItemKey)
	}
	if err := checklist.CanRecordResponse(guardCtx).Error(); err != nil {
		return nil, err
	}

	response := &secondary.ResponseRecord{
		ID:          s.newID(),
		InstanceID:  instance.ID,
		ItemKey:     req.ItemKey,
		Value:       req.Value,
		ActorID:     req.ActorID,
		CompletedAt: s.now(),
	}
	if err := s.checklistRepo.AppendResponse(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}
	logAudit(s.logWriter.LogUpdate(ctx, "checklist", instance.ID, req.ItemKey, "", req.Value))

	return s.projectInstance(ctx, instance, version)
}

// AddSignature appends a role attestation.
func (s *ChecklistServiceImpl) AddSignature(ctx context.Context, req primary.AddSignatureRequest) (*primary.ChecklistProjection, error) {
	role := checklist.ParseRole(string(req.Role))
	method, err := checklist.ParseMethod(string(req.Method))
	if err != nil {
		return nil, err
	}

	instance, version, err := s.loadInstance(ctx, req.FacilityID, req.InstanceID)
	if err != nil {
		return nil, err
	}

	guardCtx := checklist.SignContext{
		InstanceID:     req.InstanceID,
		InstanceExists: instance != nil,
		Role:           role,
	}
	if instance != nil {
		guardCtx.Status = instance.Status
		guardCtx.RoleDefined = checklist.RoleDefined(version.Signatures, role)
		guardCtx.AlreadySigned, err = s.hasSigned(ctx, s.checklistRepo, instance.ID, role)
		if err != nil {
			return nil, err
		}
	}
	if err := checklist.CanAddSignature(guardCtx).Error(); err != nil {
		return nil, err
	}

	signature := &secondary.SignatureRecord{
		ID:         s.newID(),
		InstanceID: instance.ID,
		Role:       role,
		ActorID:    req.ActorID,
		Method:     method,
		SignedAt:   s.now(),
	}
	if err := s.checklistRepo.AppendSignature(ctx, signature); err != nil {
		if errors.Is(err, secondary.ErrConflict) {
			return nil, checklist.Errorf(checklist.KindAlreadySigned, "%s has already signed this checklist", role)
		}
		return nil, fmt.Errorf("failed to record signature: %w", err)
	}
	logAudit(s.logWriter.LogCreate(ctx, "signature", signature.ID))

	return s.projectInstance(ctx, instance, version)
}

// CompleteChecklist runs the completion gate and transitions the instance to COMPLETED.
// The gate reads and the status write share one transaction.
func (s *ChecklistServiceImpl) CompleteChecklist(ctx context.Context, req primary.CompleteChecklistRequest) (*primary.ChecklistProjection, error) {
	instance, version, err := s.loadInstance(ctx, req.FacilityID, req.InstanceID)
	if err != nil {
		return nil, err
	}

	guardCtx := checklist.CompleteContext{
		InstanceID:     req.InstanceID,
		InstanceExists: instance != nil,
	}
	if instance != nil {
		guardCtx.Status = instance.Status
	}
	if err := checklist.CanComplete(guardCtx).Error(); err != nil {
		return nil, err
	}

	var outcome checklist.CompletionOutcome
	err = s.checklistRepo.WithinTx(ctx, func(repo secondary.ChecklistRepository) error {
		latest, err := repo.LatestResponses(ctx, instance.ID)
		if err != nil {
			return fmt.Errorf("failed to load responses: %w", err)
		}
		signatures, err := repo.ListSignatures(ctx, instance.ID)
		if err != nil {
			return fmt.Errorf("failed to load signatures: %w", err)
		}

		outcome, err = checklist.EvaluateCompletion(checklist.CompletionInput{
			Items:       version.Items,
			Signatures:  version.Signatures,
			Responses:   responseValues(latest),
			SignedRoles: signedRoles(signatures),
		})
		if err != nil {
			return err
		}

		completedAt := s.now()
		if err := repo.SetCompleted(ctx, instance.ID, completedAt, outcome.Pending); err != nil {
			return err
		}
		instance.Status = checklist.StatusCompleted
		instance.CompletedAt = &completedAt
		instance.PendingScrubReview = outcome.Pending.Scrub
		instance.PendingSurgeonReview = outcome.Pending.Surgeon
		return nil
	})
	if errors.Is(err, secondary.ErrConflict) {
		return nil, checklist.Errorf(checklist.KindAlreadyCompleted, "checklist %s is already completed", instance.ID)
	}
	if err != nil {
		if checklist.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to complete checklist: %w", err)
	}

	for _, role := range outcome.Unflagged {
		glog.Warningf("checklist %s: conditional %s signature is required but has no pending-review flag", instance.ID, role)
	}
	logAudit(s.logWriter.LogUpdate(ctx, "checklist", instance.ID, "status",
		string(checklist.StatusInProgress), string(checklist.StatusCompleted)))
	glog.V(1).Infof("completed checklist %s (pending scrub=%t surgeon=%t)",
		instance.ID, outcome.Pending.Scrub, outcome.Pending.Surgeon)

	return s.projectInstance(ctx, instance, version)
}

// RecordAsyncReview records a deferred SCRUB or SURGEON sign-off on a completed DEBRIEF.
// Status and completedAt are left untouched.
func (s *ChecklistServiceImpl) RecordAsyncReview(ctx context.Context, req primary.AsyncReviewRequest) (*primary.ChecklistProjection, error) {
	role := checklist.ParseRole(string(req.Role))
	method, err := checklist.ParseMethod(string(req.Method))
	if err != nil {
		return nil, err
	}

	instance, version, err := s.loadInstance(ctx, req.FacilityID, req.InstanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, checklist.Errorf(checklist.KindNotFound, "checklist %s not found", req.InstanceID)
	}

	err = s.checklistRepo.WithinTx(ctx, func(repo secondary.ChecklistRepository) error {
		current, err := repo.GetByID(ctx, instance.ID)
		if err != nil {
			return fmt.Errorf("failed to get checklist: %w", err)
		}
		if current == nil {
			return checklist.Errorf(checklist.KindNotFound, "checklist %s not found", instance.ID)
		}
		signed, err := s.hasSigned(ctx, repo, instance.ID, role)
		if err != nil {
			return err
		}

		result := checklist.CanRecordAsyncReview(checklist.ReviewContext{
			InstanceID:     instance.ID,
			InstanceExists: current != nil,
			Type:           current.Type,
			Status:         current.Status,
			Role:           role,
			Pending:        current.Pending().IsPending(role),
			AlreadySigned:  signed,
		})
		if err := result.Error(); err != nil {
			return err
		}

		at := s.now()
		if strings.TrimSpace(req.Notes) != "" {
			if err := repo.AppendResponse(ctx, &secondary.ResponseRecord{
				ID:          s.newID(),
				InstanceID:  instance.ID,
				ItemKey:     checklist.NotesKey(role),
				Value:       req.Notes,
				ActorID:     req.ActorID,
				CompletedAt: at,
			}); err != nil {
				return fmt.Errorf("failed to record review notes: %w", err)
			}
		}

		if err := repo.AppendSignature(ctx, &secondary.SignatureRecord{
			ID:         s.newID(),
			InstanceID: instance.ID,
			Role:       role,
			ActorID:    req.ActorID,
			Method:     method,
			SignedAt:   at,
		}); err != nil {
			return err
		}

		if err := repo.ClearPendingReview(ctx, instance.ID, role, at); err != nil {
			return fmt.Errorf("failed to clear pending review: %w", err)
		}
		*instance = *current
		pending := instance.Pending()
		pending.Clear(role)
		instance.PendingScrubReview = pending.Scrub
		instance.PendingSurgeonReview = pending.Surgeon
		switch role {
		case checklist.RoleScrub:
			instance.ScrubReviewCompletedAt = &at
		case checklist.RoleSurgeon:
			instance.SurgeonReviewCompletedAt = &at
		}
		return nil
	})
	if errors.Is(err, secondary.ErrConflict) {
		return nil, checklist.Errorf(checklist.KindAlreadyReviewed, "%s review already recorded", role)
	}
	if err != nil {
		if checklist.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	logAudit(s.logWriter.LogUpdate(ctx, "checklist", instance.ID,
		"pending_"+strings.ToLower(string(role))+"_review", "true", "false"))

	return s.projectInstance(ctx, instance, version)
}

// GetChecklist retrieves the projection of one instance.
func (s *ChecklistServiceImpl) GetChecklist(ctx context.Context, facilityID, instanceID string) (*primary.ChecklistProjection, error) {
	instance, version, err := s.loadInstance(ctx, facilityID, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, checklist.Errorf(checklist.KindNotFound, "checklist %s not found", instanceID)
	}
	return s.projectInstance(ctx, instance, version)
}

// GetChecklistsForCase returns one projection per checklist type.
func (s *ChecklistServiceImpl) GetChecklistsForCase(ctx context.Context, facilityID, caseID string) ([]*primary.ChecklistProjection, error) {
	caseState, err := s.caseProvider.GetCaseActiveState(ctx, caseID, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	if caseState == nil {
		return nil, checklist.Errorf(checklist.KindNotFound, "case %s not found", caseID)
	}

	records, err := s.checklistRepo.ListByCase(ctx, facilityID, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	byType := make(map[checklist.Type]*secondary.InstanceRecord, len(records))
	for _, r := range records {
		byType[r.Type] = r
	}

	projections := make([]*primary.ChecklistProjection, 0, len(checklist.Types))
	for _, t := range checklist.Types {
		record, ok := byType[t]
		if !ok {
			projections = append(projections, notStarted(facilityID, caseID, t))
			continue
		}
		version, err := s.templateService.GetTemplateVersion(ctx, facilityID, record.TemplateVersionID)
		if err != nil {
			return nil, err
		}
		projection, err := s.projectInstance(ctx, record, version)
		if err != nil {
			return nil, err
		}
		projections = append(projections, projection)
	}
	return projections, nil
}

// GetResponseHistory replays every response on an instance in recording order.
func (s *ChecklistServiceImpl) GetResponseHistory(ctx context.Context, facilityID, instanceID, itemKey string) ([]*primary.ResponseEntry, error) {
	instance, err := s.checklistRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	if instance == nil || instance.FacilityID != facilityID {
		return nil, checklist.Errorf(checklist.KindNotFound, "checklist %s not found", instanceID)
	}

	records, err := s.checklistRepo.ResponseHistory(ctx, instanceID, itemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load response history: %w", err)
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ActorID)
	}
	names := s.displayNames(ctx, ids)

	entries := make([]*primary.ResponseEntry, len(records))
	for i, r := range records {
		entry := toResponseEntry(r, names)
		entries[i] = &entry
	}
	return entries, nil
}

// GetPendingReviews lists outstanding asynchronous reviews in a facility.
// Flags left on a TIMEOUT by a conditional review role are not reviewable and
// are omitted.
func (s *ChecklistServiceImpl) GetPendingReviews(ctx context.Context, facilityID string) ([]*primary.PendingReview, error) {
	records, err := s.checklistRepo.ListPendingReviews(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}

	var reviews []*primary.PendingReview
	for _, r := range records {
		// Only a DEBRIEF can take a deferred review.
		if r.Type != checklist.TypeDebrief {
			continue
		}
		pending := r.Pending()
		for _, role := range checklist.ReviewRoles {
			if !pending.IsPending(role) {
				continue
			}
			reviews = append(reviews, &primary.PendingReview{
				InstanceID:  r.ID,
				CaseID:      r.CaseID,
				Role:        role,
				CompletedAt: r.CompletedAt,
			})
		}
	}
	return reviews, nil
}

// Helper methods

// loadInstance returns the instance and its pinned version, or nil, nil, nil
// when the instance is absent or belongs to another facility.
func (s *ChecklistServiceImpl) loadInstance(ctx context.Context, facilityID, instanceID string) (*secondary.InstanceRecord, *primary.TemplateVersion, error) {
	instance, err := s.checklistRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	if instance == nil || instance.FacilityID != facilityID {
		return nil, nil, nil
	}

	version, err := s.templateService.GetTemplateVersion(ctx, facilityID, instance.TemplateVersionID)
	if err != nil {
		return nil, nil, err
	}
	return instance, version, nil
}

func (s *ChecklistServiceImpl) hasSigned(ctx context.Context, repo secondary.ChecklistRepository, instanceID string, role checklist.Role) (bool, error) {
	signatures, err := repo.ListSignatures(ctx, instanceID)
	if err != nil {
		return false, fmt.Errorf("failed to load signatures: %w", err)
	}
	return signedRoles(signatures).Contains(role), nil
}

func responseValues(records []*secondary.ResponseRecord) map[string]string {
	values := make(map[string]string, len(records))
	for _, r := range records {
		values[r.ItemKey] = r.Value
	}
	return values
}

func signedRoles(records []*secondary.SignatureRecord) mapset.Set[checklist.Role] {
	roles := mapset.NewThreadUnsafeSet[checklist.Role]()
	for _, r := range records {
		roles.Add(r.Role)
	}
	return roles
}

func notStarted(facilityID, caseID string, t checklist.Type) *primary.ChecklistProjection {
	return &primary.ChecklistProjection{
		CaseID:     caseID,
		FacilityID: facilityID,
		Type:       t,
		Status:     checklist.StatusNotStarted,
		Items:      []primary.ItemView{},
		Signatures: []primary.SignatureView{},
	}
}

// Ensure ChecklistServiceImpl implements the interface
var _ primary.ChecklistService = (*ChecklistServiceImpl)(nil)
