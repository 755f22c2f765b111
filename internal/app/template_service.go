package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/core/template"
	"github.com/example/safecase/internal/ports/primary"
	"github.com/example/safecase/internal/ports/secondary"
)

// TemplateServiceImpl implements the TemplateService interface.
type TemplateServiceImpl struct {
	templateRepo secondary.TemplateRepository
	logWriter    secondary.LogWriter
	now          func() time.Time
	newID        func() string
}

// NewTemplateService creates a new TemplateService with injected dependencies.
func NewTemplateService(templateRepo secondary.TemplateRepository, logWriter secondary.LogWriter) *TemplateServiceImpl {
	return &TemplateServiceImpl{
		templateRepo: templateRepo,
		logWriter:    logWriter,
		now:          utcNow,
		newID:        uuid.NewString,
	}
}

// PublishTemplateVersion publishes a new immutable version and repoints the template at it.
func (s *TemplateServiceImpl) PublishTemplateVersion(ctx context.Context, req primary.PublishTemplateRequest) (*primary.PublishTemplateResponse, error) {
	t, err := checklist.ParseType(string(req.Type))
	if err != nil {
		return nil, err
	}

	items, sigs := template.Normalize(req.Items, req.Signatures)
	result := template.CanPublishVersion(template.PublishContext{
		Type:       t,
		Items:      items,
		Signatures: sigs,
	})
	if err := result.Error(); err != nil {
		return nil, err
	}

	var (
		tpl     *secondary.TemplateRecord
		version *secondary.TemplateVersionRecord
	)
	err = s.templateRepo.WithinTx(ctx, func(repo secondary.TemplateRepository) error {
		var err error
		tpl, err = repo.GetTemplate(ctx, req.FacilityID, t)
		if err != nil {
			return err
		}
		if tpl == nil {
			name := req.Name
			if name == "" {
				name = template.DefaultName(t)
			}
			tpl = &secondary.TemplateRecord{
				ID:         s.newID(),
				FacilityID: req.FacilityID,
				Type:       t,
				Name:       name,
				IsActive:   true,
				CreatedAt:  s.now(),
				UpdatedAt:  s.now(),
			}
			if err := repo.CreateTemplate(ctx, tpl); err != nil {
				return err
			}
		}

		numbers, err := repo.VersionNumbers(ctx, tpl.ID)
		if err != nil {
			return err
		}

		version = &secondary.TemplateVersionRecord{
			ID:            s.newID(),
			TemplateID:    tpl.ID,
			VersionNumber: template.NextVersionNumber(numbers),
			Items:         items,
			Signatures:    sigs,
			CreatedBy:     req.ActorID,
			CreatedAt:     s.now(),
		}
		if err := repo.CreateVersion(ctx, version); err != nil {
			return err
		}
		return repo.SetCurrentVersion(ctx, tpl.ID, version.ID)
	})
	if errors.Is(err, secondary.ErrConflict) {
		return nil, checklist.Errorf(checklist.KindAlreadyExists, "a concurrent %s template version was published; retry", t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to publish template version: %w", err)
	}

	for _, w := range result.Warnings {
		glog.Warningf("template %s v%d: %s", tpl.ID, version.VersionNumber, w)
	}
	logAudit(s.logWriter.LogCreate(ctx, "template_version", version.ID))
	logAudit(s.logWriter.LogUpdate(ctx, "template", tpl.ID, "current_version", tpl.CurrentVersionID, version.ID))
	glog.V(1).Infof("published %s template %s version %d", t, tpl.ID, version.VersionNumber)

	return &primary.PublishTemplateResponse{
		Version:  recordToTemplateVersion(version, tpl.Name),
		Warnings: result.Warnings,
	}, nil
}

// GetTemplates lists a facility's templates with their current versions.
func (s *TemplateServiceImpl) GetTemplates(ctx context.Context, facilityID string) ([]*primary.Template, error) {
	records, err := s.templateRepo.ListTemplates(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := make([]*primary.Template, 0, len(records))
	for _, r := range records {
		tpl, err := s.withCurrentVersion(ctx, r)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

// GetCurrentTemplate retrieves the active template and its current version.
func (s *TemplateServiceImpl) GetCurrentTemplate(ctx context.Context, facilityID string, t checklist.Type) (*primary.Template, error) {
	record, err := s.templateRepo.GetTemplate(ctx, facilityID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if record == nil || !record.IsActive || record.CurrentVersionID == "" {
		return nil, checklist.Errorf(checklist.KindNotFound, "no active %s template for this facility", t)
	}

	tpl, err := s.withCurrentVersion(ctx, record)
	if err != nil {
		return nil, err
	}
	if tpl.CurrentVersion == nil {
		return nil, checklist.Errorf(checklist.KindNotFound, "no active %s template for this facility", t)
	}
	return tpl, nil
}

// GetTemplateVersion retrieves one immutable version owned by the facility.
func (s *TemplateServiceImpl) GetTemplateVersion(ctx context.Context, facilityID, versionID string) (*primary.TemplateVersion, error) {
	version, err := s.templateRepo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template version: %w", err)
	}
	if version == nil {
		return nil, checklist.Errorf(checklist.KindNotFound, "template version %s not found", versionID)
	}

	tpl, err := s.templateRepo.GetTemplateByID(ctx, version.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if tpl == nil || tpl.FacilityID != facilityID {
		return nil, checklist.Errorf(checklist.KindNotFound, "template version %s not found", versionID)
	}
	return recordToTemplateVersion(version, tpl.Name), nil
}

// ListTemplateVersions lists every version of a template, newest first.
func (s *TemplateServiceImpl) ListTemplateVersions(ctx context.Context, facilityID string, t checklist.Type) ([]*primary.TemplateVersion, error) {
	tpl, err := s.templateRepo.GetTemplate(ctx, facilityID, t)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if tpl == nil {
		return nil, checklist.Errorf(checklist.KindNotFound, "no %s template for this facility", t)
	}

	records, err := s.templateRepo.ListVersions(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list template versions: %w", err)
	}

	versions := make([]*primary.TemplateVersion, len(records))
	for i, r := range records {
		versions[i] = recordToTemplateVersion(r, tpl.Name)
	}
	return versions, nil
}

// SetTemplateActive activates or deactivates a template.
func (s *TemplateServiceImpl) SetTemplateActive(ctx context.Context, facilityID string, t checklist.Type, active bool) error {
	tpl, err := s.templateRepo.GetTemplate(ctx, facilityID, t)
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}
	if tpl == nil {
		return checklist.Errorf(checklist.KindNotFound, "no %s template for this facility", t)
	}
	if tpl.IsActive == active {
		return nil
	}

	if err := s.templateRepo.SetActive(ctx, tpl.ID, active); err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	logAudit(s.logWriter.LogUpdate(ctx, "template", tpl.ID, "is_active",
		strconv.FormatBool(tpl.IsActive), strconv.FormatBool(active)))
	return nil
}

// Helper methods

func (s *TemplateServiceImpl) withCurrentVersion(ctx context.Context, r *secondary.TemplateRecord) (*primary.Template, error) {
	tpl := &primary.Template{
		ID:         r.ID,
		FacilityID: r.FacilityID,
		Type:       r.Type,
		Name:       r.Name,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.CurrentVersionID == "" {
		return tpl, nil
	}

	version, err := s.templateRepo.GetVersion(ctx, r.CurrentVersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template version: %w", err)
	}
	if version != nil {
		tpl.CurrentVersion = recordToTemplateVersion(version, r.Name)
	}
	return tpl, nil
}

func recordToTemplateVersion(r *secondary.TemplateVersionRecord, templateName string) *primary.TemplateVersion {
	return &primary.TemplateVersion{
		ID:            r.ID,
		TemplateID:    r.TemplateID,
		TemplateName:  templateName,
		VersionNumber: r.VersionNumber,
		Items:         r.Items,
		Signatures:    r.Signatures,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
	}
}

// Ensure TemplateServiceImpl implements the interface
var _ primary.TemplateService = (*TemplateServiceImpl)(nil)
