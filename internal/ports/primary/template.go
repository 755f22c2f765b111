package primary

import (
	"context"
	"time"

	"github.com/example/safecase/internal/core/checklist"
)

// TemplateService defines the primary port for checklist template administration.
type TemplateService interface {
	// PublishTemplateVersion publishes a new immutable version and makes it current.
	PublishTemplateVersion(ctx context.Context, req PublishTemplateRequest) (*PublishTemplateResponse, error)

	// GetTemplates lists a facility's templates with their current versions.
	GetTemplates(ctx context.Context, facilityID string) ([]*Template, error)

	// GetCurrentTemplate retrieves the active template and its current version.
	GetCurrentTemplate(ctx context.Context, facilityID string, t checklist.Type) (*Template, error)

	// GetTemplateVersion retrieves one immutable version.
	GetTemplateVersion(ctx context.Context, facilityID, versionID string) (*TemplateVersion, error)

	// ListTemplateVersions lists every version of a template, newest first.
	ListTemplateVersions(ctx context.Context, facilityID string, t checklist.Type) ([]*TemplateVersion, error)

	// SetTemplateActive activates or deactivates a template.
	SetTemplateActive(ctx context.Context, facilityID string, t checklist.Type, active bool) error
}

// PublishTemplateRequest contains the contents of a new template version.
type PublishTemplateRequest struct {
	FacilityID string
	Type       checklist.Type
	Name       string // used only when the template is provisioned
	Items      []checklist.Item
	Signatures []checklist.RequiredSignature
	ActorID    string
}

// PublishTemplateResponse contains the published version and non-blocking warnings.
type PublishTemplateResponse struct {
	Version  *TemplateVersion `json:"version"`
	Warnings []string         `json:"warnings,omitempty"`
}

// Template represents a checklist template at the port boundary.
type Template struct {
	ID             string           `json:"id"`
	FacilityID     string           `json:"facilityId"`
	Type           checklist.Type   `json:"type"`
	Name           string           `json:"name"`
	IsActive       bool             `json:"isActive"`
	CurrentVersion *TemplateVersion `json:"currentVersion,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// TemplateVersion represents an immutable template snapshot at the port boundary.
type TemplateVersion struct {
	ID            string                        `json:"id" yaml:"-"`
	TemplateID    string                        `json:"templateId" yaml:"-"`
	TemplateName  string                        `json:"templateName,omitempty" yaml:"name,omitempty"`
	VersionNumber int                           `json:"versionNumber" yaml:"version"`
	Items         []checklist.Item              `json:"items" yaml:"items"`
	Signatures    []checklist.RequiredSignature `json:"requiredSignatures" yaml:"required_signatures"`
	CreatedBy     string                        `json:"createdBy" yaml:"-"`
	CreatedAt     time.Time                     `json:"createdAt" yaml:"-"`
}
