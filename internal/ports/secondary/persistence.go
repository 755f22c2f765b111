// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"

	"github.com/example/safecase/internal/core/checklist"
)

// ErrConflict is returned when a storage uniqueness constraint rejects a write.
// It is the authoritative race guard for duplicate instances and signatures.
var ErrConflict = errors.New("conflict with existing record")

// TemplateRepository defines the secondary port for checklist template persistence.
// Lookups return nil, nil when nothing matches.
type TemplateRepository interface {
	// WithinTx runs fn against a repository bound to a single transaction.
	WithinTx(ctx context.Context, fn func(repo TemplateRepository) error) error

	// GetTemplate retrieves the template for a facility and checklist type.
	GetTemplate(ctx context.Context, facilityID string, t checklist.Type) (*TemplateRecord, error)

	// GetTemplateByID retrieves a template by its ID.
	GetTemplateByID(ctx context.Context, id string) (*TemplateRecord, error)

	// ListTemplates retrieves every template for a facility.
	ListTemplates(ctx context.Context, facilityID string) ([]*TemplateRecord, error)

	// CreateTemplate provisions a template with no current version.
	CreateTemplate(ctx context.Context, tpl *TemplateRecord) error

	// SetActive activates or deactivates a template. Templates are never deleted.
	SetActive(ctx context.Context, templateID string, active bool) error

	// GetVersion retrieves an immutable template version.
	GetVersion(ctx context.Context, versionID string) (*TemplateVersionRecord, error)

	// ListVersions retrieves every version of a template, newest first.
	ListVersions(ctx context.Context, templateID string) ([]*TemplateVersionRecord, error)

	// VersionNumbers returns the version numbers already used by a template.
	VersionNumbers(ctx context.Context, templateID string) ([]int, error)

	// CreateVersion inserts a new immutable version.
	CreateVersion(ctx context.Context, version *TemplateVersionRecord) error

	// SetCurrentVersion repoints a template at one of its versions.
	SetCurrentVersion(ctx context.Context, templateID, versionID string) error
}

// TemplateRecord represents a checklist template as stored in persistence.
type TemplateRecord struct {
	ID               string
	FacilityID       string
	Type             checklist.Type
	Name             string
	IsActive         bool
	CurrentVersionID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TemplateVersionRecord represents an immutable template snapshot.
type TemplateVersionRecord struct {
	ID            string
	TemplateID    string
	VersionNumber int
	Items         []checklist.Item
	Signatures    []checklist.RequiredSignature
	CreatedBy     string
	CreatedAt     time.Time
}

// ChecklistRepository defines the secondary port for checklist instances and
// their append-only response and signature facts. Lookups return nil, nil
// when nothing matches.
type ChecklistRepository interface {
	// WithinTx runs fn against a repository bound to a single transaction.
	WithinTx(ctx context.Context, fn func(repo ChecklistRepository) error) error

	// Create persists a new instance. Returns ErrConflict if (case, type) exists.
	Create(ctx context.Context, instance *InstanceRecord) error

	// GetByID retrieves an instance by its ID.
	GetByID(ctx context.Context, id string) (*InstanceRecord, error)

	// GetByCaseAndType retrieves the instance for a case and checklist type.
	GetByCaseAndType(ctx context.Context, caseID string, t checklist.Type) (*InstanceRecord, error)

	// ListByCase retrieves all instances for a case within a facility.
	ListByCase(ctx context.Context, facilityID, caseID string) ([]*InstanceRecord, error)

	// ListPendingReviews retrieves completed instances with an outstanding review flag.
	ListPendingReviews(ctx context.Context, facilityID string) ([]*InstanceRecord, error)

	// AppendResponse inserts a response fact. There is no update path.
	AppendResponse(ctx context.Context, response *ResponseRecord) error

	// AppendSignature inserts a signature fact. Returns ErrConflict if the role already signed.
	AppendSignature(ctx context.Context, signature *SignatureRecord) error

	// LatestResponses returns one response per item key: the greatest
	// completedAt, ties broken by insertion order.
	LatestResponses(ctx context.Context, instanceID string) ([]*ResponseRecord, error)

	// ResponseHistory returns every response in insertion order, optionally
	// filtered to one item key.
	ResponseHistory(ctx context.Context, instanceID, itemKey string) ([]*ResponseRecord, error)

	// ListSignatures returns all signatures on an instance.
	ListSignatures(ctx context.Context, instanceID string) ([]*SignatureRecord, error)

	// SetCompleted transitions an in-progress instance to COMPLETED.
	// Returns ErrConflict if the instance is no longer in progress.
	SetCompleted(ctx context.Context, instanceID string, completedAt time.Time, pending checklist.PendingReviews) error

	// ClearPendingReview clears one review flag and stamps its completion time.
	ClearPendingReview(ctx context.Context, instanceID string, role checklist.Role, at time.Time) error
}

// InstanceRecord represents a checklist instance as stored in persistence.
type InstanceRecord struct {
	ID                       string
	CaseID                   string
	FacilityID               string
	Type                     checklist.Type
	TemplateVersionID        string
	RoomID                   string
	Status                   checklist.Status
	CreatedBy                string
	StartedAt                time.Time
	CompletedAt              *time.Time
	PendingScrubReview       bool
	ScrubReviewCompletedAt   *time.Time
	PendingSurgeonReview     bool
	SurgeonReviewCompletedAt *time.Time
}

// Pending returns the instance's review flags.
func (r *InstanceRecord) Pending() checklist.PendingReviews {
	return checklist.PendingReviews{Scrub: r.PendingScrubReview, Surgeon: r.PendingSurgeonReview}
}

// ResponseRecord is an append-only response fact.
type ResponseRecord struct {
	ID          string
	InstanceID  string
	ItemKey     string
	Value       string
	ActorID     string
	CompletedAt time.Time
}

// SignatureRecord is an append-only signature fact.
type SignatureRecord struct {
	ID         string
	InstanceID string
	Role       checklist.Role
	ActorID    string
	Method     checklist.SignatureMethod
	SignedAt   time.Time
}

// CaseProvider reads case activity owned by the case lifecycle component.
type CaseProvider interface {
	// GetCaseActiveState returns nil, nil when the case does not exist in the facility.
	GetCaseActiveState(ctx context.Context, caseID, facilityID string) (*CaseState, error)
}

// CaseState is the slice of a surgical case the checklist core reads.
type CaseState struct {
	CaseID        string
	ProcedureName string
	IsActive      bool
	IsCancelled   bool
}

// FacilitySettingsProvider reads facility feature flags.
type FacilitySettingsProvider interface {
	// GetEnableTimeoutDebrief defaults to false when the facility has no setting.
	GetEnableTimeoutDebrief(ctx context.Context, facilityID string) (bool, error)
}

// RoomDirectory looks up operating rooms.
type RoomDirectory interface {
	// GetActiveRoom returns nil, nil when the room is missing, inactive or in another facility.
	GetActiveRoom(ctx context.Context, roomID, facilityID string) (*RoomRecord, error)
}

// RoomRecord is an operating room.
type RoomRecord struct {
	ID         string
	FacilityID string
	Name       string
	IsActive   bool
}

// UserDirectory resolves actor IDs to display names for projections.
type UserDirectory interface {
	// DisplayNames returns names for the known IDs; unknown IDs are omitted.
	DisplayNames(ctx context.Context, actorIDs []string) (map[string]string, error)
}
