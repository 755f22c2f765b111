package primary

import (
	"context"
	"time"

	"github.com/example/safecase/internal/core/checklist"
)

// ChecklistService defines the primary port for the checklist workflow.
// Every operation is scoped to the caller's facility; instances in other
// facilities are reported as not found.
type ChecklistService interface {
	// StartChecklist creates the instance for a case and type, pinned to the current template version.
	StartChecklist(ctx context.Context, req StartChecklistRequest) (*ChecklistProjection, error)

	// RecordResponse appends a response for one item.
	RecordResponse(ctx context.Context, req RecordResponseRequest) (*ChecklistProjection, error)

	// AddSignature appends a role attestation.
	AddSignature(ctx context.Context, req AddSignatureRequest) (*ChecklistProjection, error)

	// CompleteChecklist runs the completion gate and transitions to COMPLETED.
	CompleteChecklist(ctx context.Context, req CompleteChecklistRequest) (*ChecklistProjection, error)

	// RecordAsyncReview records a deferred SCRUB or SURGEON sign-off on a completed DEBRIEF.
	RecordAsyncReview(ctx context.Context, req AsyncReviewRequest) (*ChecklistProjection, error)

	// GetChecklist retrieves the projection of one instance.
	GetChecklist(ctx context.Context, facilityID, instanceID string) (*ChecklistProjection, error)

	// GetChecklistsForCase returns one projection per checklist type; types
	// without an instance are reported as NOT_STARTED.
	GetChecklistsForCase(ctx context.Context, facilityID, caseID string) ([]*ChecklistProjection, error)

	// GetResponseHistory replays every response recorded on an instance.
	GetResponseHistory(ctx context.Context, facilityID, instanceID, itemKey string) ([]*ResponseEntry, error)

	// GetPendingReviews lists outstanding asynchronous reviews in a facility.
	GetPendingReviews(ctx context.Context, facilityID string) ([]*PendingReview, error)
}

// StartChecklistRequest contains parameters for starting a checklist.
type StartChecklistRequest struct {
	CaseID     string
	FacilityID string
	Type       checklist.Type
	ActorID    string
	RoomID     string // optional
}

// RecordResponseRequest contains parameters for recording a response.
type RecordResponseRequest struct {
	InstanceID string
	FacilityID string
	ItemKey    string
	Value      string
	ActorID    string
}

// AddSignatureRequest contains parameters for signing a checklist.
type AddSignatureRequest struct {
	InstanceID string
	FacilityID string
	Role       checklist.Role
	ActorID    string
	Method     checklist.SignatureMethod
}

// CompleteChecklistRequest contains parameters for completing a checklist.
type CompleteChecklistRequest struct {
	InstanceID string
	FacilityID string
	ActorID    string
}

// AsyncReviewRequest contains parameters for a deferred review.
type AsyncReviewRequest struct {
	InstanceID string
	FacilityID string
	Role       checklist.Role
	ActorID    string
	Notes      string
	Method     checklist.SignatureMethod
}

// ChecklistProjection is the externally visible view of a checklist instance.
type ChecklistProjection struct {
	ID                       string           `json:"id,omitempty"`
	CaseID                   string           `json:"caseId"`
	FacilityID               string           `json:"facilityId"`
	Type                     checklist.Type   `json:"type"`
	Status                   checklist.Status `json:"status"`
	TemplateName             string           `json:"templateName,omitempty"`
	TemplateVersionID        string           `json:"templateVersionId,omitempty"`
	TemplateVersionNumber    int              `json:"templateVersionNumber,omitempty"`
	RoomID                   string           `json:"roomId,omitempty"`
	RoomName                 string           `json:"roomName,omitempty"`
	StartedBy                string           `json:"startedBy,omitempty"`
	StartedByName            string           `json:"startedByName,omitempty"`
	StartedAt                *time.Time       `json:"startedAt,omitempty"`
	CompletedAt              *time.Time       `json:"completedAt,omitempty"`
	Items                    []ItemView       `json:"items"`
	Signatures               []SignatureView  `json:"signatures"`
	ReviewNotes              []ResponseEntry  `json:"reviewNotes,omitempty"`
	PendingScrubReview       bool             `json:"pendingScrubReview"`
	ScrubReviewCompletedAt   *time.Time       `json:"scrubReviewCompletedAt,omitempty"`
	PendingSurgeonReview     bool             `json:"pendingSurgeonReview"`
	SurgeonReviewCompletedAt *time.Time       `json:"surgeonReviewCompletedAt,omitempty"`
}

// ItemView is a template item together with its latest response.
type ItemView struct {
	checklist.Item
	Visible  bool           `json:"visible"`
	Response *ResponseEntry `json:"response,omitempty"`
}

// ResponseEntry is one recorded response.
type ResponseEntry struct {
	ItemKey     string    `json:"itemKey"`
	Value       string    `json:"value"`
	ActorID     string    `json:"actorId"`
	ActorName   string    `json:"actorName"`
	CompletedAt time.Time `json:"completedAt"`
}

// SignatureView is a signature rule together with its recorded attestation.
type SignatureView struct {
	Role              checklist.Role            `json:"role"`
	Required          bool                      `json:"required"`
	Conditional       bool                      `json:"conditional"`
	Conditions        []string                  `json:"conditions,omitempty"`
	CurrentlyRequired bool                      `json:"currentlyRequired"`
	Signed            bool                      `json:"signed"`
	ActorID           string                    `json:"actorId,omitempty"`
	ActorName         string                    `json:"actorName,omitempty"`
	Method            checklist.SignatureMethod `json:"method,omitempty"`
	SignedAt          *time.Time                `json:"signedAt,omitempty"`
}

// PendingReview is one outstanding deferred sign-off.
type PendingReview struct {
	InstanceID  string         `json:"instanceId"`
	CaseID      string         `json:"caseId"`
	Role        checklist.Role `json:"role"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}
