package app

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
	"github.com/example/safecase/internal/ports/secondary"
)

// projectionInput is everything buildProjection reads.
type projectionInput struct {
	Instance   *secondary.InstanceRecord
	Version    *primary.TemplateVersion
	Latest     []*secondary.ResponseRecord
	Signatures []*secondary.SignatureRecord
	Names      map[string]string
	RoomName   string
}

// projectInstance loads the facts for an instance and assembles its projection.
func (s *ChecklistServiceImpl) projectInstance(ctx context.Context, instance *secondary.InstanceRecord, version *primary.TemplateVersion) (*primary.ChecklistProjection, error) {
	latest, err := s.checklistRepo.LatestResponses(ctx, instance.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	signatures, err := s.checklistRepo.ListSignatures(ctx, instance.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load signatures: %w", err)
	}

	var roomName string
	if instance.RoomID != "" {
		room, err := s.roomDirectory.GetActiveRoom(ctx, instance.RoomID, instance.FacilityID)
		if err != nil {
			return nil, fmt.Errorf("failed to get room: %w", err)
		}
		if room != nil {
			roomName = room.Name
		}
	}

	ids := []string{instance.CreatedBy}
	for _, r := range latest {
		ids = append(ids, r.ActorID)
	}
	for _, sig := range signatures {
		ids = append(ids, sig.ActorID)
	}

	return buildProjection(projectionInput{
		Instance:   instance,
		Version:    version,
		Latest:     latest,
		Signatures: signatures,
		Names:      s.displayNames(ctx, ids),
		RoomName:   roomName,
	}), nil
}

// displayNames resolves actor IDs; a lookup failure degrades to raw IDs.
func (s *ChecklistServiceImpl) displayNames(ctx context.Context, ids []string) map[string]string {
	names, err := s.userDirectory.DisplayNames(ctx, ids)
	if err != nil {
		glog.Warningf("failed to resolve display names: %v", err)
		return map[string]string{}
	}
	return names
}

func buildProjection(in projectionInput) *primary.ChecklistProjection {
	inst := in.Instance
	startedAt := inst.StartedAt

	p := &primary.ChecklistProjection{
		ID:                       inst.ID,
		CaseID:                   inst.CaseID,
		FacilityID:               inst.FacilityID,
		Type:                     inst.Type,
		Status:                   inst.Status,
		TemplateVersionID:        inst.TemplateVersionID,
		RoomID:                   inst.RoomID,
		RoomName:                 in.RoomName,
		StartedBy:                inst.CreatedBy,
		StartedByName:            nameOf(in.Names, inst.CreatedBy),
		StartedAt:                &startedAt,
		CompletedAt:              inst.CompletedAt,
		Items:                    []primary.ItemView{},
		Signatures:               []primary.SignatureView{},
		PendingScrubReview:       inst.PendingScrubReview,
		ScrubReviewCompletedAt:   inst.ScrubReviewCompletedAt,
		PendingSurgeonReview:     inst.PendingSurgeonReview,
		SurgeonReviewCompletedAt: inst.SurgeonReviewCompletedAt,
	}
	if in.Version == nil {
		return p
	}
	p.TemplateName = in.Version.TemplateName
	p.TemplateVersionNumber = in.Version.VersionNumber

	byKey := make(map[string]*secondary.ResponseRecord, len(in.Latest))
	for _, r := range in.Latest {
		byKey[r.ItemKey] = r
	}
	values := responseValues(in.Latest)

	for _, item := range in.Version.Items {
		view := primary.ItemView{
			Item:    item,
			Visible: checklist.IsItemVisible(item, values),
		}
		if r, ok := byKey[item.Key]; ok {
			entry := toResponseEntry(r, in.Names)
			view.Response = &entry
		}
		p.Items = append(p.Items, view)
	}

	for _, role := range checklist.ReviewRoles {
		key := checklist.NotesKey(role)
		if _, isItem := checklist.FindItem(in.Version.Items, key); isItem {
			continue
		}
		if r, ok := byKey[key]; ok {
			p.ReviewNotes = append(p.ReviewNotes, toResponseEntry(r, in.Names))
		}
	}

	signed := make(map[checklist.Role]*secondary.SignatureRecord, len(in.Signatures))
	for _, sig := range in.Signatures {
		signed[sig.Role] = sig
	}
	for _, def := range in.Version.Signatures {
		view := primary.SignatureView{
			Role:              def.Role,
			Required:          def.Required,
			Conditional:       def.Conditional,
			Conditions:        def.Conditions,
			CurrentlyRequired: checklist.IsSignatureRequired(def, values),
		}
		if sig, ok := signed[def.Role]; ok {
			signedAt := sig.SignedAt
			view.Signed = true
			view.ActorID = sig.ActorID
			view.ActorName = nameOf(in.Names, sig.ActorID)
			view.Method = sig.Method
			view.SignedAt = &signedAt
		}
		p.Signatures = append(p.Signatures, view)
	}

	return p
}

func toResponseEntry(r *secondary.ResponseRecord, names map[string]string) primary.ResponseEntry {
	return primary.ResponseEntry{
		ItemKey:     r.ItemKey,
		Value:       r.Value,
		ActorID:     r.ActorID,
		ActorName:   nameOf(names, r.ActorID),
		CompletedAt: r.CompletedAt,
	}
}

func nameOf(names map[string]string, actorID string) string {
	if name, ok := names[actorID]; ok && name != "" {
		return name
	}
	return actorID
}
