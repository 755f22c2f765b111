package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ctxutil"
	"github.com/example/safecase/internal/ports/primary"
)

// decodeBody decodes a JSON request body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func facilityOf(r *http.Request) string {
	return ctxutil.FacilityFromContext(r.Context())
}

type startChecklistBody struct {
	RoomID string `json:"roomId"`
}

func startChecklistHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r)
		if !ok {
			return
		}
		var body startChecklistBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		projection, err := svc.StartChecklist(r.Context(), primary.StartChecklistRequest{
			CaseID:     chi.URLParam(r, "caseId"),
			FacilityID: facilityOf(r),
			Type:       checklist.Type(chi.URLParam(r, "type")),
			ActorID:    actorID,
			RoomID:     body.RoomID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, projection)
	}
}

func listCaseChecklistsHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projections, err := svc.GetChecklistsForCase(r.Context(), facilityOf(r), chi.URLParam(r, "caseId"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"checklists": projections})
	}
}

func getChecklistHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projection, err := svc.GetChecklist(r.Context(), facilityOf(r), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projection)
	}
}

type recordResponseBody struct {
	ItemKey string `json:"itemKey"`
	Value   string `json:"value"`
}

func recordResponseHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r)
		if !ok {
			return
		}
		var body recordResponseBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		projection, err := svc.RecordResponse(r.Context(), primary.RecordResponseRequest{
			InstanceID: chi.URLParam(r, "id"),
			FacilityID: facilityOf(r),
			ItemKey:    body.ItemKey,
			Value:      body.Value,
			ActorID:    actorID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projection)
	}
}

func responseHistoryHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := svc.GetResponseHistory(r.Context(), facilityOf(r), chi.URLParam(r, "id"), chi.URLParam(r, "itemKey"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"responses": history})
	}
}

type signatureBody struct {
	Role   string `json:"role"`
	Method string `json:"method"`
}

func addSignatureHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r)
		if !ok {
			return
		}
		var body signatureBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		projection, err := svc.AddSignature(r.Context(), primary.AddSignatureRequest{
			InstanceID: chi.URLParam(r, "id"),
			FacilityID: facilityOf(r),
			Role:       checklist.Role(body.Role),
			ActorID:    actorID,
			Method:     checklist.SignatureMethod(body.Method),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, projection)
	}
}

func completeChecklistHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r)
		if !ok {
			return
		}
		projection, err := svc.CompleteChecklist(r.Context(), primary.CompleteChecklistRequest{
			InstanceID: chi.URLParam(r, "id"),
			FacilityID: facilityOf(r),
			ActorID:    actorID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projection)
	}
}

type asyncReviewBody struct {
	Role   string `json:"role"`
	Notes  string `json:"notes"`
	Method string `json:"method"`
}

func asyncReviewHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r)
		if !ok {
			return
		}
		var body asyncReviewBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		projection, err := svc.RecordAsyncReview(r.Context(), primary.AsyncReviewRequest{
			InstanceID: chi.URLParam(r, "id"),
			FacilityID: facilityOf(r),
			Role:       checklist.Role(body.Role),
			ActorID:    actorID,
			Notes:      body.Notes,
			Method:     checklist.SignatureMethod(body.Method),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projection)
	}
}

func pendingReviewsHandler(svc primary.ChecklistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := svc.GetPendingReviews(r.Context(), facilityOf(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"pending": pending})
	}
}

func checklistEventsHandler(svc primary.LogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
				return
			}
			limit = n
		}

		entries, err := svc.ListLogs(r.Context(), primary.LogFilters{
			FacilityID: facilityOf(r),
			EntityID:   chi.URLParam(r, "id"),
			Limit:      limit,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": entries})
	}
}

// Case gates

func caseGatesHandler(svc primary.GateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caseID := chi.URLParam(r, "caseId")
		start, err := svc.CanStartCase(r.Context(), facilityOf(r), caseID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		complete, err := svc.CanCompleteCase(r.Context(), facilityOf(r), caseID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"start": start, "complete": complete})
	}
}

// Templates

func listTemplatesHandler(svc primary.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := svc.GetTemplates(r.Context(), facilityOf(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
	}
}

func currentTemplateHandler(svc primary.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := checklist.ParseType(chi.URLParam(r, "type"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		tpl, err := svc.GetCurrentTemplate(r.Context(), facilityOf(r), t)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	}
}

func listTemplateVersionsHandler(svc primary.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := checklist.ParseType(chi.URLParam(r, "type"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		versions, err := svc.ListTemplateVersions(r.Context(), facilityOf(r), t)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
	}
}

type publishTemplateBody struct {
	Name       string                        `json:"name"`
	Items      []checklist.Item              `json:"items"`
	Signatures []checklist.RequiredSignature `json:"requiredSignatures"`
}

func publishTemplateHandler(svc primary.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := requireActor(w, r)
		if !ok {
			return
		}
		var body publishTemplateBody
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		resp, err := svc.PublishTemplateVersion(r.Context(), primary.PublishTemplateRequest{
			FacilityID: facilityOf(r),
			Type:       checklist.Type(chi.URLParam(r, "type")),
			Name:       body.Name,
			Items:      body.Items,
			Signatures: body.Signatures,
			ActorID:    actorID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}
