package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
)

type testServer struct {
	checklists *mockChecklistService
	templates  *mockTemplateService
	logs       *mockLogService
	handler    http.Handler
}

func newTestServer() *testServer {
	ts := &testServer{
		checklists: &mockChecklistService{},
		templates:  &mockTemplateService{},
		logs:       &mockLogService{},
	}
	ts.handler = NewRouter(Services{
		Checklists: ts.checklists,
		Templates:  ts.templates,
		Gates:      &mockGateService{},
		Logs:       ts.logs,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

var staff = map[string]string{HeaderFacilityID: "FAC-001", HeaderActorID: "USR-001"}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIdentity_RequiresFacility(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/checklists/chk-1", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], HeaderFacilityID)
}

func TestMutationsRequireActor(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/checklists/chk-1/complete", "", map[string]string{HeaderFacilityID: "FAC-001"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], HeaderActorID)
}

func TestStartChecklist(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/cases/CASE-001/checklists/timeout/start", `{"roomId":"OR-1"}`, staff)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "chk-1", decode(t, rec)["id"])
	assert.Equal(t, primary.StartChecklistRequest{
		CaseID:     "CASE-001",
		FacilityID: "FAC-001",
		Type:       checklist.Type("timeout"),
		ActorID:    "USR-001",
		RoomID:     "OR-1",
	}, ts.checklists.lastStartReq)
}

func TestStartChecklist_EmptyBody(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/cases/CASE-001/checklists/TIMEOUT/start", "", staff)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, ts.checklists.lastStartReq.RoomID)
}

func TestStartChecklist_InvalidBody(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/cases/CASE-001/checklists/TIMEOUT/start", `{"roomId":`, staff)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorKindMapping(t *testing.T) {
	tests := []struct {
		kind       checklist.ErrorKind
		wantStatus int
	}{
		{checklist.KindNotFound, http.StatusNotFound},
		{checklist.KindInvalidInput, http.StatusBadRequest},
		{checklist.KindAlreadyExists, http.StatusConflict},
		{checklist.KindAlreadySigned, http.StatusConflict},
		{checklist.KindAlreadyReviewed, http.StatusConflict},
		{checklist.KindAlreadyCompleted, http.StatusConflict},
		{checklist.KindInvalidState, http.StatusUnprocessableEntity},
		{checklist.KindMissingRequiredItem, http.StatusUnprocessableEntity},
		{checklist.KindMissingSignature, http.StatusUnprocessableEntity},
		{checklist.KindNoSignatures, http.StatusUnprocessableEntity},
		{checklist.KindNoPendingReview, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			ts := newTestServer()
			ts.checklists.completeFn = func(_ context.Context, _ primary.CompleteChecklistRequest) (*primary.ChecklistProjection, error) {
				e := checklist.Errorf(tt.kind, "rejected")
				e.Subject = "Sponge count"
				return nil, e
			}

			rec := ts.do(t, http.MethodPost, "/api/v1/checklists/chk-1/complete", "", staff)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, string(tt.kind), body["kind"])
			assert.Equal(t, "Sponge count", body["subject"])
		})
	}
}

func TestUntypedErrorIs500(t *testing.T) {
	ts := newTestServer()
	ts.checklists.getFn = func(_ context.Context, _, _ string) (*primary.ChecklistProjection, error) {
		return nil, errors.New("failed to get checklist: disk I/O error")
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/checklists/chk-1", "", staff)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode(t, rec)["error"])
}

func TestRecordResponse(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/checklists/chk-1/responses", `{"itemKey":"sponge_count","value":"12"}`, staff)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sponge_count", ts.checklists.lastRespondReq.ItemKey)
	assert.Equal(t, "12", ts.checklists.lastRespondReq.Value)
	assert.Equal(t, "USR-001", ts.checklists.lastRespondReq.ActorID)
}

func TestAddSignature(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/checklists/chk-1/signatures", `{"role":"circulator","method":"badge"}`, staff)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, checklist.Role("circulator"), ts.checklists.lastSignReq.Role)
	assert.Equal(t, checklist.SignatureMethod("badge"), ts.checklists.lastSignReq.Method)
}

func TestAsyncReview(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/checklists/chk-1/reviews", `{"role":"SCRUB","notes":"clamp sent to biomed"}`, staff)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, checklist.RoleScrub, ts.checklists.lastReviewReq.Role)
	assert.Equal(t, "clamp sent to biomed", ts.checklists.lastReviewReq.Notes)
}

func TestResponseHistory(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/checklists/chk-1/responses/sponge_count/history", "", staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sponge_count", ts.checklists.lastHistoryKey)

	rec = ts.do(t, http.MethodGet, "/api/v1/checklists/chk-1/responses/history", "", staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ts.checklists.lastHistoryKey)
}

func TestCaseChecklistsAndGates(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/cases/CASE-001/checklists", "", staff)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["checklists"].([]any)
	assert.Len(t, list, 2)
	assert.Equal(t, "FAC-001", ts.checklists.lastFacility)

	rec = ts.do(t, http.MethodGet, "/api/v1/cases/CASE-001/gates", "", staff)
	require.Equal(t, http.StatusOK, rec.Code)
	gates := decode(t, rec)
	assert.Equal(t, true, gates["start"].(map[string]any)["allowed"])
	assert.Equal(t, false, gates["complete"].(map[string]any)["allowed"])
}

func TestPendingReviews(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/reviews/pending", "", map[string]string{HeaderFacilityID: "FAC-002"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["pending"], 1)
	assert.Equal(t, "FAC-002", ts.checklists.lastFacility)
}

func TestChecklistEvents(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/checklists/chk-1/events?limit=5", "", staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, primary.LogFilters{FacilityID: "FAC-001", EntityID: "chk-1", Limit: 5}, ts.logs.lastFilters)

	rec = ts.do(t, http.MethodGet, "/api/v1/checklists/chk-1/events?limit=lots", "", staff)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplates(t *testing.T) {
	ts := newTestServer()

	t.Run("list", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/templates", "", staff)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["templates"], 1)
	})

	t.Run("current", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/templates/timeout", "", staff)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "TIMEOUT", decode(t, rec)["type"])
	})

	t.Run("current missing", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/templates/DEBRIEF", "", staff)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid type", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/templates/INTAKE/versions", "", staff)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("versions", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/v1/templates/TIMEOUT/versions", "", staff)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode(t, rec)["versions"], 2)
	})

	t.Run("publish", func(t *testing.T) {
		body := `{"name":"Surgical Time Out","items":[{"key":"patient_identity","label":"Patient identity confirmed","kind":"checkbox","required":true}],
			"requiredSignatures":[{"role":"CIRCULATOR","required":true}]}`
		rec := ts.do(t, http.MethodPost, "/api/v1/templates/TIMEOUT/versions", body, staff)
		require.Equal(t, http.StatusCreated, rec.Code)
		out := decode(t, rec)
		assert.Len(t, out["warnings"], 1)
		assert.Equal(t, "USR-001", ts.templates.lastPublishReq.ActorID)
		require.Len(t, ts.templates.lastPublishReq.Signatures, 1)
		assert.Equal(t, checklist.RoleCirculator, ts.templates.lastPublishReq.Signatures[0].Role)
	})

	t.Run("publish rejected", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/v1/templates/TIMEOUT/versions", `{"items":[]}`, staff)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
