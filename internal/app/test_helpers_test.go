package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.TemplateRepository       = (*mockTemplateRepository)(nil)
	_ secondary.ChecklistRepository      = (*mockChecklistRepository)(nil)
	_ secondary.CaseProvider             = (*mockCaseProvider)(nil)
	_ secondary.RoomDirectory            = (*mockRoomDirectory)(nil)
	_ secondary.UserDirectory            = (*mockUserDirectory)(nil)
	_ secondary.FacilitySettingsProvider = (*mockSettingsProvider)(nil)
	_ secondary.LogWriter                = (*mockLogWriter)(nil)
)

// mockTemplateRepository implements secondary.TemplateRepository for testing.
type mockTemplateRepository struct {
	templates        map[string]*secondary.TemplateRecord
	versions         map[string]*secondary.TemplateVersionRecord
	createVersionErr error
}

func newMockTemplateRepository() *mockTemplateRepository {
	return &mockTemplateRepository{
		templates: make(map[string]*secondary.TemplateRecord),
		versions:  make(map[string]*secondary.TemplateVersionRecord),
	}
}

func (m *mockTemplateRepository) WithinTx(ctx context.Context, fn func(repo secondary.TemplateRepository) error) error {
	return fn(m)
}

func (m *mockTemplateRepository) GetTemplate(ctx context.Context, facilityID string, t checklist.Type) (*secondary.TemplateRecord, error) {
	for _, tpl := range m.templates {
		if tpl.FacilityID == facilityID && tpl.Type == t {
			copied := *tpl
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockTemplateRepository) GetTemplateByID(ctx context.Context, id string) (*secondary.TemplateRecord, error) {
	if tpl, ok := m.templates[id]; ok {
		copied := *tpl
		return &copied, nil
	}
	return nil, nil
}

func (m *mockTemplateRepository) ListTemplates(ctx context.Context, facilityID string) ([]*secondary.TemplateRecord, error) {
	var result []*secondary.TemplateRecord
	for _, tpl := range m.templates {
		if tpl.FacilityID == facilityID {
			copied := *tpl
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type > result[j].Type })
	return result, nil
}

func (m *mockTemplateRepository) CreateTemplate(ctx context.Context, tpl *secondary.TemplateRecord) error {
	for _, existing := range m.templates {
		if existing.FacilityID == tpl.FacilityID && existing.Type == tpl.Type {
			return secondary.ErrConflict
		}
	}
	copied := *tpl
	m.templates[tpl.ID] = &copied
	return nil
}

func (m *mockTemplateRepository) SetActive(ctx context.Context, templateID string, active bool) error {
	tpl, ok := m.templates[templateID]
	if !ok {
		return fmt.Errorf("template %s not found", templateID)
	}
	tpl.IsActive = active
	return nil
}

func (m *mockTemplateRepository) GetVersion(ctx context.Context, versionID string) (*secondary.TemplateVersionRecord, error) {
	if v, ok := m.versions[versionID]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, nil
}

func (m *mockTemplateRepository) ListVersions(ctx context.Context, templateID string) ([]*secondary.TemplateVersionRecord, error) {
	var result []*secondary.TemplateVersionRecord
	for _, v := range m.versions {
		if v.TemplateID == templateID {
			copied := *v
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VersionNumber > result[j].VersionNumber })
	return result, nil
}

func (m *mockTemplateRepository) VersionNumbers(ctx context.Context, templateID string) ([]int, error) {
	var numbers []int
	for _, v := range m.versions {
		if v.TemplateID == templateID {
			numbers = append(numbers, v.VersionNumber)
		}
	}
	return numbers, nil
}

func (m *mockTemplateRepository) CreateVersion(ctx context.Context, version *secondary.TemplateVersionRecord) error {
	if m.createVersionErr != nil {
		return m.createVersionErr
	}
	copied := *version
	m.versions[version.ID] = &copied
	return nil
}

func (m *mockTemplateRepository) SetCurrentVersion(ctx context.Context, templateID, versionID string) error {
	tpl, ok := m.templates[templateID]
	if !ok {
		return fmt.Errorf("template %s not found", templateID)
	}
	tpl.CurrentVersionID = versionID
	return nil
}

// mockChecklistRepository implements secondary.ChecklistRepository for testing.
// Uniqueness mirrors the storage constraints; WithinTx rolls back on error.
type mockChecklistRepository struct {
	instances  map[string]*secondary.InstanceRecord
	responses  []*secondary.ResponseRecord
	signatures []*secondary.SignatureRecord

	createErr          error
	appendSignatureErr error
	setCompletedCalls  int
}

func newMockChecklistRepository() *mockChecklistRepository {
	return &mockChecklistRepository{
		instances: make(map[string]*secondary.InstanceRecord),
	}
}

func (m *mockChecklistRepository) WithinTx(ctx context.Context, fn func(repo secondary.ChecklistRepository) error) error {
	instances := make(map[string]*secondary.InstanceRecord, len(m.instances))
	for id, r := range m.instances {
		copied := *r
		instances[id] = &copied
	}
	responses := append([]*secondary.ResponseRecord(nil), m.responses...)
	signatures := append([]*secondary.SignatureRecord(nil), m.signatures...)

	if err := fn(m); err != nil {
		m.instances = instances
		m.responses = responses
		m.signatures = signatures
		return err
	}
	return nil
}

func (m *mockChecklistRepository) Create(ctx context.Context, instance *secondary.InstanceRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.instances {
		if r.CaseID == instance.CaseID && r.Type == instance.Type {
			return secondary.ErrConflict
		}
	}
	copied := *instance
	m.instances[instance.ID] = &copied
	return nil
}

func (m *mockChecklistRepository) GetByID(ctx context.Context, id string) (*secondary.InstanceRecord, error) {
	if r, ok := m.instances[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *mockChecklistRepository) GetByCaseAndType(ctx context.Context, caseID string, t checklist.Type) (*secondary.InstanceRecord, error) {
	for _, r := range m.instances {
		if r.CaseID == caseID && r.Type == t {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockChecklistRepository) ListByCase(ctx context.Context, facilityID, caseID string) ([]*secondary.InstanceRecord, error) {
	var result []*secondary.InstanceRecord
	for _, r := range m.instances {
		if r.FacilityID == facilityID && r.CaseID == caseID {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockChecklistRepository) ListPendingReviews(ctx context.Context, facilityID string) ([]*secondary.InstanceRecord, error) {
	var result []*secondary.InstanceRecord
	for _, r := range m.instances {
		if r.FacilityID == facilityID && r.Status == checklist.StatusCompleted && r.Pending().Any() {
			copied := *r
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockChecklistRepository) AppendResponse(ctx context.Context, response *secondary.ResponseRecord) error {
	copied := *response
	m.responses = append(m.responses, &copied)
	return nil
}

func (m *mockChecklistRepository) AppendSignature(ctx context.Context, signature *secondary.SignatureRecord) error {
	if m.appendSignatureErr != nil {
		return m.appendSignatureErr
	}
	for _, s := range m.signatures {
		if s.InstanceID == signature.InstanceID && s.Role == signature.Role {
			return secondary.ErrConflict
		}
	}
	copied := *signature
	m.signatures = append(m.signatures, &copied)
	return nil
}

func (m *mockChecklistRepository) LatestResponses(ctx context.Context, instanceID string) ([]*secondary.ResponseRecord, error) {
	latest := make(map[string]*secondary.ResponseRecord)
	var keys []string
	for _, r := range m.responses {
		if r.InstanceID != instanceID {
			continue
		}
		current, ok := latest[r.ItemKey]
		if !ok {
			keys = append(keys, r.ItemKey)
		}
		// Later insertion wins ties.
		if !ok || !r.CompletedAt.Before(current.CompletedAt) {
			latest[r.ItemKey] = r
		}
	}
	result := make([]*secondary.ResponseRecord, 0, len(keys))
	for _, k := range keys {
		result = append(result, latest[k])
	}
	return result, nil
}

func (m *mockChecklistRepository) ResponseHistory(ctx context.Context, instanceID, itemKey string) ([]*secondary.ResponseRecord, error) {
	var result []*secondary.ResponseRecord
	for _, r := range m.responses {
		if r.InstanceID == instanceID && (itemKey == "" || r.ItemKey == itemKey) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockChecklistRepository) ListSignatures(ctx context.Context, instanceID string) ([]*secondary.SignatureRecord, error) {
	var result []*secondary.SignatureRecord
	for _, s := range m.signatures {
		if s.InstanceID == instanceID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockChecklistRepository) SetCompleted(ctx context.Context, instanceID string, completedAt time.Time, pending checklist.PendingReviews) error {
	m.setCompletedCalls++
	r, ok := m.instances[instanceID]
	if !ok || r.Status != checklist.StatusInProgress {
		return secondary.ErrConflict
	}
	r.Status = checklist.StatusCompleted
	r.CompletedAt = &completedAt
	r.PendingScrubReview = pending.Scrub
	r.PendingSurgeonReview = pending.Surgeon
	return nil
}

func (m *mockChecklistRepository) ClearPendingReview(ctx context.Context, instanceID string, role checklist.Role, at time.Time) error {
	r, ok := m.instances[instanceID]
	if !ok {
		return fmt.Errorf("checklist %s not found", instanceID)
	}
	switch role {
	case checklist.RoleScrub:
		r.PendingScrubReview = false
		r.ScrubReviewCompletedAt = &at
	case checklist.RoleSurgeon:
		r.PendingSurgeonReview = false
		r.SurgeonReviewCompletedAt = &at
	default:
		return fmt.Errorf("role %s has no review flag", role)
	}
	return nil
}

// mockCaseProvider implements secondary.CaseProvider for testing.
type mockCaseProvider struct {
	cases map[string]*mockCase
}

type mockCase struct {
	facilityID string
	state      secondary.CaseState
}

func newMockCaseProvider() *mockCaseProvider {
	return &mockCaseProvider{cases: make(map[string]*mockCase)}
}

func (m *mockCaseProvider) add(facilityID, caseID string, active, cancelled bool) {
	m.cases[caseID] = &mockCase{
		facilityID: facilityID,
		state: secondary.CaseState{
			CaseID:        caseID,
			ProcedureName: "Laparoscopic cholecystectomy",
			IsActive:      active,
			IsCancelled:   cancelled,
		},
	}
}

func (m *mockCaseProvider) GetCaseActiveState(ctx context.Context, caseID, facilityID string) (*secondary.CaseState, error) {
	c, ok := m.cases[caseID]
	if !ok || c.facilityID != facilityID {
		return nil, nil
	}
	state := c.state
	return &state, nil
}

// mockRoomDirectory implements secondary.RoomDirectory for testing.
type mockRoomDirectory struct {
	rooms map[string]*secondary.RoomRecord
}

func newMockRoomDirectory() *mockRoomDirectory {
	return &mockRoomDirectory{rooms: make(map[string]*secondary.RoomRecord)}
}

func (m *mockRoomDirectory) GetActiveRoom(ctx context.Context, roomID, facilityID string) (*secondary.RoomRecord, error) {
	r, ok := m.rooms[roomID]
	if !ok || !r.IsActive || r.FacilityID != facilityID {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

// mockUserDirectory implements secondary.UserDirectory for testing.
type mockUserDirectory struct {
	names map[string]string
	err   error
}

func (m *mockUserDirectory) DisplayNames(ctx context.Context, actorIDs []string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make(map[string]string)
	for _, id := range actorIDs {
		if name, ok := m.names[id]; ok {
			result[id] = name
		}
	}
	return result, nil
}

// mockSettingsProvider implements secondary.FacilitySettingsProvider for testing.
type mockSettingsProvider struct {
	enabled map[string]bool
	err     error
}

func (m *mockSettingsProvider) GetEnableTimeoutDebrief(ctx context.Context, facilityID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.enabled[facilityID], nil
}

// mockLogWriter implements secondary.LogWriter for testing.
type mockLogWriter struct {
	entries []string
	err     error
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, fmt.Sprintf("create %s %s", entityType, entityID))
	return m.err
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, field, oldValue, newValue string) error {
	m.entries = append(m.entries, fmt.Sprintf("update %s %s %s", entityType, entityID, field))
	return m.err
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	current := start.Add(-time.Second)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

// sequentialIDs returns an ID generator producing prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
