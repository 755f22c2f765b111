package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/secondary"
)

// ChecklistRepository implements secondary.ChecklistRepository with SQLite.
// Responses and signatures are insert-only; there is no UPDATE or DELETE
// path for either table.
type ChecklistRepository struct {
	db *sql.DB // nil when bound to a transaction
	q  querier
}

// NewChecklistRepository creates a new SQLite checklist repository.
func NewChecklistRepository(db *sql.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db, q: db}
}

// WithinTx runs fn against a repository bound to a single transaction.
func (r *ChecklistRepository) WithinTx(ctx context.Context, fn func(repo secondary.ChecklistRepository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&ChecklistRepository{q: tx})
	})
}

const instanceColumns = `id, case_id, facility_id, type, template_version_id, room_id, status, created_by,
	started_at, completed_at, pending_scrub_review, scrub_review_completed_at,
	pending_surgeon_review, surgeon_review_completed_at`

// Create persists a new instance.
func (r *ChecklistRepository) Create(ctx context.Context, instance *secondary.InstanceRecord) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO checklist_instances (id, case_id, facility_id, type, template_version_id, room_id, status, created_by, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		instance.ID,
		instance.CaseID,
		instance.FacilityID,
		string(instance.Type),
		instance.TemplateVersionID,
		nullString(instance.RoomID),
		string(instance.Status),
		nullString(instance.CreatedBy),
		formatTime(instance.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create checklist: %w", translateConstraint(err))
	}
	return nil
}

// GetByID retrieves an instance by its ID.
func (r *ChecklistRepository) GetByID(ctx context.Context, id string) (*secondary.InstanceRecord, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+instanceColumns+` FROM checklist_instances WHERE id = ?`,
		id,
	)
	return scanInstance(row)
}

// GetByCaseAndType retrieves the instance for a case and checklist type.
func (r *ChecklistRepository) GetByCaseAndType(ctx context.Context, caseID string, t checklist.Type) (*secondary.InstanceRecord, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+instanceColumns+` FROM checklist_instances WHERE case_id = ? AND type = ?`,
		caseID, string(t),
	)
	return scanInstance(row)
}

// ListByCase retrieves all instances for a case within a facility.
func (r *ChecklistRepository) ListByCase(ctx context.Context, facilityID, caseID string) ([]*secondary.InstanceRecord, error) {
	return r.listInstances(ctx,
		`SELECT `+instanceColumns+` FROM checklist_instances WHERE facility_id = ? AND case_id = ? ORDER BY started_at`,
		facilityID, caseID,
	)
}

// ListPendingReviews retrieves completed DEBRIEF instances with an outstanding review flag.
func (r *ChecklistRepository) ListPendingReviews(ctx context.Context, facilityID string) ([]*secondary.InstanceRecord, error) {
	return r.listInstances(ctx,
		`SELECT `+instanceColumns+` FROM checklist_instances
		 WHERE facility_id = ? AND type = 'DEBRIEF' AND status = 'COMPLETED' AND (pending_scrub_review = 1 OR pending_surgeon_review = 1)
		 ORDER BY completed_at, id`,
		facilityID,
	)
}

func (r *ChecklistRepository) listInstances(ctx context.Context, query string, args ...any) ([]*secondary.InstanceRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	defer rows.Close()

	var instances []*secondary.InstanceRecord
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

// AppendResponse inserts a response fact.
func (r *ChecklistRepository) AppendResponse(ctx context.Context, response *secondary.ResponseRecord) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO checklist_responses (id, instance_id, item_key, value, actor_id, completed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		response.ID,
		response.InstanceID,
		response.ItemKey,
		response.Value,
		nullString(response.ActorID),
		formatTime(response.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append response: %w", err)
	}
	return nil
}

// AppendSignature inserts a signature fact.
func (r *ChecklistRepository) AppendSignature(ctx context.Context, signature *secondary.SignatureRecord) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO checklist_signatures (id, instance_id, role, actor_id, method, signed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		signature.ID,
		signature.InstanceID,
		string(signature.Role),
		nullString(signature.ActorID),
		string(signature.Method),
		formatTime(signature.SignedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append signature: %w", translateConstraint(err))
	}
	return nil
}

const responseColumns = `id, instance_id, item_key, value, actor_id, completed_at`

// LatestResponses returns one response per item key: the greatest
// completed_at, ties broken by insertion order.
func (r *ChecklistRepository) LatestResponses(ctx context.Context, instanceID string) ([]*secondary.ResponseRecord, error) {
	return r.listResponses(ctx,
		`SELECT `+responseColumns+` FROM checklist_responses AS r
		 WHERE r.instance_id = ?
		   AND r.seq = (
		     SELECT latest.seq FROM checklist_responses AS latest
		     WHERE latest.instance_id = r.instance_id AND latest.item_key = r.item_key
		     ORDER BY latest.completed_at DESC, latest.seq DESC
		     LIMIT 1
		   )
		 ORDER BY r.seq`,
		instanceID,
	)
}

// ResponseHistory returns every response in insertion order, optionally
// filtered to one item key.
func (r *ChecklistRepository) ResponseHistory(ctx context.Context, instanceID, itemKey string) ([]*secondary.ResponseRecord, error) {
	query := `SELECT ` + responseColumns + ` FROM checklist_responses WHERE instance_id = ?`
	args := []any{instanceID}
	if itemKey != "" {
		query += " AND item_key = ?"
		args = append(args, itemKey)
	}
	query += " ORDER BY seq"
	return r.listResponses(ctx, query, args...)
}

func (r *ChecklistRepository) listResponses(ctx context.Context, query string, args ...any) ([]*secondary.ResponseRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var responses []*secondary.ResponseRecord
	for rows.Next() {
		var (
			rec         secondary.ResponseRecord
			actorID     sql.NullString
			completedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.InstanceID, &rec.ItemKey, &rec.Value, &actorID, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		rec.ActorID = actorID.String
		if rec.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		responses = append(responses, &rec)
	}
	return responses, rows.Err()
}

// ListSignatures returns all signatures on an instance.
func (r *ChecklistRepository) ListSignatures(ctx context.Context, instanceID string) ([]*secondary.SignatureRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, instance_id, role, actor_id, method, signed_at FROM checklist_signatures WHERE instance_id = ? ORDER BY signed_at, id`,
		instanceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}
	defer rows.Close()

	var signatures []*secondary.SignatureRecord
	for rows.Next() {
		var (
			rec      secondary.SignatureRecord
			role     string
			method   string
			actorID  sql.NullString
			signedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.InstanceID, &role, &actorID, &method, &signedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		rec.Role = checklist.Role(role)
		rec.Method = checklist.SignatureMethod(method)
		rec.ActorID = actorID.String
		if rec.SignedAt, err = parseTime(signedAt); err != nil {
			return nil, err
		}
		signatures = append(signatures, &rec)
	}
	return signatures, rows.Err()
}

// SetCompleted transitions an in-progress instance to COMPLETED. This is the
// only status-transition write.
func (r *ChecklistRepository) SetCompleted(ctx context.Context, instanceID string, completedAt time.Time, pending checklist.PendingReviews) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE checklist_instances
		 SET status = 'COMPLETED', completed_at = ?, pending_scrub_review = ?, pending_surgeon_review = ?
		 WHERE id = ? AND status = 'IN_PROGRESS'`,
		formatTime(completedAt), pending.Scrub, pending.Surgeon, instanceID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete checklist: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("checklist %s is not in progress: %w", instanceID, secondary.ErrConflict)
	}
	return nil
}

// reviewColumns maps each review role to its flag and timestamp columns.
var reviewColumns = map[checklist.Role]struct{ flag, completedAt string }{
	checklist.RoleScrub:   {"pending_scrub_review", "scrub_review_completed_at"},
	checklist.RoleSurgeon: {"pending_surgeon_review", "surgeon_review_completed_at"},
}

// ClearPendingReview clears one review flag and stamps its completion time.
func (r *ChecklistRepository) ClearPendingReview(ctx context.Context, instanceID string, role checklist.Role, at time.Time) error {
	cols, ok := reviewColumns[role]
	if !ok {
		return fmt.Errorf("role %s has no review flag", role)
	}
	result, err := r.q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE checklist_instances SET %s = 0, %s = ? WHERE id = ?`, cols.flag, cols.completedAt),
		formatTime(at), instanceID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear pending review: %w", err)
	}
	return requireRow(result, "checklist", instanceID)
}

func scanInstance(row rowScanner) (*secondary.InstanceRecord, error) {
	var (
		inst               secondary.InstanceRecord
		typ, status        string
		roomID, createdBy  sql.NullString
		startedAt          string
		completedAt        sql.NullString
		scrubCompletedAt   sql.NullString
		surgeonCompletedAt sql.NullString
	)
	err := row.Scan(
		&inst.ID,
		&inst.CaseID,
		&inst.FacilityID,
		&typ,
		&inst.TemplateVersionID,
		&roomID,
		&status,
		&createdBy,
		&startedAt,
		&completedAt,
		&inst.PendingScrubReview,
		&scrubCompletedAt,
		&inst.PendingSurgeonReview,
		&surgeonCompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan checklist: %w", err)
	}

	inst.Type = checklist.Type(typ)
	inst.Status = checklist.Status(status)
	inst.RoomID = roomID.String
	inst.CreatedBy = createdBy.String
	if inst.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if inst.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, err
	}
	if inst.ScrubReviewCompletedAt, err = parseNullTime(scrubCompletedAt); err != nil {
		return nil, err
	}
	if inst.SurgeonReviewCompletedAt, err = parseNullTime(surgeonCompletedAt); err != nil {
		return nil, err
	}
	return &inst, nil
}

// Ensure ChecklistRepository implements the interface
var _ secondary.ChecklistRepository = (*ChecklistRepository)(nil)
