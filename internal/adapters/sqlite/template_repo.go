package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/secondary"
)

// TemplateRepository implements secondary.TemplateRepository with SQLite.
type TemplateRepository struct {
	db *sql.DB // nil when bound to a transaction
	q  querier
}

// NewTemplateRepository creates a new SQLite template repository.
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db, q: db}
}

// WithinTx runs fn against a repository bound to a single transaction.
func (r *TemplateRepository) WithinTx(ctx context.Context, fn func(repo secondary.TemplateRepository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&TemplateRepository{q: tx})
	})
}

const templateColumns = `id, facility_id, type, name, is_active, current_version_id, created_at, updated_at`

// GetTemplate retrieves the template for a facility and checklist type.
func (r *TemplateRepository) GetTemplate(ctx context.Context, facilityID string, t checklist.Type) (*secondary.TemplateRecord, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM checklist_templates WHERE facility_id = ? AND type = ?`,
		facilityID, string(t),
	)
	return scanTemplate(row)
}

// GetTemplateByID retrieves a template by its ID.
func (r *TemplateRepository) GetTemplateByID(ctx context.Context, id string) (*secondary.TemplateRecord, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM checklist_templates WHERE id = ?`,
		id,
	)
	return scanTemplate(row)
}

// ListTemplates retrieves every template for a facility.
func (r *TemplateRepository) ListTemplates(ctx context.Context, facilityID string) ([]*secondary.TemplateRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM checklist_templates WHERE facility_id = ? ORDER BY type DESC`,
		facilityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*secondary.TemplateRecord
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// CreateTemplate provisions a template with no current version.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, tpl *secondary.TemplateRecord) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO checklist_templates (id, facility_id, type, name, is_active, current_version_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID,
		tpl.FacilityID,
		string(tpl.Type),
		tpl.Name,
		tpl.IsActive,
		nullString(tpl.CurrentVersionID),
		formatTime(tpl.CreatedAt),
		formatTime(tpl.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", translateConstraint(err))
	}
	return nil
}

// SetActive activates or deactivates a template.
func (r *TemplateRepository) SetActive(ctx context.Context, templateID string, active bool) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE checklist_templates SET is_active = ? WHERE id = ?`,
		active, templateID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return requireRow(result, "template", templateID)
}

const versionColumns = `id, template_id, version_number, items_json, signatures_json, created_by, created_at`

// GetVersion retrieves an immutable template version.
func (r *TemplateRepository) GetVersion(ctx context.Context, versionID string) (*secondary.TemplateVersionRecord, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM checklist_template_versions WHERE id = ?`,
		versionID,
	)
	return scanVersion(row)
}

// ListVersions retrieves every version of a template, newest first.
func (r *TemplateRepository) ListVersions(ctx context.Context, templateID string) ([]*secondary.TemplateVersionRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+versionColumns+` FROM checklist_template_versions WHERE template_id = ? ORDER BY version_number DESC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list template versions: %w", err)
	}
	defer rows.Close()

	var versions []*secondary.TemplateVersionRecord
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// VersionNumbers returns the version numbers already used by a template.
func (r *TemplateRepository) VersionNumbers(ctx context.Context, templateID string) ([]int, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT version_number FROM checklist_template_versions WHERE template_id = ?`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query version numbers: %w", err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan version number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// CreateVersion inserts a new immutable version.
func (r *TemplateRepository) CreateVersion(ctx context.Context, version *secondary.TemplateVersionRecord) error {
	items, err := json.Marshal(version.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	sigs := version.Signatures
	if sigs == nil {
		sigs = []checklist.RequiredSignature{}
	}
	signatures, err := json.Marshal(sigs)
	if err != nil {
		return fmt.Errorf("failed to encode signatures: %w", err)
	}

	_, err = r.q.ExecContext(ctx,
		`INSERT INTO checklist_template_versions (id, template_id, version_number, items_json, signatures_json, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		version.ID,
		version.TemplateID,
		version.VersionNumber,
		string(items),
		string(signatures),
		nullString(version.CreatedBy),
		formatTime(version.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create template version: %w", translateConstraint(err))
	}
	return nil
}

// SetCurrentVersion repoints a template at one of its versions.
func (r *TemplateRepository) SetCurrentVersion(ctx context.Context, templateID, versionID string) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE checklist_templates SET current_version_id = ?, updated_at = (SELECT created_at FROM checklist_template_versions WHERE id = ?)
		 WHERE id = ?`,
		versionID, versionID, templateID,
	)
	if err != nil {
		return fmt.Errorf("failed to set current version: %w", err)
	}
	return requireRow(result, "template", templateID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*secondary.TemplateRecord, error) {
	var (
		tpl              secondary.TemplateRecord
		typ              string
		currentVersionID sql.NullString
		createdAt        string
		updatedAt        string
	)
	err := row.Scan(&tpl.ID, &tpl.FacilityID, &typ, &tpl.Name, &tpl.IsActive, &currentVersionID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	tpl.Type = checklist.Type(typ)
	tpl.CurrentVersionID = currentVersionID.String
	if tpl.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if tpl.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func scanVersion(row rowScanner) (*secondary.TemplateVersionRecord, error) {
	var (
		v          secondary.TemplateVersionRecord
		items      string
		signatures string
		createdBy  sql.NullString
		createdAt  string
	)
	err := row.Scan(&v.ID, &v.TemplateID, &v.VersionNumber, &items, &signatures, &createdBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan template version: %w", err)
	}

	if err := json.Unmarshal([]byte(items), &v.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of version %s: %w", v.ID, err)
	}
	if err := json.Unmarshal([]byte(signatures), &v.Signatures); err != nil {
		return nil, fmt.Errorf("failed to decode signatures of version %s: %w", v.ID, err)
	}
	v.CreatedBy = createdBy.String
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func requireRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", entity, id)
	}
	return nil
}

// Ensure TemplateRepository implements the interface
var _ secondary.TemplateRepository = (*TemplateRepository)(nil)
