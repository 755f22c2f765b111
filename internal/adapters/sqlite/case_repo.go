package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/safecase/internal/ports/secondary"
)

// CaseRepository implements secondary.CaseProvider over the cases table.
// Cases are owned by the case lifecycle; this adapter only reads them.
type CaseRepository struct {
	db *sql.DB
}

// NewCaseRepository creates a new SQLite case repository.
func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// GetCaseActiveState returns the case's activity flags, or nil when the case
// does not exist in the facility.
func (r *CaseRepository) GetCaseActiveState(ctx context.Context, caseID, facilityID string) (*secondary.CaseState, error) {
	state := &secondary.CaseState{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, procedure_name, is_active, is_cancelled FROM cases WHERE id = ? AND facility_id = ?`,
		caseID, facilityID,
	).Scan(&state.CaseID, &state.ProcedureName, &state.IsActive, &state.IsCancelled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return state, nil
}

// Ensure CaseRepository implements the interface
var _ secondary.CaseProvider = (*CaseRepository)(nil)
