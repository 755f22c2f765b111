package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/example/safecase/internal/ports/secondary"
)

// UserRepository implements secondary.UserDirectory with SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// DisplayNames resolves actor IDs in one query. Unknown IDs are omitted.
func (r *UserRepository) DisplayNames(ctx context.Context, actorIDs []string) (map[string]string, error) {
	unique := mapset.NewThreadUnsafeSet[string]()
	for _, id := range actorIDs {
		if id != "" {
			unique.Add(id)
		}
	}
	names := make(map[string]string, unique.Cardinality())
	if unique.Cardinality() == 0 {
		return names, nil
	}

	ids := unique.ToSlice()
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, display_name FROM users WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// Ensure UserRepository implements the interface
var _ secondary.UserDirectory = (*UserRepository)(nil)
