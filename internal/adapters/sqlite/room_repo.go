package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/safecase/internal/ports/secondary"
)

// RoomRepository implements secondary.RoomDirectory with SQLite.
type RoomRepository struct {
	db *sql.DB
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetActiveRoom returns the room when it is active and in the facility.
func (r *RoomRepository) GetActiveRoom(ctx context.Context, roomID, facilityID string) (*secondary.RoomRecord, error) {
	room := &secondary.RoomRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, facility_id, name, is_active FROM rooms WHERE id = ? AND facility_id = ? AND is_active = 1`,
		roomID, facilityID,
	).Scan(&room.ID, &room.FacilityID, &room.Name, &room.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// Ensure RoomRepository implements the interface
var _ secondary.RoomDirectory = (*RoomRepository)(nil)
