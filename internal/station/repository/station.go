package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
)

// Station is a fuel station location
type Station struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StationRepository handles station persistence
type StationRepository struct {
	db *database.DB
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *database.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create creates a new station
func (r *StationRepository) Create(ctx context.Context, station *Station) error {
	query := `
		INSERT INTO stations (name, address)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, station.Name, station.Address).
		Scan(&station.ID, &station.CreatedAt, &station.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// List lists all stations
func (r *StationRepository) List(ctx context.Context) ([]*Station, error) {
	var stations []*Station
	query := `SELECT * FROM stations ORDER BY name`
	if err := r.db.SelectContext(ctx, &stations, query); err != nil {
		return nil, err
	}
	return stations, nil
}

// Get gets a station by ID
func (r *StationRepository) Get(ctx context.Context, id string) (*Station, error) {
	var station Station
	query := `SELECT * FROM stations WHERE id = $1`
	if err := r.db.GetContext(ctx, &station, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("station")
		}
		return nil, err
	}
	return &station, nil
}

// Update updates a station
func (r *StationRepository) Update(ctx context.Context, station *Station) error {
	query := `
		UPDATE stations
		SET name = $2, address = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, station.ID, station.Name, station.Address)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("station")
	}
	return nil
}

// Delete removes a station. Fails while lots or users still reference it.
func (r *StationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("station")
	}
	return nil
}
