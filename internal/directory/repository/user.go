// Package repository persists the local user directory. Users are owned by
// the identity provider; this service mirrors them from user.* events so
// audit entries and notification routing never need a synchronous lookup.
package repository

import (
	"context"
	"database/sql"

	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
)

// User represents a cached directory user
type User struct {
	ID        string  `db:"id" json:"id"`
	Email     string  `db:"email" json:"email"`
	Name      string  `db:"name" json:"name"`
	Role      string  `db:"role" json:"role"`
	StationID *string `db:"station_id" json:"station_id,omitempty"`
}

// UserRepository handles cached user persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Set creates or updates a cached user
func (r *UserRepository) Set(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, name, role, station_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id)
		DO UPDATE SET email = $2, name = $3, role = $4, station_id = $5, updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.Role, user.StationID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// Get gets a cached user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	var user User
	query := `SELECT id, email, name, role, station_id FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

// Delete deletes a cached user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ManagersByStation returns the managers assigned to a station. Used by the
// notifier to route expiry digests.
func (r *UserRepository) ManagersByStation(ctx context.Context, stationID string) ([]*User, error) {
	var users []*User
	query := `
		SELECT id, email, name, role, station_id FROM users
		WHERE role = 'manager' AND station_id = $1
		ORDER BY email
	`
	if err := r.db.SelectContext(ctx, &users, query, stationID); err != nil {
		return nil, err
	}
	return users, nil
}

// Admins returns every admin user
func (r *UserRepository) Admins(ctx context.Context) ([]*User, error) {
	var users []*User
	query := `
		SELECT id, email, name, role, station_id FROM users
		WHERE role = 'admin'
		ORDER BY email
	`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}
	return users, nil
}

// List lists cached users, optionally scoped to one station
func (r *UserRepository) List(ctx context.Context, stationID string) ([]*User, error) {
	users := []*User{}
	if stationID != "" {
		query := `
			SELECT id, email, name, role, station_id FROM users
			WHERE station_id = $1
			ORDER BY email
		`
		if err := r.db.SelectContext(ctx, &users, query, stationID); err != nil {
			return nil, err
		}
		return users, nil
	}

	query := `SELECT id, email, name, role, station_id FROM users ORDER BY email`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}
	return users, nil
}
