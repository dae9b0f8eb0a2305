package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/domain"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
)

// Activity is one entry in the append-only stock ledger. Quantity is stored
// as a positive magnitude; the signed change is Action.Delta(Quantity), so a
// row can never carry a sign that contradicts its action. QuantityAfter is
// the lot quantity the mutation left behind.
type Activity struct {
	ID            string        `db:"id" json:"id"`
	LotID         string        `db:"lot_id" json:"lot_id"`
	Action        domain.Action `db:"action" json:"action"`
	Quantity      int           `db:"quantity" json:"quantity"`
	QuantityAfter int           `db:"quantity_after" json:"quantity_after"`
	PerformedBy   *string       `db:"performed_by" json:"performed_by,omitempty"`
	Note          *string       `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// ActivityRepository handles the activity ledger
type ActivityRepository struct {
	db *database.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append writes a ledger entry inside the mutation transaction so the entry
// commits or rolls back together with the lot update.
func (r *ActivityRepository) Append(ctx context.Context, tx *sqlx.Tx, activity *Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}

	query := `
		INSERT INTO activities (
			id, lot_id, action, quantity, quantity_after, performed_by, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := tx.QueryRowxContext(ctx, query,
		activity.ID, activity.LotID, activity.Action, activity.Quantity,
		activity.QuantityAfter, activity.PerformedBy, activity.Note,
	).Scan(&activity.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// ListByLot lists ledger entries for a lot, newest first
func (r *ActivityRepository) ListByLot(ctx context.Context, lotID string, limit int) ([]*Activity, error) {
	if limit < 1 {
		limit = 100
	}

	var activities []*Activity
	query := `
		SELECT * FROM activities
		WHERE lot_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &activities, query, lotID, limit); err != nil {
		return nil, err
	}
	return activities, nil
}

// ListRecent lists the most recent ledger entries across all lots
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]*Activity, error) {
	if limit < 1 {
		limit = 50
	}

	var activities []*Activity
	query := `
		SELECT * FROM activities
		ORDER BY created_at DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &activities, query, limit); err != nil {
		return nil, err
	}
	return activities, nil
}
