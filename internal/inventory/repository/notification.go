package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fuelstock/fuelstock-backend/pkg/database"
)

// Notification records that a lot was flagged by the expiration scan.
// lot_id is unique so a lot is flagged at most once in its lifetime no
// matter how often the scan runs; notified_on records when that was.
type Notification struct {
	ID         string    `db:"id" json:"id"`
	LotID      string    `db:"lot_id" json:"lot_id"`
	Kind       string    `db:"kind" json:"kind"`
	Status     string    `db:"status" json:"status"`
	NotifiedOn time.Time `db:"notified_on" json:"notified_on"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NotificationRepository handles notification persistence
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create records that a lot was flagged. Returns false without error when
// the lot was already flagged by an earlier scan.
func (r *NotificationRepository) Create(ctx context.Context, n *Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Kind == "" {
		n.Kind = "expiring_soon"
	}
	if n.Status == "" {
		n.Status = "sent"
	}

	query := `
		INSERT INTO notifications (id, lot_id, kind, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT notifications_lot_key DO NOTHING
		RETURNING notified_on, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, n.ID, n.LotID, n.Kind, n.Status).
		Scan(&n.NotifiedOn, &n.CreatedAt)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row when the insert was skipped
		if err == sql.ErrNoRows {
			return false, nil
		}
		if appErr := database.MapPQError(err); appErr != nil {
			return false, appErr
		}
		return false, err
	}
	return true, nil
}

// MarkFailed flags the notifications for the given lots as failed, so a
// later run can tell which emails never went out.
func (r *NotificationRepository) MarkFailed(ctx context.Context, lotIDs []string) error {
	if len(lotIDs) == 0 {
		return nil
	}

	query := `
		UPDATE notifications SET status = 'failed'
		WHERE lot_id = ANY($1)
	`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(lotIDs)); err != nil {
		return err
	}
	return nil
}

// ListByLot lists notifications for a lot, newest first
func (r *NotificationRepository) ListByLot(ctx context.Context, lotID string) ([]*Notification, error) {
	var notifications []*Notification
	query := `
		SELECT * FROM notifications
		WHERE lot_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &notifications, query, lotID); err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountToday returns how many notifications were recorded today
func (r *NotificationRepository) CountToday(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE notified_on = CURRENT_DATE`
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, err
	}
	return count, nil
}
