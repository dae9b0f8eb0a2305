package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/domain"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
)

// Lot represents a received batch of stock with a single expiry date
type Lot struct {
	ID        string `db:"id" json:"id"`
	LotCode   string `db:"lot_code" json:"lot_code"`
	ProductID string `db:"product_id" json:"product_id"`
	StationID string `db:"station_id" json:"station_id"`
	Quantity  int    `db:"quantity" json:"quantity"`
	// InitialQuantity is the size of the original receipt, set once at
	// creation. The ledger reconciles against it.
	InitialQuantity int           `db:"initial_quantity" json:"initial_quantity"`
	Status          domain.Status `db:"status" json:"status"`
	ReceivedBy      *string       `db:"received_by" json:"received_by,omitempty"`
	ReceivedAt      time.Time     `db:"received_at" json:"received_at"`
	ExpiresAt       time.Time     `db:"expires_at" json:"expires_at"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// LotDetail is a lot joined with its product, category and station names
type LotDetail struct {
	Lot
	ProductName  string `db:"product_name" json:"product_name"`
	CategoryName string `db:"category_name" json:"category_name"`
	StationName  string `db:"station_name" json:"station_name"`
}

// LotFilter narrows lot listings
type LotFilter struct {
	StationID     string
	Status        domain.Status
	CategoryID    string
	Search        string
	ExpiresAfter  time.Time
	ExpiresBefore time.Time
	// ExcludeEmpty hides drained lots; the default station view applies it
	ExcludeEmpty bool
	Page         int
	PerPage      int
}

// LotRepository handles lot persistence
type LotRepository struct {
	db *database.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *database.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Create creates a new lot
func (r *LotRepository) Create(ctx context.Context, lot *Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	if lot.Status == "" {
		lot.Status = domain.StatusInStock
	}
	if lot.ReceivedAt.IsZero() {
		lot.ReceivedAt = time.Now().UTC()
	}
	// Set once; the mutation engine never touches it
	lot.InitialQuantity = lot.Quantity

	query := `
		INSERT INTO lots (
			id, lot_code, product_id, station_id, quantity, initial_quantity, status, received_by, received_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		lot.ID, lot.LotCode, lot.ProductID, lot.StationID,
		lot.Quantity, lot.InitialQuantity, lot.Status, lot.ReceivedBy,
		lot.ReceivedAt, lot.ExpiresAt,
	).Scan(&lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a lot by ID
func (r *LotRepository) GetByID(ctx context.Context, id string) (*Lot, error) {
	var lot Lot
	query := `SELECT * FROM lots WHERE id = $1`
	if err := r.db.GetContext(ctx, &lot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("lot")
		}
		return nil, err
	}
	return &lot, nil
}

// GetDetail gets a lot joined with product, category and station names
func (r *LotRepository) GetDetail(ctx context.Context, id string) (*LotDetail, error) {
	var detail LotDetail
	query := `
		SELECT l.*, p.name AS product_name, c.name AS category_name, s.name AS station_name
		FROM lots l
		JOIN products p ON p.id = l.product_id
		JOIN categories c ON c.id = p.category_id
		JOIN stations s ON s.id = l.station_id
		WHERE l.id = $1
	`
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("lot")
		}
		return nil, err
	}
	return &detail, nil
}

// List lists lots matching the filter, soonest expiry first
func (r *LotRepository) List(ctx context.Context, filter LotFilter) ([]*LotDetail, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.StationID != "" {
		args = append(args, filter.StationID)
		conditions = append(conditions, fmt.Sprintf("l.station_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR l.lot_code ILIKE $%d)", len(args), len(args)))
	}
	if !filter.ExpiresAfter.IsZero() {
		args = append(args, filter.ExpiresAfter)
		conditions = append(conditions, fmt.Sprintf("l.expires_at >= $%d", len(args)))
	}
	if !filter.ExpiresBefore.IsZero() {
		args = append(args, filter.ExpiresBefore)
		conditions = append(conditions, fmt.Sprintf("l.expires_at <= $%d", len(args)))
	}
	if filter.ExcludeEmpty {
		conditions = append(conditions, "l.status <> 'empty'")
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM lots l
		JOIN products p ON p.id = l.product_id
		WHERE %s
	`, where)

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 50
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`
		SELECT l.*, p.name AS product_name, c.name AS category_name, s.name AS station_name
		FROM lots l
		JOIN products p ON p.id = l.product_id
		JOIN categories c ON c.id = p.category_id
		JOIN stations s ON s.id = l.station_id
		WHERE %s
		ORDER BY l.expires_at, l.lot_code
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	var lots []*LotDetail
	if err := r.db.SelectContext(ctx, &lots, query, args...); err != nil {
		return nil, 0, err
	}
	return lots, total, nil
}

// GetForUpdate locks a lot row for the duration of the transaction.
// Callers must hold the lock before reading the quantity they mutate.
func (r *LotRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*Lot, error) {
	var lot Lot
	query := `SELECT * FROM lots WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &lot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("lot")
		}
		if appErr := database.MapPQError(err); appErr != nil {
			return nil, appErr
		}
		return nil, err
	}
	return &lot, nil
}

// ApplyMutation writes the new quantity and status of a locked lot
func (r *LotRepository) ApplyMutation(ctx context.Context, tx *sqlx.Tx, id string, quantity int, status domain.Status) error {
	query := `UPDATE lots SET quantity = $2, status = $3, updated_at = NOW() WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, id, quantity, status)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("lot")
	}
	return nil
}

// BulkDelete removes lots by ID and returns how many were deleted
func (r *LotRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM lots WHERE id = ANY($1)`
	result, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, err
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// FindExpiring returns lots with stock whose expiry falls within the
// product's notification window, excluding lots that were ever flagged
// before. Used by the expiration scan.
func (r *LotRepository) FindExpiring(ctx context.Context) ([]*LotDetail, error) {
	var lots []*LotDetail
	query := `
		SELECT l.*, p.name AS product_name, c.name AS category_name, s.name AS station_name
		FROM lots l
		JOIN products p ON p.id = l.product_id
		JOIN categories c ON c.id = p.category_id
		JOIN stations s ON s.id = l.station_id
		WHERE l.quantity > 0
		AND l.status NOT IN ('empty')
		AND l.expires_at <= NOW() + INTERVAL '1 day' * p.notification_threshold_days
		AND NOT EXISTS (
			SELECT 1 FROM notifications n WHERE n.lot_id = l.id
		)
		ORDER BY l.expires_at
	`
	if err := r.db.SelectContext(ctx, &lots, query); err != nil {
		return nil, err
	}
	return lots, nil
}

// MarkTimeBasedStatuses moves lots into expired and expiring_soon based on
// their expiry date and the product's notification window. Empty lots are
// left alone. Returns how many rows changed.
func (r *LotRepository) MarkTimeBasedStatuses(ctx context.Context) (int64, error) {
	expiredQuery := `
		UPDATE lots SET status = 'expired', updated_at = NOW()
		WHERE status NOT IN ('expired', 'empty') AND expires_at < NOW()
	`
	expiredResult, err := r.db.ExecContext(ctx, expiredQuery)
	if err != nil {
		return 0, err
	}

	expiringQuery := `
		UPDATE lots SET status = 'expiring_soon', updated_at = NOW()
		FROM products p
		WHERE p.id = lots.product_id
		AND lots.status = 'in_stock'
		AND lots.expires_at >= NOW()
		AND lots.expires_at <= NOW() + INTERVAL '1 day' * p.notification_threshold_days
	`
	expiringResult, err := r.db.ExecContext(ctx, expiringQuery)
	if err != nil {
		return 0, err
	}

	expired, _ := expiredResult.RowsAffected()
	expiring, _ := expiringResult.RowsAffected()
	return expired + expiring, nil
}

// StatusCounts holds per-status lot counts for the dashboard
type StatusCounts struct {
	InStock      int64 `db:"in_stock" json:"in_stock"`
	ExpiringSoon int64 `db:"expiring_soon" json:"expiring_soon"`
	Expired      int64 `db:"expired" json:"expired"`
	Empty        int64 `db:"empty" json:"empty"`
}

// CountByStatus returns per-status lot counts, optionally scoped to a station
func (r *LotRepository) CountByStatus(ctx context.Context, stationID string) (*StatusCounts, error) {
	var counts StatusCounts
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'in_stock') AS in_stock,
			COUNT(*) FILTER (WHERE status = 'expiring_soon') AS expiring_soon,
			COUNT(*) FILTER (WHERE status = 'expired') AS expired,
			COUNT(*) FILTER (WHERE status = 'empty') AS empty
		FROM lots
		WHERE ($1 = '' OR station_id::text = $1)
	`
	if err := r.db.GetContext(ctx, &counts, query, stationID); err != nil {
		return nil, err
	}
	return &counts, nil
}
