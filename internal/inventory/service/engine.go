package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/domain"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/events"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// Engine applies stock mutations to lots. Every mutation runs in a single
// transaction: lock the lot row, derive the signed delta from the action,
// reject anything that would drive the quantity negative, write the new
// quantity and status, and append the ledger entry. Either all of it
// commits or none of it does.
type Engine struct {
	db           *database.DB
	lotRepo      *repository.LotRepository
	activityRepo *repository.ActivityRepository
	publisher    *events.InventoryEventPublisher
	lockTimeout  time.Duration
	logger       *logger.Logger
}

// NewEngine creates a new mutation engine
func NewEngine(
	db *database.DB,
	lotRepo *repository.LotRepository,
	activityRepo *repository.ActivityRepository,
	publisher *events.InventoryEventPublisher,
	lockTimeout time.Duration,
	log *logger.Logger,
) *Engine {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Engine{
		db:           db,
		lotRepo:      lotRepo,
		activityRepo: activityRepo,
		publisher:    publisher,
		lockTimeout:  lockTimeout,
		logger:       log,
	}
}

// ApplyActivityInput describes one requested stock mutation
type ApplyActivityInput struct {
	LotID       string
	Action      domain.Action
	Quantity    int
	PerformedBy string
	Note        string
}

// ApplyActivityResult is the committed outcome of a mutation
type ApplyActivityResult struct {
	Lot      *repository.Lot      `json:"lot"`
	Activity *repository.Activity `json:"activity"`
}

// ApplyActivity applies one stock mutation atomically.
//
// The quantity is a positive magnitude; the sign comes from the action
// alone. A removal larger than the current stock fails with an
// insufficient-stock error carrying the lot's current quantity, and
// leaves no trace in the ledger.
func (e *Engine) ApplyActivity(ctx context.Context, input ApplyActivityInput) (*ApplyActivityResult, error) {
	if !input.Action.IsValid() {
		return nil, errors.BadRequest("unknown action: " + string(input.Action))
	}
	if input.Quantity <= 0 {
		return nil, errors.Validation(map[string]string{
			"quantity": "must be greater than 0",
		})
	}

	var (
		lot       *repository.Lot
		activity  *repository.Activity
		oldStatus domain.Status
	)

	err := e.db.TransactionWithLockTimeout(ctx, e.lockTimeout, func(tx *sqlx.Tx) error {
		var err error
		lot, err = e.lotRepo.GetForUpdate(ctx, tx, input.LotID)
		if err != nil {
			return err
		}
		oldStatus = lot.Status

		newQuantity := lot.Quantity + input.Action.Delta(input.Quantity)
		if newQuantity < 0 {
			return errors.InsufficientStock(lot.Quantity)
		}

		newStatus := domain.NextStatus(lot.Status, newQuantity)

		if err := e.lotRepo.ApplyMutation(ctx, tx, lot.ID, newQuantity, newStatus); err != nil {
			return err
		}

		activity = &repository.Activity{
			LotID:         lot.ID,
			Action:        input.Action,
			Quantity:      input.Quantity,
			QuantityAfter: newQuantity,
		}
		if input.PerformedBy != "" {
			activity.PerformedBy = &input.PerformedBy
		}
		if input.Note != "" {
			activity.Note = &input.Note
		}

		if err := e.activityRepo.Append(ctx, tx, activity); err != nil {
			return err
		}

		lot.Quantity = newQuantity
		lot.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("lot_id", lot.ID).
		Str("action", string(input.Action)).
		Int("quantity", input.Quantity).
		Int("new_quantity", lot.Quantity).
		Str("status", string(lot.Status)).
		Msg("activity applied")

	e.publisher.PublishActivityApplied(ctx, activity, string(lot.Status))
	if lot.Status != oldStatus {
		e.publisher.PublishStatusChanged(ctx, lot, string(oldStatus))
	}

	return &ApplyActivityResult{Lot: lot, Activity: activity}, nil
}
