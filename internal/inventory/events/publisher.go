package events

import (
	"context"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/messaging"
)

// InventoryEventPublisher publishes inventory-related events
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishLotReceived publishes a lot received event
func (p *InventoryEventPublisher) PublishLotReceived(ctx context.Context, lot *repository.Lot, productName, receivedBy string) {
	if p == nil {
		return
	}

	data := messaging.LotReceivedEvent{
		LotID:       lot.ID,
		LotCode:     lot.LotCode,
		ProductID:   lot.ProductID,
		ProductName: productName,
		StationID:   lot.StationID,
		Quantity:    lot.Quantity,
		ExpiresAt:   lot.ExpiresAt,
		ReceivedBy:  receivedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventLotReceived, data); err != nil {
		p.logger.Error().Err(err).Str("lot_id", lot.ID).Msg("failed to publish lot received event")
	}
}

// PublishActivityApplied publishes an activity applied event
func (p *InventoryEventPublisher) PublishActivityApplied(ctx context.Context, activity *repository.Activity, newStatus string) {
	if p == nil {
		return
	}

	performedBy := ""
	if activity.PerformedBy != nil {
		performedBy = *activity.PerformedBy
	}

	data := messaging.ActivityAppliedEvent{
		ActivityID:  activity.ID,
		LotID:       activity.LotID,
		Action:      string(activity.Action),
		Quantity:    activity.Quantity,
		NewQuantity: activity.QuantityAfter,
		NewStatus:   newStatus,
		PerformedBy: performedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventActivityApplied, data); err != nil {
		p.logger.Error().Err(err).Str("lot_id", activity.LotID).Msg("failed to publish activity applied event")
	}
}

// PublishStatusChanged publishes a lot status changed event
func (p *InventoryEventPublisher) PublishStatusChanged(ctx context.Context, lot *repository.Lot, oldStatus string) {
	if p == nil {
		return
	}

	data := messaging.LotStatusChangedEvent{
		LotID:     lot.ID,
		LotCode:   lot.LotCode,
		OldStatus: oldStatus,
		NewStatus: string(lot.Status),
	}

	if err := p.publisher.Publish(ctx, messaging.EventLotStatusChanged, data); err != nil {
		p.logger.Error().Err(err).Str("lot_id", lot.ID).Msg("failed to publish status changed event")
	}
}

// PublishLotsDeleted publishes a lot deleted event
func (p *InventoryEventPublisher) PublishLotsDeleted(ctx context.Context, lotIDs []string, deletedBy string) {
	if p == nil {
		return
	}

	data := messaging.LotDeletedEvent{
		LotIDs:    lotIDs,
		DeletedBy: deletedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventLotDeleted, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to publish lot deleted event")
	}
}
