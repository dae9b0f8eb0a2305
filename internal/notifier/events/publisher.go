package events

import (
	"context"
	"time"

	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/messaging"
)

// NotifierEventPublisher publishes expiration scan events
type NotifierEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewNotifierEventPublisher creates a new notifier event publisher
func NewNotifierEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*NotifierEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeNotificationEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &NotifierEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishLotExpiring publishes one flagged lot
func (p *NotifierEventPublisher) PublishLotExpiring(ctx context.Context, data messaging.LotExpiringEvent) {
	if p == nil {
		return
	}

	if err := p.publisher.Publish(ctx, messaging.EventLotExpiringFlagged, data); err != nil {
		p.logger.Error().Err(err).Str("lot_id", data.LotID).Msg("failed to publish lot expiring event")
	}
}

// PublishScanCompleted publishes the scan summary
func (p *NotifierEventPublisher) PublishScanCompleted(ctx context.Context, flagged, notified, emailsSent int) {
	if p == nil {
		return
	}

	data := messaging.ScanCompletedEvent{
		Flagged:    flagged,
		Notified:   notified,
		EmailsSent: emailsSent,
		RanAt:      time.Now(),
	}

	if err := p.publisher.Publish(ctx, messaging.EventScanCompleted, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to publish scan completed event")
	}
}
