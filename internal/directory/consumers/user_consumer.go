// Package consumers wires RabbitMQ events into the local user directory.
package consumers

import (
	"context"

	"github.com/fuelstock/fuelstock-backend/internal/directory/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/messaging"
)

// UserEventConsumer mirrors identity-provider user events into the directory
type UserEventConsumer struct {
	consumer *messaging.Consumer
	userRepo *repository.UserRepository
	logger   *logger.Logger
}

// NewUserEventConsumer creates a new user event consumer
func NewUserEventConsumer(rmq *messaging.RabbitMQ, userRepo *repository.UserRepository, log *logger.Logger) (*UserEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "inventory-service.user-events", log)
	if err != nil {
		return nil, err
	}

	// Subscribe to user events
	if err := consumer.Subscribe(messaging.ExchangeUserEvents, "user.#"); err != nil {
		return nil, err
	}

	c := &UserEventConsumer{
		consumer: consumer,
		userRepo: userRepo,
		logger:   log,
	}

	// Register handlers
	consumer.RegisterHandler(messaging.EventUserCreated, c.handleUserCreated)
	consumer.RegisterHandler(messaging.EventUserUpdated, c.handleUserUpdated)
	consumer.RegisterHandler(messaging.EventUserDeleted, c.handleUserDeleted)

	return c, nil
}

// Start starts consuming messages
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *UserEventConsumer) handleUserCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserCreatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Str("role", data.Role).
		Msg("received user created event")

	user := &repository.User{
		ID:    data.UserID,
		Email: data.Email,
		Name:  data.Name,
		Role:  data.Role,
	}
	if data.StationID != "" {
		user.StationID = &data.StationID
	}

	return c.userRepo.Set(ctx, user)
}

func (c *UserEventConsumer) handleUserUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("received user updated event")

	existing, _ := c.userRepo.Get(ctx, data.UserID)
	if existing == nil {
		return nil
	}

	if name, ok := data.Fields["name"].(string); ok {
		existing.Name = name
	}
	if email, ok := data.Fields["email"].(string); ok {
		existing.Email = email
	}
	if role, ok := data.Fields["role"].(string); ok {
		existing.Role = role
	}
	if stationID, ok := data.Fields["station_id"].(string); ok {
		if stationID == "" {
			existing.StationID = nil
		} else {
			existing.StationID = &stationID
		}
	}

	return c.userRepo.Set(ctx, existing)
}

func (c *UserEventConsumer) handleUserDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("received user deleted event")

	return c.userRepo.Delete(ctx, data.UserID)
}
