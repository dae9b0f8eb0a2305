package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// User events (published by the identity provider, consumed here)
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"

	// Inventory events
	EventLotReceived      = "inventory.lot.received"
	EventActivityApplied  = "inventory.activity.applied"
	EventLotStatusChanged = "inventory.lot.status_changed"
	EventLotDeleted       = "inventory.lot.deleted"

	// Notification events
	EventLotExpiringFlagged = "notification.lot.expiring"
	EventScanCompleted      = "notification.scan.completed"
)

// Exchange names
const (
	ExchangeUserEvents         = "user.events"
	ExchangeInventoryEvents    = "inventory.events"
	ExchangeNotificationEvents = "notification.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// User Events

// UserCreatedEvent is published by the identity provider when a user is created
type UserCreatedEvent struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	StationID string `json:"station_id,omitempty"`
}

// UserUpdatedEvent is published by the identity provider when a user is updated
type UserUpdatedEvent struct {
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"` // Changed fields
}

// UserDeletedEvent is published by the identity provider when a user is deleted
type UserDeletedEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Inventory Events

// LotReceivedEvent is published when a new lot is registered
type LotReceivedEvent struct {
	LotID       string    `json:"lot_id"`
	LotCode     string    `json:"lot_code"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	StationID   string    `json:"station_id"`
	Quantity    int       `json:"quantity"`
	ExpiresAt   time.Time `json:"expires_at"`
	ReceivedBy  string    `json:"received_by"`
}

// ActivityAppliedEvent is published when a stock mutation commits
type ActivityAppliedEvent struct {
	ActivityID  string `json:"activity_id"`
	LotID       string `json:"lot_id"`
	Action      string `json:"action"`
	Quantity    int    `json:"quantity"`
	NewQuantity int    `json:"new_quantity"`
	NewStatus   string `json:"new_status"`
	PerformedBy string `json:"performed_by"`
}

// LotStatusChangedEvent is published when a lot transitions status
type LotStatusChangedEvent struct {
	LotID     string `json:"lot_id"`
	LotCode   string `json:"lot_code"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// LotDeletedEvent is published when lots are removed by an admin
type LotDeletedEvent struct {
	LotIDs    []string `json:"lot_ids"`
	DeletedBy string   `json:"deleted_by"`
}

// Notification Events

// LotExpiringEvent is published for each lot flagged by the expiration scan
type LotExpiringEvent struct {
	LotID       string    `json:"lot_id"`
	LotCode     string    `json:"lot_code"`
	ProductName string    `json:"product_name"`
	StationID   string    `json:"station_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	DaysUntil   int       `json:"days_until"`
	Quantity    int       `json:"quantity"`
}

// ScanCompletedEvent is published at the end of each expiration scan
type ScanCompletedEvent struct {
	Flagged    int       `json:"flagged"`
	Notified   int       `json:"notified"`
	EmailsSent int       `json:"emails_sent"`
	RanAt      time.Time `json:"ran_at"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
