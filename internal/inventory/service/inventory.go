package service

import (
	"context"
	"time"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/domain"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/events"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
)

// InventoryService handles lot business logic around the mutation engine:
// receiving, listing, detail views, deletion and dashboard stats.
type InventoryService struct {
	lotRepo          *repository.LotRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	publisher        *events.InventoryEventPublisher
	logger           *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	lotRepo *repository.LotRepository,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		lotRepo:          lotRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		logger:           log,
	}
}

// ReceiveLotInput describes a newly received lot
type ReceiveLotInput struct {
	LotCode    string
	ProductID  string
	StationID  string
	Quantity   int
	ExpiresAt  time.Time
	ReceivedBy string
}

// ReceiveLot registers a new lot of stock
func (s *InventoryService) ReceiveLot(ctx context.Context, input ReceiveLotInput) (*repository.Lot, error) {
	if input.ExpiresAt.IsZero() {
		return nil, errors.Validation(map[string]string{
			"expires_at": "this field is required",
		})
	}
	if input.Quantity <= 0 {
		return nil, errors.Validation(map[string]string{
			"quantity": "must be greater than 0",
		})
	}

	lot := &repository.Lot{
		LotCode:   input.LotCode,
		ProductID: input.ProductID,
		StationID: input.StationID,
		Quantity:  input.Quantity,
		ExpiresAt: input.ExpiresAt,
	}
	if input.ReceivedBy != "" {
		lot.ReceivedBy = &input.ReceivedBy
	}

	if err := s.lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("lot_id", lot.ID).
		Str("lot_code", lot.LotCode).
		Int("quantity", lot.Quantity).
		Msg("lot received")

	detail, err := s.lotRepo.GetDetail(ctx, lot.ID)
	productName := ""
	if err == nil {
		productName = detail.ProductName
	}
	s.publisher.PublishLotReceived(ctx, lot, productName, input.ReceivedBy)

	return lot, nil
}

// LotView is a lot detail with its ledger and notification history
type LotView struct {
	*repository.LotDetail
	Activities    []*repository.Activity     `json:"activities"`
	Notifications []*repository.Notification `json:"notifications"`
}

// GetLot returns a lot with its activity ledger and notifications
func (s *InventoryService) GetLot(ctx context.Context, id string) (*LotView, error) {
	detail, err := s.lotRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	activities, err := s.activityRepo.ListByLot(ctx, id, 100)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notificationRepo.ListByLot(ctx, id)
	if err != nil {
		return nil, err
	}

	return &LotView{
		LotDetail:     detail,
		Activities:    activities,
		Notifications: notifications,
	}, nil
}

// ListLots lists lots matching the filter
func (s *InventoryService) ListLots(ctx context.Context, filter repository.LotFilter) ([]*repository.LotDetail, int64, error) {
	return s.lotRepo.List(ctx, filter)
}

// DeleteLots removes lots by ID. Admin-only at the boundary; the ledger
// entries and notifications go with them.
func (s *InventoryService) DeleteLots(ctx context.Context, ids []string, deletedBy string) (int64, error) {
	if len(ids) == 0 {
		return 0, errors.Validation(map[string]string{
			"ids": "this field is required",
		})
	}

	deleted, err := s.lotRepo.BulkDelete(ctx, ids)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info().
			Int64("deleted", deleted).
			Str("deleted_by", deletedBy).
			Msg("lots deleted")
		s.publisher.PublishLotsDeleted(ctx, ids, deletedBy)
	}

	return deleted, nil
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	Counts             *repository.StatusCounts `json:"counts"`
	ExpiringSoon       []*repository.LotDetail  `json:"expiring_soon"`
	RecentActivities   []*repository.Activity   `json:"recent_activities"`
	NotificationsToday int64                    `json:"notifications_today"`
}

// GetDashboardStats gets per-status counts, the next expiring lots, and
// recent ledger entries, optionally scoped to one station.
func (s *InventoryService) GetDashboardStats(ctx context.Context, stationID string) (*DashboardStats, error) {
	counts, err := s.lotRepo.CountByStatus(ctx, stationID)
	if err != nil {
		return nil, err
	}

	expiring, _, err := s.lotRepo.List(ctx, repository.LotFilter{
		StationID: stationID,
		Status:    domain.StatusExpiringSoon,
		PerPage:   10,
	})
	if err != nil {
		return nil, err
	}

	recent, err := s.activityRepo.ListRecent(ctx, 20)
	if err != nil {
		return nil, err
	}

	notified, err := s.notificationRepo.CountToday(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Counts:             counts,
		ExpiringSoon:       expiring,
		RecentActivities:   recent,
		NotificationsToday: notified,
	}, nil
}
