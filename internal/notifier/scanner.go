package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	directoryrepo "github.com/fuelstock/fuelstock-backend/internal/directory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/notifier/events"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/messaging"
)

// Scanner runs the expiration scan: it flags lots inside their product's
// notification window, records a notification for each (a lot is flagged at
// most once, ever), emails the affected stations' managers plus an admin
// summary, and rolls lots into their time-based statuses. It never mutates
// quantities.
type Scanner struct {
	lotRepo          *repository.LotRepository
	notificationRepo *repository.NotificationRepository
	userRepo         *directoryrepo.UserRepository
	mailer           Mailer
	publisher        *events.NotifierEventPublisher
	adminEmail       string
	logger           *logger.Logger
}

// NewScanner creates a new expiration scanner
func NewScanner(
	lotRepo *repository.LotRepository,
	notificationRepo *repository.NotificationRepository,
	userRepo *directoryrepo.UserRepository,
	mailer Mailer,
	publisher *events.NotifierEventPublisher,
	adminEmail string,
	log *logger.Logger,
) *Scanner {
	return &Scanner{
		lotRepo:          lotRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
		publisher:        publisher,
		adminEmail:       adminEmail,
		logger:           log,
	}
}

// ScanResult summarizes one scan run
type ScanResult struct {
	Flagged         int   `json:"flagged"`
	Notified        int   `json:"notified"`
	EmailsSent      int   `json:"emails_sent"`
	StatusesChanged int64 `json:"statuses_changed"`
}

// Scan runs one expiration scan. Email failures are logged and marked on the
// notification records but never abort the scan.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	start := time.Now()
	result := &ScanResult{}

	lots, err := s.lotRepo.FindExpiring(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: find expiring lots: %w", err)
	}

	byStation := make(map[string][]*repository.LotDetail)
	for _, lot := range lots {
		created, err := s.notificationRepo.Create(ctx, &repository.Notification{
			LotID: lot.ID,
			Kind:  "expiring_soon",
		})
		if err != nil {
			s.logger.Error().Err(err).Str("lot_id", lot.ID).Msg("scan: failed to record notification")
			continue
		}
		if !created {
			// Already flagged by an earlier scan
			continue
		}

		result.Flagged++
		byStation[lot.StationID] = append(byStation[lot.StationID], lot)

		s.publisher.PublishLotExpiring(ctx, messaging.LotExpiringEvent{
			LotID:       lot.ID,
			LotCode:     lot.LotCode,
			ProductName: lot.ProductName,
			StationID:   lot.StationID,
			ExpiresAt:   lot.ExpiresAt,
			DaysUntil:   daysUntil(lot.ExpiresAt),
			Quantity:    lot.Quantity,
		})
	}

	// One digest per station, to all of its managers.
	for stationID, stationLots := range byStation {
		managers, err := s.userRepo.ManagersByStation(ctx, stationID)
		if err != nil {
			s.logger.Error().Err(err).Str("station_id", stationID).Msg("scan: failed to load managers")
			s.markFailed(ctx, stationLots)
			continue
		}
		if len(managers) == 0 {
			s.logger.Warn().Str("station_id", stationID).Msg("scan: station has no manager to notify")
			continue
		}

		to := make([]string, 0, len(managers))
		for _, m := range managers {
			to = append(to, m.Email)
		}

		subject := fmt.Sprintf("%d lot(s) expiring soon at %s", len(stationLots), stationLots[0].StationName)
		if err := s.mailer.Send(to, subject, renderDigest(stationLots)); err != nil {
			s.logger.Error().Err(err).Str("station_id", stationID).Msg("scan: failed to email managers")
			s.markFailed(ctx, stationLots)
			continue
		}

		result.EmailsSent++
		result.Notified += len(stationLots)
	}

	// Admin summary across all stations.
	if s.adminEmail != "" && result.Flagged > 0 {
		subject := fmt.Sprintf("Expiration scan: %d lot(s) flagged", result.Flagged)
		if err := s.mailer.Send([]string{s.adminEmail}, subject, renderSummary(byStation)); err != nil {
			s.logger.Error().Err(err).Msg("scan: failed to email admin summary")
		} else {
			result.EmailsSent++
		}
	}

	changed, err := s.lotRepo.MarkTimeBasedStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: mark time-based statuses: %w", err)
	}
	result.StatusesChanged = changed

	s.logger.Info().
		Int("flagged", result.Flagged).
		Int("notified", result.Notified).
		Int("emails_sent", result.EmailsSent).
		Int64("statuses_changed", changed).
		Dur("duration", time.Since(start)).
		Msg("expiration scan completed")

	s.publisher.PublishScanCompleted(ctx, result.Flagged, result.Notified, result.EmailsSent)

	return result, nil
}

func (s *Scanner) markFailed(ctx context.Context, lots []*repository.LotDetail) {
	ids := make([]string, 0, len(lots))
	for _, lot := range lots {
		ids = append(ids, lot.ID)
	}
	if err := s.notificationRepo.MarkFailed(ctx, ids); err != nil {
		s.logger.Error().Err(err).Msg("scan: failed to mark notifications failed")
	}
}

func daysUntil(t time.Time) int {
	return int(time.Until(t).Hours() / 24)
}

func renderDigest(lots []*repository.LotDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following lots at %s expire soon:\n\n", lots[0].StationName)
	for _, lot := range lots {
		fmt.Fprintf(&b, "- %s (%s): %d in stock, expires %s (%d days)\n",
			lot.ProductName, lot.LotCode, lot.Quantity,
			lot.ExpiresAt.Format("2006-01-02"), daysUntil(lot.ExpiresAt))
	}
	b.WriteString("\nPlease review and remove or discount the affected stock.\n")
	return b.String()
}

func renderSummary(byStation map[string][]*repository.LotDetail) string {
	var b strings.Builder
	b.WriteString("Expiration scan summary:\n\n")
	for _, lots := range byStation {
		fmt.Fprintf(&b, "%s: %d lot(s)\n", lots[0].StationName, len(lots))
		for _, lot := range lots {
			fmt.Fprintf(&b, "  - %s (%s), expires %s\n",
				lot.ProductName, lot.LotCode, lot.ExpiresAt.Format("2006-01-02"))
		}
	}
	return b.String()
}
