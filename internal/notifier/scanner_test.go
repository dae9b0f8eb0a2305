package notifier_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directoryrepo "github.com/fuelstock/fuelstock-backend/internal/directory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/notifier"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/testutil"
)

// fakeMailer records sent mail and can be told to fail
type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

func (m *fakeMailer) Send(to []string, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

const (
	stationID = "22222222-2222-2222-2222-222222222222"
	adminAddr = "admin@fuelstock.example"
)

func newTestScanner(t *testing.T, mailer notifier.Mailer) (*notifier.Scanner, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewWithDB(mockDB.DB, log)

	scanner := notifier.NewScanner(
		repository.NewLotRepository(db),
		repository.NewNotificationRepository(db),
		directoryrepo.NewUserRepository(db),
		mailer,
		nil,
		adminAddr,
		log,
	)
	return scanner, mockDB
}

func expiringLotColumns() []string {
	return []string{
		"id", "lot_code", "product_id", "station_id", "quantity",
		"status", "received_at", "expires_at", "created_at", "updated_at",
		"product_name", "category_name", "station_name",
	}
}

func expiringLotRow(rows *sqlmock.Rows, id, lotCode, productName string, quantity, daysOut int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, lotCode, "11111111-1111-1111-1111-111111111111", stationID,
		quantity, "in_stock", now, now.AddDate(0, 0, daysOut), now, now,
		productName, "Lubricants", "Station North",
	)
}

func expectStatusSweep(mockDB *testutil.MockDB, expired, expiring int64) {
	mockDB.ExpectExec("UPDATE lots SET status = 'expired'").
		WillReturnResult(sqlmock.NewResult(0, expired))
	mockDB.ExpectExec("UPDATE lots SET status = 'expiring_soon'").
		WillReturnResult(sqlmock.NewResult(0, expiring))
}

func TestScan_FlagsLotsAndEmailsManagers(t *testing.T) {
	mailer := &fakeMailer{}
	scanner, mockDB := newTestScanner(t, mailer)
	defer mockDB.Close()

	rows := expiringLotColumns()
	lotRows := testutil.MockRows(rows...)
	expiringLotRow(lotRows, "lot-1", "LOT-0001", "5W-30 Motor Oil", 12, 3)
	expiringLotRow(lotRows, "lot-2", "LOT-0002", "Coolant", 4, 5)

	mockDB.ExpectQuery("SELECT l.*, p.name AS product_name").
		WillReturnRows(lotRows)

	for _, lotID := range []string{"lot-1", "lot-2"} {
		mockDB.ExpectQuery("INSERT INTO notifications").
			WithArgs(testutil.AnyUUID{}, lotID, "expiring_soon", "sent").
			WillReturnRows(testutil.MockRows("notified_on", "created_at").AddRow(time.Now(), time.Now()))
	}

	mockDB.ExpectQuery("SELECT id, email, name, role, station_id FROM users").
		WithArgs(stationID).
		WillReturnRows(testutil.MockRows("id", "email", "name", "role", "station_id").
			AddRow("u1", "manager@fuelstock.example", "Pat Manager", "manager", stationID))

	expectStatusSweep(mockDB, 1, 2)

	result, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Flagged)
	assert.Equal(t, 2, result.Notified)
	assert.Equal(t, 2, result.EmailsSent, "one manager digest plus the admin summary")
	assert.Equal(t, int64(3), result.StatusesChanged)

	require.Len(t, mailer.sent, 2)
	digest := mailer.sent[0]
	assert.Equal(t, []string{"manager@fuelstock.example"}, digest.to)
	assert.Contains(t, digest.subject, "Station North")
	assert.Contains(t, digest.body, "5W-30 Motor Oil")
	assert.Contains(t, digest.body, "LOT-0002")

	summary := mailer.sent[1]
	assert.Equal(t, []string{adminAddr}, summary.to)
	assert.Contains(t, summary.subject, "2 lot(s) flagged")

	mockDB.ExpectationsWereMet(t)
}

func TestScan_SkipsLotsAlreadyFlagged(t *testing.T) {
	mailer := &fakeMailer{}
	scanner, mockDB := newTestScanner(t, mailer)
	defer mockDB.Close()

	lotRows := testutil.MockRows(expiringLotColumns()...)
	expiringLotRow(lotRows, "lot-1", "LOT-0001", "5W-30 Motor Oil", 12, 3)

	mockDB.ExpectQuery("SELECT l.*, p.name AS product_name").
		WillReturnRows(lotRows)

	// ON CONFLICT DO NOTHING returns no row: a parallel run got there first.
	mockDB.ExpectQuery("INSERT INTO notifications").
		WithArgs(testutil.AnyUUID{}, "lot-1", "expiring_soon", "sent").
		WillReturnRows(testutil.MockRows("notified_on", "created_at"))

	expectStatusSweep(mockDB, 0, 0)

	result, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Flagged)
	assert.Equal(t, 0, result.EmailsSent)
	assert.Empty(t, mailer.sent)
	mockDB.ExpectationsWereMet(t)
}

func TestScan_MailFailureMarksNotificationsFailed(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp: connection refused")}
	scanner, mockDB := newTestScanner(t, mailer)
	defer mockDB.Close()

	lotRows := testutil.MockRows(expiringLotColumns()...)
	expiringLotRow(lotRows, "lot-1", "LOT-0001", "5W-30 Motor Oil", 12, 3)

	mockDB.ExpectQuery("SELECT l.*, p.name AS product_name").
		WillReturnRows(lotRows)

	mockDB.ExpectQuery("INSERT INTO notifications").
		WithArgs(testutil.AnyUUID{}, "lot-1", "expiring_soon", "sent").
		WillReturnRows(testutil.MockRows("notified_on", "created_at").AddRow(time.Now(), time.Now()))

	mockDB.ExpectQuery("SELECT id, email, name, role, station_id FROM users").
		WithArgs(stationID).
		WillReturnRows(testutil.MockRows("id", "email", "name", "role", "station_id").
			AddRow("u1", "manager@fuelstock.example", "Pat Manager", "manager", stationID))

	mockDB.ExpectExec("UPDATE notifications SET status = 'failed'").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectStatusSweep(mockDB, 0, 1)

	result, err := scanner.Scan(context.Background())
	require.NoError(t, err, "email failures must not abort the scan")

	assert.Equal(t, 1, result.Flagged)
	assert.Equal(t, 0, result.Notified)
	assert.Equal(t, 0, result.EmailsSent)
	mockDB.ExpectationsWereMet(t)
}

func TestScan_StationWithoutManagerIsLoggedNotFatal(t *testing.T) {
	mailer := &fakeMailer{}
	scanner, mockDB := newTestScanner(t, mailer)
	defer mockDB.Close()

	lotRows := testutil.MockRows(expiringLotColumns()...)
	expiringLotRow(lotRows, "lot-1", "LOT-0001", "5W-30 Motor Oil", 12, 3)

	mockDB.ExpectQuery("SELECT l.*, p.name AS product_name").
		WillReturnRows(lotRows)

	mockDB.ExpectQuery("INSERT INTO notifications").
		WithArgs(testutil.AnyUUID{}, "lot-1", "expiring_soon", "sent").
		WillReturnRows(testutil.MockRows("notified_on", "created_at").AddRow(time.Now(), time.Now()))

	mockDB.ExpectQuery("SELECT id, email, name, role, station_id FROM users").
		WithArgs(stationID).
		WillReturnRows(testutil.MockRows("id", "email", "name", "role", "station_id"))

	expectStatusSweep(mockDB, 0, 1)

	result, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Flagged)
	assert.Equal(t, 0, result.Notified)
	// Only the admin summary goes out.
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{adminAddr}, mailer.sent[0].to)
	mockDB.ExpectationsWereMet(t)
}

func TestCheckExpirations_RejectsBadTokens(t *testing.T) {
	log := logger.New("test", "test")

	t.Run("disabled without configured token", func(t *testing.T) {
		h := notifier.NewHandler(nil, "", log)
		req := testutil.NewHTTPRequest("POST", "/api/v1/notifications/check-expirations", nil)
		rr := testutil.ExecuteRequest(http.HandlerFunc(h.CheckExpirations), req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("wrong token", func(t *testing.T) {
		h := notifier.NewHandler(nil, "secret-token", log)
		req := testutil.NewHTTPRequest("POST", "/api/v1/notifications/check-expirations", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rr := testutil.ExecuteRequest(http.HandlerFunc(h.CheckExpirations), req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)

		var resp httputil.Response
		testutil.ParseJSONBody(t, rr, &resp)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	})

	t.Run("missing bearer prefix", func(t *testing.T) {
		h := notifier.NewHandler(nil, "secret-token", log)
		req := testutil.NewHTTPRequest("POST", "/api/v1/notifications/check-expirations", nil)
		req.Header.Set("Authorization", "secret-token")
		rr := testutil.ExecuteRequest(http.HandlerFunc(h.CheckExpirations), req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestCheckExpirations_RunsScanWithValidToken(t *testing.T) {
	mailer := &fakeMailer{}
	scanner, mockDB := newTestScanner(t, mailer)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT l.*, p.name AS product_name").
		WillReturnRows(testutil.MockRows(expiringLotColumns()...))
	expectStatusSweep(mockDB, 0, 0)

	h := notifier.NewHandler(scanner, "secret-token", logger.New("test", "test"))
	req := testutil.NewHTTPRequest("POST", "/api/v1/notifications/check-expirations", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rr := testutil.ExecuteRequest(http.HandlerFunc(h.CheckExpirations), req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Success bool                 `json:"success"`
		Data    *notifier.ScanResult `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 0, resp.Data.Flagged)
	mockDB.ExpectationsWereMet(t)
}
