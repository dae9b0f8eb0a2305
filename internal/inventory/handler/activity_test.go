package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/domain"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/handler"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/service"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/testutil"
)

const lockTimeout = 5 * time.Second

func newActivityRouter(t *testing.T) (http.Handler, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewWithDB(mockDB.DB, log)

	activityRepo := repository.NewActivityRepository(db)
	engine := service.NewEngine(db, repository.NewLotRepository(db), activityRepo, nil, lockTimeout, log)
	h := handler.NewActivityHandler(engine, activityRepo, log)

	r := chi.NewRouter()
	r.Post("/api/v1/lots/{id}/activities", h.Apply)
	r.Get("/api/v1/lots/{id}/activities", h.ListByLot)
	return r, mockDB
}

func lotColumns() []string {
	return []string{
		"id", "lot_code", "product_id", "station_id", "quantity",
		"status", "received_at", "expires_at", "created_at", "updated_at",
	}
}

func lotRow(id string, quantity int, status domain.Status) *sqlmock.Rows {
	now := time.Now()
	return testutil.MockRows(lotColumns()...).AddRow(
		id, "LOT-0001", "11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222", quantity,
		string(status), now, now.AddDate(0, 3, 0), now, now,
	)
}

func TestApply_Success(t *testing.T) {
	r, mockDB := newActivityRouter(t)
	defer mockDB.Close()

	lotID := "33333333-3333-3333-3333-333333333333"

	mockDB.ExpectBegin()
	mockDB.ExpectLockTimeout(lockTimeout)
	mockDB.ExpectQuery("SELECT * FROM lots WHERE id = $1 FOR UPDATE").
		WithArgs(lotID).
		WillReturnRows(lotRow(lotID, 10, domain.StatusInStock))
	mockDB.ExpectExec("UPDATE lots SET quantity = $2, status = $3, updated_at = NOW() WHERE id = $1").
		WithArgs(lotID, 7, domain.StatusInStock).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("INSERT INTO activities").
		WithArgs(testutil.AnyUUID{}, lotID, domain.ActionSold, 3, 7, nil, nil).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectCommit()

	req := testutil.NewHTTPRequest("POST", "/api/v1/lots/"+lotID+"/activities", map[string]interface{}{
		"action":   "sold",
		"quantity": 3,
	})
	rr := testutil.ExecuteRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)

	var resp httputil.Response
	testutil.ParseJSONBody(t, rr, &resp)
	assert.True(t, resp.Success)
	mockDB.ExpectationsWereMet(t)
}

func TestApply_InsufficientStockCarriesCurrentQuantity(t *testing.T) {
	r, mockDB := newActivityRouter(t)
	defer mockDB.Close()

	lotID := "33333333-3333-3333-3333-333333333333"

	mockDB.ExpectBegin()
	mockDB.ExpectLockTimeout(lockTimeout)
	mockDB.ExpectQuery("SELECT * FROM lots WHERE id = $1 FOR UPDATE").
		WithArgs(lotID).
		WillReturnRows(lotRow(lotID, 2, domain.StatusInStock))
	mockDB.ExpectRollback()

	req := testutil.NewHTTPRequest("POST", "/api/v1/lots/"+lotID+"/activities", map[string]interface{}{
		"action":   "sold",
		"quantity": 5,
	})
	rr := testutil.ExecuteRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	var resp httputil.Response
	testutil.ParseJSONBody(t, rr, &resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
	assert.Equal(t, "2", resp.Error.Details["current_quantity"])
	mockDB.ExpectationsWereMet(t)
}

func TestApply_LockContentionReturnsConflict(t *testing.T) {
	r, mockDB := newActivityRouter(t)
	defer mockDB.Close()

	lotID := "33333333-3333-3333-3333-333333333333"

	mockDB.ExpectBegin()
	mockDB.ExpectLockTimeout(lockTimeout)
	mockDB.ExpectQuery("SELECT * FROM lots WHERE id = $1 FOR UPDATE").
		WithArgs(lotID).
		WillReturnError(&pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mockDB.ExpectRollback()

	req := testutil.NewHTTPRequest("POST", "/api/v1/lots/"+lotID+"/activities", map[string]interface{}{
		"action":   "removed_manual",
		"quantity": 1,
	})
	rr := testutil.ExecuteRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusConflict)

	var resp httputil.Response
	testutil.ParseJSONBody(t, rr, &resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TRANSACTION_CONFLICT", resp.Error.Code)
	mockDB.ExpectationsWereMet(t)
}

func TestApply_UnknownLotReturnsNotFound(t *testing.T) {
	r, mockDB := newActivityRouter(t)
	defer mockDB.Close()

	lotID := "99999999-9999-9999-9999-999999999999"

	mockDB.ExpectBegin()
	mockDB.ExpectLockTimeout(lockTimeout)
	mockDB.ExpectQuery("SELECT * FROM lots WHERE id = $1 FOR UPDATE").
		WithArgs(lotID).
		WillReturnRows(testutil.MockRows(lotColumns()...))
	mockDB.ExpectRollback()

	req := testutil.NewHTTPRequest("POST", "/api/v1/lots/"+lotID+"/activities", map[string]interface{}{
		"action":   "sold",
		"quantity": 1,
	})
	rr := testutil.ExecuteRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)

	var resp httputil.Response
	testutil.ParseJSONBody(t, rr, &resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	mockDB.ExpectationsWereMet(t)
}

func TestApply_RejectsInvalidPayload(t *testing.T) {
	r, mockDB := newActivityRouter(t)
	defer mockDB.Close()

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"unknown action", map[string]interface{}{"action": "stolen", "quantity": 1}},
		{"zero quantity", map[string]interface{}{"action": "sold", "quantity": 0}},
		{"negative quantity", map[string]interface{}{"action": "sold", "quantity": -4}},
		{"missing action", map[string]interface{}{"quantity": 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewHTTPRequest("POST", "/api/v1/lots/33333333-3333-3333-3333-333333333333/activities", tc.body)
			rr := testutil.ExecuteRequest(r, req)

			testutil.AssertStatus(t, rr, http.StatusBadRequest)

			var resp httputil.Response
			testutil.ParseJSONBody(t, rr, &resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		})
	}

	// None of them may reach the database.
	mockDB.ExpectationsWereMet(t)
}

func TestListByLot(t *testing.T) {
	r, mockDB := newActivityRouter(t)
	defer mockDB.Close()

	lotID := "33333333-3333-3333-3333-333333333333"
	now := time.Now()

	mockDB.ExpectQuery("SELECT * FROM activities").
		WithArgs(lotID, 100).
		WillReturnRows(testutil.MockRows(
			"id", "lot_id", "action", "quantity", "quantity_after", "performed_by", "note", "created_at",
		).AddRow("a1", lotID, "sold", 3, 7, nil, nil, now).
			AddRow("a2", lotID, "restock", 10, 10, nil, nil, now.Add(-time.Hour)))

	req := testutil.NewHTTPRequest("GET", "/api/v1/lots/"+lotID+"/activities", nil)
	rr := testutil.ExecuteRequest(r, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp struct {
		Success bool                   `json:"success"`
		Data    []*repository.Activity `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, domain.ActionSold, resp.Data[0].Action)
	assert.Equal(t, 7, resp.Data[0].QuantityAfter)
	mockDB.ExpectationsWereMet(t)
}
