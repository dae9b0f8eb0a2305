package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/service"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/testutil"
)

func newTestInventoryService(t *testing.T) (*service.InventoryService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.NewWithDB(mockDB.DB, log)

	svc := service.NewInventoryService(
		repository.NewLotRepository(db),
		repository.NewActivityRepository(db),
		repository.NewNotificationRepository(db),
		nil,
		log,
	)
	return svc, mockDB
}

func TestReceiveLot_RejectsNonPositiveQuantity(t *testing.T) {
	svc, mockDB := newTestInventoryService(t)
	defer mockDB.Close()

	// A receipt without stock has no reason to exist. Empty lots only come
	// out of the mutation engine draining a real one.
	for _, quantity := range []int{0, -5} {
		_, err := svc.ReceiveLot(context.Background(), service.ReceiveLotInput{
			LotCode:   "LOT-0001",
			ProductID: "11111111-1111-1111-1111-111111111111",
			StationID: "22222222-2222-2222-2222-222222222222",
			Quantity:  quantity,
			ExpiresAt: time.Now().AddDate(0, 3, 0),
		})
		require.Error(t, err, "quantity %d must be rejected", quantity)
		assert.True(t, errors.Is(err, errors.ErrValidation))

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Details, "quantity")
	}

	// Nothing reached the database.
	mockDB.ExpectationsWereMet(t)
}

func TestReceiveLot_RequiresExpiryDate(t *testing.T) {
	svc, mockDB := newTestInventoryService(t)
	defer mockDB.Close()

	_, err := svc.ReceiveLot(context.Background(), service.ReceiveLotInput{
		LotCode:   "LOT-0001",
		ProductID: "11111111-1111-1111-1111-111111111111",
		StationID: "22222222-2222-2222-2222-222222222222",
		Quantity:  10,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Details, "expires_at")
	mockDB.ExpectationsWereMet(t)
}
