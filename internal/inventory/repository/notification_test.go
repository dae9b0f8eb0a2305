package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/testutil"
)

func newNotificationRepo(t *testing.T) (*repository.NotificationRepository, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := database.NewWithDB(mockDB.DB, logger.New("test", "test"))
	return repository.NewNotificationRepository(db), mockDB
}

func TestNotificationCreate_FirstFlag(t *testing.T) {
	repo, mockDB := newNotificationRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO notifications").
		WithArgs(testutil.AnyUUID{}, "lot-1", "expiring_soon", "sent").
		WillReturnRows(testutil.MockRows("notified_on", "created_at").
			AddRow(time.Now(), time.Now()))

	n := &repository.Notification{LotID: "lot-1"}
	created, err := repo.Create(context.Background(), n)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "expiring_soon", n.Kind)
	assert.Equal(t, "sent", n.Status)
	assert.False(t, n.NotifiedOn.IsZero())
	mockDB.ExpectationsWereMet(t)
}

func TestNotificationCreate_AlreadyFlaggedLotIsANoOp(t *testing.T) {
	repo, mockDB := newNotificationRepo(t)
	defer mockDB.Close()

	// ON CONFLICT DO NOTHING yields no RETURNING row
	mockDB.ExpectQuery("INSERT INTO notifications").
		WithArgs(testutil.AnyUUID{}, "lot-1", "expiring_soon", "sent").
		WillReturnRows(testutil.MockRows("notified_on", "created_at"))

	created, err := repo.Create(context.Background(), &repository.Notification{LotID: "lot-1"})

	require.NoError(t, err, "a duplicate flag is not an error")
	assert.False(t, created)
	mockDB.ExpectationsWereMet(t)
}

func TestNotificationMarkFailed(t *testing.T) {
	repo, mockDB := newNotificationRepo(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE notifications SET status = 'failed'").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.MarkFailed(context.Background(), []string{"lot-1", "lot-2"})

	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestNotificationMarkFailed_EmptyInputSkipsTheDatabase(t *testing.T) {
	repo, mockDB := newNotificationRepo(t)
	defer mockDB.Close()

	require.NoError(t, repo.MarkFailed(context.Background(), nil))
	mockDB.ExpectationsWereMet(t)
}
