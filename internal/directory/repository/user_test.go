package repository_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelstock/fuelstock-backend/internal/directory/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/errors"
	"github.com/fuelstock/fuelstock-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}
	defer testutil.TerminateContainer(ctx)

	os.Exit(m.Run())
}

// seedStation inserts a station and returns its ID
func seedStation(t *testing.T, ctx context.Context) string {
	t.Helper()

	station := suite.Fixtures.Station()
	_, err := suite.RawDB.ExecContext(ctx,
		`INSERT INTO stations (id, name, address) VALUES ($1, $2, $3)`,
		station.ID, station.Name, station.Address)
	require.NoError(t, err)

	return station.ID
}

func TestUserSet_CreatesAndUpdates(t *testing.T) {
	testutil.SkipIfShort(t)
	ctx := context.Background()
	suite.TruncateAll(t, ctx)

	stationID := seedStation(t, ctx)
	userRepo := repository.NewUserRepository(suite.DB)

	fixture := suite.Fixtures.User(testutil.WithRole("operator"), testutil.WithUserStation(stationID))
	user := &repository.User{
		ID:        fixture.ID,
		Email:     fixture.Email,
		Name:      fixture.Name,
		Role:      fixture.Role,
		StationID: fixture.StationID,
	}
	require.NoError(t, userRepo.Set(ctx, user))

	got, err := userRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, "operator", got.Role)
	require.NotNil(t, got.StationID)
	assert.Equal(t, stationID, *got.StationID)

	// A second Set with the same ID is an update, not a duplicate. This is
	// how user.updated events land.
	user.Role = "manager"
	user.Name = "Promoted User"
	require.NoError(t, userRepo.Set(ctx, user))

	got, err = userRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "manager", got.Role)
	assert.Equal(t, "Promoted User", got.Name)

	users, err := userRepo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserSet_ClearsStationAssignment(t *testing.T) {
	testutil.SkipIfShort(t)
	ctx := context.Background()
	suite.TruncateAll(t, ctx)

	stationID := seedStation(t, ctx)
	userRepo := repository.NewUserRepository(suite.DB)

	fixture := suite.Fixtures.Manager(stationID)
	user := &repository.User{
		ID:        fixture.ID,
		Email:     fixture.Email,
		Name:      fixture.Name,
		Role:      fixture.Role,
		StationID: fixture.StationID,
	}
	require.NoError(t, userRepo.Set(ctx, user))

	user.StationID = nil
	require.NoError(t, userRepo.Set(ctx, user))

	got, err := userRepo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StationID)
}

func TestUserDelete_IsIdempotent(t *testing.T) {
	testutil.SkipIfShort(t)
	ctx := context.Background()
	suite.TruncateAll(t, ctx)

	userRepo := repository.NewUserRepository(suite.DB)

	fixture := suite.Fixtures.User()
	user := &repository.User{
		ID:    fixture.ID,
		Email: fixture.Email,
		Name:  fixture.Name,
		Role:  fixture.Role,
	}
	require.NoError(t, userRepo.Set(ctx, user))

	require.NoError(t, userRepo.Delete(ctx, user.ID))

	_, err := userRepo.Get(ctx, user.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// Replayed delete events must not fail
	require.NoError(t, userRepo.Delete(ctx, user.ID))
}

func TestManagersByStation_RoutesOnlyAssignedManagers(t *testing.T) {
	testutil.SkipIfShort(t)
	ctx := context.Background()
	suite.TruncateAll(t, ctx)

	stationA := seedStation(t, ctx)
	stationB := seedStation(t, ctx)
	userRepo := repository.NewUserRepository(suite.DB)

	seed := []testutil.UserFixture{
		suite.Fixtures.Manager(stationA),
		suite.Fixtures.Manager(stationA),
		suite.Fixtures.Manager(stationB),
		suite.Fixtures.User(testutil.WithRole("operator"), testutil.WithUserStation(stationA)),
		suite.Fixtures.User(testutil.WithRole("admin")),
	}
	for _, f := range seed {
		require.NoError(t, userRepo.Set(ctx, &repository.User{
			ID:        f.ID,
			Email:     f.Email,
			Name:      f.Name,
			Role:      f.Role,
			StationID: f.StationID,
		}))
	}

	managers, err := userRepo.ManagersByStation(ctx, stationA)
	require.NoError(t, err)
	require.Len(t, managers, 2)
	for _, m := range managers {
		assert.Equal(t, "manager", m.Role)
		require.NotNil(t, m.StationID)
		assert.Equal(t, stationA, *m.StationID)
	}

	admins, err := userRepo.Admins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].Role)
}

func TestUserList_StationScope(t *testing.T) {
	testutil.SkipIfShort(t)
	ctx := context.Background()
	suite.TruncateAll(t, ctx)

	stationA := seedStation(t, ctx)
	stationB := seedStation(t, ctx)
	userRepo := repository.NewUserRepository(suite.DB)

	for _, f := range []testutil.UserFixture{
		suite.Fixtures.User(testutil.WithUserStation(stationA)),
		suite.Fixtures.User(testutil.WithUserStation(stationB)),
		suite.Fixtures.User(),
	} {
		require.NoError(t, userRepo.Set(ctx, &repository.User{
			ID:        f.ID,
			Email:     f.Email,
			Name:      f.Name,
			Role:      f.Role,
			StationID: f.StationID,
		}))
	}

	all, err := userRepo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := userRepo.List(ctx, stationA)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.NotNil(t, scoped[0].StationID)
	assert.Equal(t, stationA, *scoped[0].StationID)
}
