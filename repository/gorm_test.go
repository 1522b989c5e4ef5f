package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Govind-619/Clomora/config"
	"github.com/Govind-619/Clomora/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormStoreTestSuite runs against a real postgres when TEST_DATABASE_URL is set.
type GormStoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *Store
}

func TestGormStoreSuite(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, &GormStoreTestSuite{})
}

func (s *GormStoreTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(os.Getenv("TEST_DATABASE_URL")), &gorm.Config{})
	require.NoError(s.T(), err)
	require.NoError(s.T(), config.Migrate(db))
	s.db = db
	s.store = NewGormStore(db)
}

func (s *GormStoreTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM addresses")
	s.db.Exec("DELETE FROM orders")
}

func (s *GormStoreTestSuite) TearDownSuite() {
	_ = s.store.Close(context.Background())
}

func (s *GormStoreTestSuite) TestAddressDefaultSwitch() {
	ctx := context.Background()
	repo := s.store.Addresses
	now := time.Now().UTC()

	s.Require().NoError(repo.Create(ctx, &models.Address{ID: "a1", UserID: "u1", FullName: "A", IsDefault: true, CreatedAt: now}))
	s.Require().NoError(repo.Create(ctx, &models.Address{ID: "a2", UserID: "u1", FullName: "B", CreatedAt: now.Add(time.Second)}))

	s.Require().NoError(repo.ClearDefaults(ctx, "u1"))
	s.Require().NoError(repo.SetDefault(ctx, "u1", "a2"))

	list, err := repo.ListByUser(ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("a2", list[0].ID)
	s.True(list[0].IsDefault)
	s.False(list[1].IsDefault)

	s.NoError(repo.Delete(ctx, "u1", "missing"))
}

func (s *GormStoreTestSuite) TestOrderRoundTripAndStatus() {
	ctx := context.Background()
	repo := s.store.Orders
	o := testOrder("ord-1", "u1", time.Now().UTC().Truncate(time.Millisecond))
	s.Require().NoError(repo.Create(ctx, o))

	got, err := repo.Get(ctx, "ord-1")
	s.Require().NoError(err)
	s.True(got.Total.Equal(o.Total))
	s.Equal(o.ShippingAddress, got.ShippingAddress)
	s.Len(got.Items, 1)

	now := time.Now().UTC()
	updated, err := repo.UpdateStatus(ctx, "ord-1", StatusUpdate{Status: models.OrderStatusDelivered, UpdatedAt: now, DeliveredAt: &now})
	s.Require().NoError(err)
	s.Equal(models.OrderStatusDelivered, updated.Status)
	s.NotNil(updated.DeliveredAt)

	found, err := repo.List(ctx, OrderFilter{Search: "asha"})
	s.Require().NoError(err)
	s.Len(found, 1)

	_, err = repo.Get(ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}
