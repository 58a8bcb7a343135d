package shipping

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/pagination"
)

func setupShippingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	addresses := `
CREATE TABLE IF NOT EXISTS shipping_addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  receiver_name TEXT NOT NULL,
  phone TEXT,
  mobile TEXT NOT NULL,
  province TEXT NOT NULL,
  city TEXT NOT NULL,
  district TEXT,
  address TEXT NOT NULL,
  zip TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(addresses).Error)
	return db
}

func seedAddress(t *testing.T, db *gorm.DB, userID uuid.UUID, city string, createdAt time.Time) *models.ShippingAddress {
	t.Helper()

	address := &models.ShippingAddress{
		ID:           uuid.New(),
		UserID:       userID,
		ReceiverName: "Ines Dekker",
		Mobile:       "+31 6 5550 0100",
		Province:     "Zuid-Holland",
		City:         city,
		Address:      "Wijnhaven 12",
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

func TestRepositoryFindScopedByOwner(t *testing.T) {
	db := setupShippingTestDB(t)
	repo := NewRepository(db)
	owner := uuid.New()
	other := uuid.New()

	address := seedAddress(t, db, owner, "Rotterdam", time.Now())

	found, err := repo.FindByID(context.Background(), owner, address.ID)
	require.NoError(t, err)
	require.Equal(t, "Rotterdam", found.City)

	_, err = repo.FindByID(context.Background(), other, address.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListNewestFirstWithPaging(t *testing.T) {
	db := setupShippingTestDB(t)
	repo := NewRepository(db)
	owner := uuid.New()
	other := uuid.New()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		seedAddress(t, db, owner, fmt.Sprintf("City %02d", i), base.Add(time.Duration(i)*time.Minute))
	}
	seedAddress(t, db, other, "Foreign", base)

	rows, total, err := repo.List(context.Background(), owner, pagination.Params{Page: 1, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 12, total)
	require.Len(t, rows, 10)
	require.Equal(t, "City 11", rows[0].City)

	second, total, err := repo.List(context.Background(), owner, pagination.Params{Page: 2, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 12, total)
	require.Len(t, second, 2)
	require.Equal(t, "City 00", second[1].City)
}

func TestRepositoryUpdateAndDeleteRequireOwnership(t *testing.T) {
	db := setupShippingTestDB(t)
	repo := NewRepository(db)
	owner := uuid.New()
	other := uuid.New()

	address := seedAddress(t, db, owner, "Rotterdam", time.Now())

	foreign := *address
	foreign.UserID = other
	foreign.City = "Hijacked"
	require.ErrorIs(t, repo.Update(context.Background(), &foreign), gorm.ErrRecordNotFound)

	address.City = "Delft"
	require.NoError(t, repo.Update(context.Background(), address))
	reloaded, err := repo.FindByID(context.Background(), owner, address.ID)
	require.NoError(t, err)
	require.Equal(t, "Delft", reloaded.City)

	require.ErrorIs(t, repo.Delete(context.Background(), other, address.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(context.Background(), owner, address.ID))
	_, err = repo.FindByID(context.Background(), owner, address.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
