package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	cartLines := `
CREATE TABLE IF NOT EXISTS cart_lines (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  checked INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, db.Exec(cartLines).Error)
	return db
}

func seedLine(t *testing.T, db *gorm.DB, userID, productID uuid.UUID, quantity int, checked bool, created time.Time) *models.CartLine {
	t.Helper()

	line := &models.CartLine{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Checked:   checked,
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(line).Error)
	return line
}

func TestRepositoryFindAllLinesStableOrder(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := seedLine(t, db, userID, uuid.New(), 1, true, base)
	second := seedLine(t, db, userID, uuid.New(), 2, true, base.Add(time.Minute))
	third := seedLine(t, db, userID, uuid.New(), 3, true, base.Add(2*time.Minute))
	seedLine(t, db, uuid.New(), uuid.New(), 9, true, base) // other user

	rows, err := repo.FindAllLines(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, first.ID, rows[0].ID)
	require.Equal(t, second.ID, rows[1].ID)
	require.Equal(t, third.ID, rows[2].ID)
}

func TestRepositoryFindLineAndUpdateQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	productID := uuid.New()

	seeded := seedLine(t, db, userID, productID, 7, true, time.Now().UTC())

	line, err := repo.FindLine(context.Background(), userID, productID)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, line.ID)
	require.Equal(t, 7, line.Quantity)

	_, err = repo.FindLine(context.Background(), userID, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateQuantity(context.Background(), seeded.ID, 5))

	line, err = repo.FindLine(context.Background(), userID, productID)
	require.NoError(t, err)
	require.Equal(t, 5, line.Quantity)
	require.True(t, line.Checked, "selective update must not touch the checked flag")
}

func TestRepositoryDeleteLinesScopedToUser(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	otherID := uuid.New()

	shared := uuid.New()
	keep := uuid.New()
	now := time.Now().UTC()
	seedLine(t, db, userID, shared, 1, true, now)
	seedLine(t, db, userID, keep, 2, true, now)
	seedLine(t, db, otherID, shared, 3, true, now)

	require.NoError(t, repo.DeleteLines(context.Background(), userID, []uuid.UUID{shared}))

	rows, err := repo.FindAllLines(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, keep, rows[0].ProductID)

	// other user's line with the same product survives
	rows, err = repo.FindAllLines(context.Background(), otherID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRepositorySetSelectionSingleAndAll(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	now := time.Now().UTC()
	first := seedLine(t, db, userID, uuid.New(), 1, true, now)
	seedLine(t, db, userID, uuid.New(), 2, true, now)

	require.NoError(t, repo.SetSelection(context.Background(), userID, &first.ProductID, false))

	count, err := repo.CountUnselected(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, repo.SetSelection(context.Background(), userID, nil, false))

	count, err = repo.CountUnselected(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, repo.SetSelection(context.Background(), userID, nil, true))

	count, err = repo.CountUnselected(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestRepositorySumQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	now := time.Now().UTC()
	seedLine(t, db, userID, uuid.New(), 4, true, now)
	seedLine(t, db, userID, uuid.New(), 6, false, now)
	seedLine(t, db, uuid.New(), uuid.New(), 100, true, now)

	sum, err := repo.SumQuantity(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 10, sum)

	sum, err = repo.SumQuantity(context.Background(), uuid.New())
	require.NoError(t, err)
	require.EqualValues(t, 0, sum)
}
