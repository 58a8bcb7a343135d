package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
)

func setupCategoriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  parent_id TEXT,
  name TEXT NOT NULL,
  status INTEGER NOT NULL DEFAULT 1,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(categories).Error)
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string, parentID *uuid.UUID, sortOrder int) *models.Category {
	t.Helper()

	category := &models.Category{
		ID:        uuid.New(),
		ParentID:  parentID,
		Name:      name,
		Status:    true,
		SortOrder: sortOrder,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func TestRepositoryFindChildrenOrdering(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)

	root := seedCategory(t, db, "Electronics Root", nil, 0)
	second := seedCategory(t, db, "Phones", &root.ID, 2)
	first := seedCategory(t, db, "Audio", &root.ID, 1)

	rows, err := repo.FindChildren(context.Background(), &root.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, first.ID, rows[0].ID)
	require.Equal(t, second.ID, rows[1].ID)
}

func TestRepositoryChildIDsAndUpdateName(t *testing.T) {
	db := setupCategoriesTestDB(t)
	repo := NewRepository(db)

	root := seedCategory(t, db, "Garden Root", nil, 0)
	child := seedCategory(t, db, "Tools", &root.ID, 0)

	ids, err := repo.ChildIDs(context.Background(), root.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{child.ID}, ids)

	require.NoError(t, repo.UpdateName(context.Background(), child.ID, "Hand Tools"))

	renamed, err := repo.FindByID(context.Background(), child.ID)
	require.NoError(t, err)
	require.Equal(t, "Hand Tools", renamed.Name)
}
