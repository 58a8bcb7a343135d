package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/enums"
	"github.com/harborgoods/storefront-backend/pkg/pagination"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// PortalQuery filters the public product listing.
type PortalQuery struct {
	Keyword     string
	CategoryIDs []uuid.UUID
	SortByPrice string // "asc", "desc" or empty
	Params      pagination.Params
}

// ListPortal returns on-sale products matching the query plus the total count.
func (r *Repository) ListPortal(ctx context.Context, query PortalQuery) ([]models.Product, int64, error) {
	params := query.Params.Normalize()

	tx := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("status = ?", enums.ProductStatusOnSale)

	if keyword := strings.TrimSpace(query.Keyword); keyword != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}
	if len(query.CategoryIDs) > 0 {
		tx = tx.Where("category_id IN ?", query.CategoryIDs)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch query.SortByPrice {
	case "asc":
		tx = tx.Order("price ASC")
	case "desc":
		tx = tx.Order("price DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var rows []models.Product
	if err := tx.Offset(params.Offset()).Limit(params.Size).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
