package shipping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/pagination"
)

// Repository provides persistence helpers for shipping addresses.
// Every query carries the owning user id so rows owned by other
// users stay unreachable.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository bound to the provided gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new address row.
func (r *Repository) Create(ctx context.Context, address *models.ShippingAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// FindByID loads an address owned by the user.
func (r *Repository) FindByID(ctx context.Context, userID, addressID uuid.UUID) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, addressID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// List returns one page of the user's addresses plus the total row count.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ShippingAddress, int64, error) {
	params = params.Normalize()

	base := r.db.WithContext(ctx).
		Model(&models.ShippingAddress{}).
		Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ShippingAddress
	err := base.
		Order("created_at DESC, id DESC").
		Offset(params.Offset()).
		Limit(params.Size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update rewrites the mutable fields of an address owned by the user.
func (r *Repository) Update(ctx context.Context, address *models.ShippingAddress) error {
	result := r.db.WithContext(ctx).
		Model(&models.ShippingAddress{}).
		Where("user_id = ? AND id = ?", address.UserID, address.ID).
		Updates(map[string]any{
			"receiver_name": address.ReceiverName,
			"phone":         address.Phone,
			"mobile":        address.Mobile,
			"province":      address.Province,
			"city":          address.City,
			"district":      address.District,
			"address":       address.Address,
			"zip":           address.Zip,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an address owned by the user.
func (r *Repository) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, addressID).
		Delete(&models.ShippingAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
