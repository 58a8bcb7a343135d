package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindLine loads the single line for a (user, product) pair.
func (r *Repository) FindLine(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindAllLines returns every line for the user in stable insertion order.
func (r *Repository) FindAllLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var rows []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert creates a new cart line.
func (r *Repository) Insert(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateQuantity selectively updates a single line's persisted quantity.
func (r *Repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

// DeleteLines removes the user's lines for the given products in one batch.
func (r *Repository) DeleteLines(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&models.CartLine{}).Error
}

// SetSelection flips the checked flag for one product, or for every line
// the user owns when productID is nil.
func (r *Repository) SetSelection(ctx context.Context, userID uuid.UUID, productID *uuid.UUID, checked bool) error {
	tx := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("user_id = ?", userID)
	if productID != nil {
		tx = tx.Where("product_id = ?", *productID)
	}
	return tx.Update("checked", checked).Error
}

// CountUnselected returns how many of the user's lines are unchecked.
func (r *Repository) CountUnselected(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("user_id = ? AND checked = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantity returns the total desired quantity across the user's lines.
func (r *Repository) SumQuantity(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
