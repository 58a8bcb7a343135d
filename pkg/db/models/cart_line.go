package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is the persisted record of a user's desired quantity for one
// product. Quantity stores intent, not purchasable stock; reconciliation
// against the catalog happens at read time.
type CartLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_lines_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_lines_user_product,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Checked   bool      `gorm:"column:checked;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
