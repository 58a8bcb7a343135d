package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/harborgoods/storefront-backend/pkg/enums"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID uuid.UUID           `gorm:"column:category_id;type:uuid;not null"`
	Name       string              `gorm:"column:name;not null"`
	Subtitle   *string             `gorm:"column:subtitle"`
	MainImage  *string             `gorm:"column:main_image"`
	SubImages  pq.StringArray      `gorm:"column:sub_images;type:text[];default:ARRAY[]::text[]"`
	Detail     *string             `gorm:"column:detail"`
	Price      decimal.Decimal     `gorm:"column:price;type:numeric(20,2);not null"`
	Stock      int                 `gorm:"column:stock;not null"`
	Status     enums.ProductStatus `gorm:"column:status;not null;default:'on_sale'"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
