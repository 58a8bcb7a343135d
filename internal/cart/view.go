package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborgoods/storefront-backend/pkg/enums"
)

// ReconciledLine is the per-line result of merging a persisted cart line
// with its live catalog snapshot. Computed fresh on every read, never
// persisted.
type ReconciledLine struct {
	LineID    uuid.UUID `json:"line_id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`

	// Quantity is the purchasable quantity: min(desired, stock) when the
	// product exists, 0 when it no longer resolves in the catalog.
	Quantity   int                  `json:"quantity"`
	LimitState enums.CartLimitState `json:"limit_state"`
	Selected   bool                 `json:"selected"`

	Name      string          `json:"name"`
	Subtitle  *string         `json:"subtitle,omitempty"`
	MainImage *string         `json:"main_image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartView is the reconciled cart returned by every read and mutation.
type CartView struct {
	Lines       []ReconciledLine `json:"lines"`
	CartTotal   decimal.Decimal  `json:"cart_total"`
	AllSelected bool             `json:"all_selected"`
	ImageHost   string           `json:"image_host"`
}
