package cart

import (
	"github.com/shopspring/decimal"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/enums"
)

// reconcileLine merges one persisted cart line with its catalog snapshot.
// A nil snapshot means the product no longer resolves in the catalog: the
// line renders zeroed but is not mutated (a vanished product is not an
// explicit removal).
//
// The returned bool signals that the persisted quantity exceeded stock and
// must be lowered to match; the caller owns dispatching that write-back so
// its failure cannot abort the read.
func reconcileLine(line models.CartLine, snapshot *models.Product) (ReconciledLine, bool) {
	out := ReconciledLine{
		LineID:     line.ID,
		UserID:     line.UserID,
		ProductID:  line.ProductID,
		Selected:   line.Checked,
		LimitState: enums.CartLimitWithinStock,
		UnitPrice:  decimal.Zero,
		LineTotal:  decimal.Zero,
	}

	if snapshot == nil {
		return out, false
	}

	out.Name = snapshot.Name
	out.Subtitle = snapshot.Subtitle
	out.MainImage = snapshot.MainImage
	out.UnitPrice = snapshot.Price
	out.Stock = snapshot.Stock

	quantity := line.Quantity
	correct := false
	if quantity > snapshot.Stock {
		quantity = snapshot.Stock
		out.LimitState = enums.CartLimitExceedsStock
		correct = true
	}

	out.Quantity = quantity
	out.LineTotal = snapshot.Price.Mul(decimal.NewFromInt(int64(quantity)))
	return out, correct
}
