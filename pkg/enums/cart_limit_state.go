package enums

// CartLimitState reports whether a cart line's desired quantity fit within
// the catalog's current stock when the line was last reconciled.
type CartLimitState string

const (
	CartLimitWithinStock  CartLimitState = "within_stock"
	CartLimitExceedsStock CartLimitState = "exceeds_stock"
)

// String implements fmt.Stringer.
func (s CartLimitState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CartLimitState.
func (s CartLimitState) IsValid() bool {
	return s == CartLimitWithinStock || s == CartLimitExceedsStock
}
