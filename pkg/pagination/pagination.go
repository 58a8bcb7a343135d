package pagination

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 10
	// MaxSize caps how many rows any page query can request.
	MaxSize = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Normalize enforces the configured defaults and maximum size.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// Page wraps a result list with its pagination metadata.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
}

// NewPage builds the metadata envelope around a fetched slice.
func NewPage[T any](items []T, params Params, total int64) Page[T] {
	n := params.Normalize()
	pages := int((total + int64(n.Size) - 1) / int64(n.Size))
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Page:    n.Page,
		Size:    n.Size,
		Total:   total,
		Pages:   pages,
		HasNext: n.Page < pages,
	}
}
