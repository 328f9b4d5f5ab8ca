package store

// Page bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ListOptions selects a window of an ordered listing.
type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps the options into valid bounds.
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Page is one window of results plus the size of the whole set.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// NewPage builds a page, deriving HasMore from the window position.
func NewPage[T any](items []T, total int, opts ListOptions) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		HasMore: opts.Offset+len(items) < total,
	}
}
