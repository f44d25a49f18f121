package models

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 10000
)

// ListQuery holds the pagination, sorting and search parameters shared by list endpoints
type ListQuery struct {
	Page   int    `query:"page" json:"page" validate:"max=10000"`
	Limit  int    `query:"limit" json:"limit"`
	Sort   string `query:"sort"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
	Search string `query:"search"`
}

// Normalize applies defaults, clamps page to [1, MaxPage] and limit to [1, MaxLimit]
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort == "" {
		q.Sort = "createdAt"
	}
	if q.Order != "asc" {
		q.Order = "desc"
	}
}

// Offset returns the row offset of the requested page
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ListResult is the paginated envelope returned by list endpoints
type ListResult[T any] struct {
	Items       []T `json:"items"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// NewListResult builds a ListResult, never returning a nil Items slice
func NewListResult[T any](items []T, total int, q ListQuery) ListResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return ListResult[T]{
		Items:       items,
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: q.Page,
		Limit:       q.Limit,
	}
}
