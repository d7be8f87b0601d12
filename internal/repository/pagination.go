package repository

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type PageRequest struct {
	Page  int
	Limit int
}

// PageResult mirrors the list-endpoint response contract:
// {data, page, total, limit}. Total is the unfiltered collection count
// even when a country filter is active (see DESIGN.md).
type PageResult[T any] struct {
	Data  []T   `json:"data"`
	Page  int   `json:"page"`
	Total int64 `json:"total"`
	Limit int   `json:"limit"`
}

func normalizePageRequest(in PageRequest) PageRequest {
	page := in.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := in.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}
