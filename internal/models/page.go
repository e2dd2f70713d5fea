package models

// PageSize is the fixed number of results per page on every list endpoint.
const PageSize = 10

// PageRequest is a 1-based page number.
type PageRequest struct {
	Page int
}

// NewPageRequest validates a page number.
func NewPageRequest(page int) (PageRequest, error) {
	if page < 1 {
		return PageRequest{}, NewValidationError("page must be a positive integer")
	}
	return PageRequest{Page: page}, nil
}

func (p PageRequest) Limit() int { return PageSize }

func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * PageSize
}

// Result is one page of entities plus the total count across all pages.
type Result[T any] struct {
	Items []T
	Total int64
	Page  PageRequest
}

// HasNext reports whether a page follows this one.
func (r Result[T]) HasNext() bool {
	return int64(r.Page.Offset()+len(r.Items)) < r.Total
}

// HasPrevious reports whether a page precedes this one.
func (r Result[T]) HasPrevious() bool {
	return r.Page.Page > 1
}

// PageLinks are absolute URLs of the neighbouring pages, or null.
type PageLinks struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Page is the JSON envelope of every paginated response.
type Page[T any] struct {
	Links   PageLinks `json:"links"`
	Count   int64     `json:"count"`
	Results []T       `json:"results"`
}
