// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain"
)

// DateLayout is the format of date-only query parameters.
const DateLayout = "2006-01-02"

// Response is the envelope of every successful response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// --- Pagination ---

// ListQuery holds search, sort and paging parameters of catalog listings.
type ListQuery struct {
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a domain list filter for shopID.
func (q *ListQuery) ToFilter(shopID id.ID) domain.ListFilter {
	f := domain.DefaultListFilter(shopID)
	f.Search = q.Search
	if q.Sort != "" {
		f.OrderBy = q.Sort
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset
	return f
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult converts a domain list result.
func FromListResult[T any](r domain.ListResult[T]) ListResponse[T] {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, TotalCount: r.TotalCount, Limit: r.Limit, Offset: r.Offset}
}

// --- Common parsing ---

// ParseDate parses an optional date-only value.
func ParseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return &t, nil
}

// ParseEndOfDay parses an optional inclusive upper date bound and moves it
// to the last instant of that day.
func ParseEndOfDay(field, value string) (*time.Time, error) {
	t, err := ParseDate(field, value)
	if t == nil || err != nil {
		return t, err
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end, nil
}

// ParseOptionalID parses an optional id field.
func ParseOptionalID(field, value string) (*id.ID, error) {
	v, err := id.ParseOptional(value)
	if err != nil {
		return nil, apperror.NewValidation("invalid id").WithDetail("field", field)
	}
	return v, nil
}

// orNow returns t, or the current time when t is nil.
func orNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
