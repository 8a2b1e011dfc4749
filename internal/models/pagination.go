package models

// Pagination describes one page of a tenant-scoped listing.
// Pages are 1-indexed; Count is the total row count, Pages the total
// page count for the fixed page size.
type Pagination struct {
	Size  int `json:"size"`
	Page  int `json:"page"`
	Count int `json:"count"`
	Pages int `json:"pages"`
}

// Page is a paginated result envelope.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ClampPage normalizes a requested page number: values below 1 and
// values past the last page both resolve to page 1, never an error.
func ClampPage(page, count, size int) int {
	if page < 1 {
		return 1
	}
	if count == 0 {
		return 1
	}
	pages := (count + size - 1) / size
	if page > pages {
		return 1
	}
	return page
}

// TotalPages returns the page count for a listing (at least 1).
func TotalPages(count, size int) int {
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}
