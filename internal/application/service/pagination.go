package service

// DefaultPageLimit is the page size used when the caller gives none
const DefaultPageLimit = 5

// PageRequest is a normalised page/limit pair
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest normalises page and limit; values below 1 fall back to the defaults
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Skip returns the number of records preceding the page
func (p PageRequest) Skip() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit); zero records yield zero pages
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
