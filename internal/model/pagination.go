package model

// PageQuery is the page window accepted by every list endpoint.
type PageQuery struct {
	Page    int `form:"page"`
	PerPage int `form:"per_page"`
}

// Normalize clamps the window to page >= 1 and 1 <= per_page <= 100.
func (p PageQuery) Normalize() PageQuery {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 10
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
	return p
}

// Limit returns the SQL LIMIT for a normalized window.
func (p PageQuery) Limit() int { return p.PerPage }

// Offset returns the SQL OFFSET for a normalized window.
func (p PageQuery) Offset() int { return (p.Page - 1) * p.PerPage }
