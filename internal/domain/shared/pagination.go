package shared

// Page holds pagination parameters for list requests
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// DefaultPage returns the default pagination window
func DefaultPage() Page {
	return Page{Number: 1, Size: 20}
}

// Normalize clamps pagination parameters to sane bounds
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 20
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

// PageMeta describes a paginated result set as returned by the platform API
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}
