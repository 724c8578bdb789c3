package models

// PaginationInfo represents pagination information for templates.
// Pages are zero-based, matching the backend's page query parameter.
type PaginationInfo struct {
	CurrentPage int
	PageSize    int
	TotalCount  int
	TotalPages  int
	HasNext     bool
	HasPrev     bool
	NextPage    int
	PrevPage    int
}

// PageLink is one numbered entry of the pagination bar
type PageLink struct {
	Page   int // zero-based index sent back to the server
	Label  int // one-based number shown to the user
	Active bool
}

// pageWindow is how many pages are shown on either side of the current one
const pageWindow = 2

// NewPaginationInfo creates pagination info. totalPages below 1 is treated as 1
// and page is clamped into range.
func NewPaginationInfo(page, pageSize, totalCount, totalPages int) *PaginationInfo {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	return &PaginationInfo{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNext:     page < totalPages-1,
		HasPrev:     page > 0,
		NextPage:    page + 1,
		PrevPage:    page - 1,
	}
}

// Visible reports whether a pagination bar should be rendered at all
func (p *PaginationInfo) Visible() bool {
	return p != nil && p.TotalPages > 1
}

// Links returns the numbered window around the current page
func (p *PaginationInfo) Links() []PageLink {
	if !p.Visible() {
		return nil
	}
	start := max(0, p.CurrentPage-pageWindow)
	end := min(p.TotalPages-1, p.CurrentPage+pageWindow)
	links := make([]PageLink, 0, end-start+1)
	for i := start; i <= end; i++ {
		links = append(links, PageLink{Page: i, Label: i + 1, Active: i == p.CurrentPage})
	}
	return links
}
