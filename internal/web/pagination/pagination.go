// Package pagination holds the page arithmetic shared by all listing pages.
package pagination

// Page normalizes a requested page number. Pages below 1 are page 1.
func Page(requested int) int {
	if requested < 1 {
		return 1
	}

	return requested
}

// Offset returns the number of items before page.
func Offset(page, limit int) int {
	return (Page(page) - 1) * limit
}

// TotalPages returns ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}

	return int((total + int64(limit) - 1) / int64(limit))
}

// Pager describes one page of a listing for the templates.
type Pager struct {
	Page       int
	TotalPages int
	Total      int64
	// Param is the query parameter carrying the page number, e.g. "page" or "user_page".
	Param string
}

// New returns the pager of page for total items.
func New(page int, total int64, limit int, param string) Pager {
	return Pager{
		Page:       Page(page),
		TotalPages: TotalPages(total, limit),
		Total:      total,
		Param:      param,
	}
}

// HasPrev reports whether there is a page before this one.
func (p Pager) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether there is a page after this one.
func (p Pager) HasNext() bool {
	return p.Page < p.TotalPages
}

// Prev is the previous page number.
func (p Pager) Prev() int {
	return p.Page - 1
}

// Next is the next page number.
func (p Pager) Next() int {
	return p.Page + 1
}
