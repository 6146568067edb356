package repository

// Page selects a slice of a list. Page numbers start at 1; the zero value
// means "everything".
type Page struct {
	Page  int
	Limit int
}

// Enabled reports whether both page and limit were supplied.
func (p Page) Enabled() bool {
	return p.Limit > 0 && p.Page != 0
}

// Offset returns the row offset of the page.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// clause renders the LIMIT/OFFSET suffix and its arguments.
func (p Page) clause() (string, []any) {
	if !p.Enabled() {
		return "", nil
	}
	return " LIMIT ? OFFSET ?", []any{p.Limit, p.Offset()}
}
