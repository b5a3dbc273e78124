package diary

// Page tracks the list view's position: a 1-based page number, the page
// size, and whether a further page exists. HasNext is supplied by whoever
// fetched the current page -- the service sets it from a limit+1
// look-ahead, but a plain count==limit heuristic satisfies the contract
// too (it can be wrong exactly at the boundary).
type Page struct {
	Current int  `json:"current"`
	Limit   int  `json:"limit"`
	HasNext bool `json:"hasNext"`
}

// NewPage clamps the inputs into a valid page: page numbers below 1 become
// 1 and non-positive limits fall back to the given default.
func NewPage(current, limit, defaultLimit int) Page {
	if current < 1 {
		current = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return Page{Current: current, Limit: limit}
}

// Offset returns the row offset for the current page.
func (p Page) Offset() int {
	return (p.Current - 1) * p.Limit
}

// Previous returns the preceding page and true, or the page unchanged and
// false when already at page 1. Never underflows below 1.
func (p Page) Previous() (Page, bool) {
	if p.Current <= 1 {
		return p, false
	}
	p.Current--
	return p, true
}

// Next returns the following page and true, or the page unchanged and
// false when HasNext is not set.
func (p Page) Next() (Page, bool) {
	if !p.HasNext {
		return p, false
	}
	p.Current++
	return p, true
}
