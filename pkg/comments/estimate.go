package comments

// PageEstimate tracks the estimated total page count for progress display.
// The reported comment count is a noisy live value, so the estimate is
// smoothed: it is raised whenever the accumulated count outgrows it and
// never lowered again.
type PageEstimate struct {
	pageSize   int
	totalItems int
	totalPages int
}

// NewPageEstimate creates an estimate for the given page size
func NewPageEstimate(pageSize int) *PageEstimate {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &PageEstimate{pageSize: pageSize, totalPages: 1}
}

// SetInitial seeds the estimate from the first page: the endpoint's reported
// total when present, otherwise the number of items actually fetched.
func (e *PageEstimate) SetInitial(reportedCount, fetchedCount int) {
	basis := reportedCount
	if basis <= 0 {
		basis = fetchedCount
	}
	e.totalItems = basis
	e.totalPages = pagesFor(basis, e.pageSize)
}

// Observe feeds the running accumulated item count into the estimate. The
// estimate grows when the accumulation passes the current basis; it never
// shrinks. Returns true when the page total changed.
func (e *PageEstimate) Observe(accumulated int) bool {
	if accumulated <= e.totalItems {
		return false
	}
	e.totalItems = accumulated
	if pages := pagesFor(accumulated, e.pageSize); pages > e.totalPages {
		e.totalPages = pages
		return true
	}
	return false
}

// Pages returns the current estimated total page count, at least one
func (e *PageEstimate) Pages() int {
	return e.totalPages
}

// Items returns the current estimate basis
func (e *PageEstimate) Items() int {
	return e.totalItems
}

// pagesFor is a ceiling division with a floor of one page
func pagesFor(items, pageSize int) int {
	pages := (items + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}
