package controller

import "sync"

// DefaultPageSize matches the usage table's fixed page size.
const DefaultPageSize = 20

// Pager is page-based pagination state with clamped navigation.
type Pager struct {
	mu       sync.Mutex
	pageSize int
	total    int
	page     int
}

// NewPager creates a pager. A non-positive size falls back to
// DefaultPageSize.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize}
}

// SetTotal records the total row count and re-clamps the current page.
func (p *Pager) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total < 0 {
		total = 0
	}
	p.total = total
	p.page = p.clamp(p.page)
}

// TotalPages returns ceil(total / pageSize).
func (p *Pager) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPages()
}

// Page returns the current zero-based page index.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// SetPage moves to page n, clamped to [0, TotalPages-1]. Requests past
// either bound land on the nearest valid page.
func (p *Pager) SetPage(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = p.clamp(n)
}

// Next advances one page; a no-op on the last page.
func (p *Pager) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = p.clamp(p.page + 1)
}

// Prev goes back one page; a no-op on the first page.
func (p *Pager) Prev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = p.clamp(p.page - 1)
}

// Limit returns the page size for the backend query.
func (p *Pager) Limit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageSize
}

// Offset returns the row offset of the current page.
func (p *Pager) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page * p.pageSize
}

func (p *Pager) totalPages() int {
	return (p.total + p.pageSize - 1) / p.pageSize
}

func (p *Pager) clamp(n int) int {
	last := p.totalPages() - 1
	if last < 0 {
		last = 0
	}
	if n > last {
		n = last
	}
	if n < 0 {
		n = 0
	}
	return n
}
