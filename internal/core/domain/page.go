package domain

// DefaultPageSize is the number of items on a catalog page.
const DefaultPageSize = 12

type Page[T any] struct {
	Items      []T
	Current    int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// TotalPages returns ceil(count/pageSize); zero items give zero pages.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate slices items for the 1-indexed currentPage. Pages outside the
// available range yield no items.
func Paginate[T any](items []T, pageSize, currentPage int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(items), pageSize)
	p := Page[T]{
		Items:      []T{},
		Current:    currentPage,
		TotalPages: total,
		HasNext:    currentPage < total,
		HasPrev:    currentPage > 1,
	}
	if currentPage < 1 {
		return p
	}

	start := (currentPage - 1) * pageSize
	if start >= len(items) {
		return p
	}
	end := min(start+pageSize, len(items))
	p.Items = items[start:end:end]
	return p
}

// Pager tracks the current page of a collection whose size may change.
// It does not observe the collection: callers report size changes with
// Resize and criteria changes with Reset.
type Pager struct {
	size    int
	current int
	count   int
}

func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{size: pageSize, current: 1}
}

func (p *Pager) PageSize() int { return p.size }

func (p *Pager) Current() int { return p.current }

func (p *Pager) TotalPages() int { return TotalPages(p.count, p.size) }

// SetPage moves to n, clamped to [1, max(1, TotalPages)].
func (p *Pager) SetPage(n int) {
	p.current = max(1, min(n, max(1, p.TotalPages())))
}

// Resize records a new collection size and re-clamps the current page.
func (p *Pager) Resize(count int) {
	p.count = max(0, count)
	p.SetPage(p.current)
}

func (p *Pager) Reset() {
	p.current = 1
}
