package service

import (
	"sync"

	"github.com/niksmo/game-storefront/internal/core/domain"
	"github.com/niksmo/game-storefront/internal/core/port"
)

var _ port.CatalogBrowser = (*Browser)(nil)

// Browser holds the filter criteria and current page of the catalog view.
// The filtered list is recomputed only when the catalog generation or the
// criteria change.
type Browser struct {
	mu       sync.Mutex
	criteria domain.Criteria
	pager    *domain.Pager

	memoGen      uint64
	memoCriteria domain.Criteria
	memo         []domain.Game
	memoValid    bool
	recomputes   int
}

func NewBrowser(pageSize int) *Browser {
	return &Browser{pager: domain.NewPager(pageSize)}
}

// SetCriteria replaces the criteria. A change resets the view to page 1.
func (b *Browser) SetCriteria(c domain.Criteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setCriteria(c)
}

func (b *Browser) setCriteria(c domain.Criteria) {
	if c == b.criteria {
		return
	}
	b.criteria = c
	b.pager.Reset()
}

func (b *Browser) Criteria() domain.Criteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.criteria
}

// Browse applies c, then moves to page and returns it. A page outside the
// range yields an empty page; the stored position is clamped for the next
// read. A page below 1 keeps the current position.
func (b *Browser) Browse(
	snap domain.CatalogSnapshot, c domain.Criteria, page int,
) domain.Page[domain.Game] {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setCriteria(c)
	items := b.filtered(snap)
	b.pager.Resize(len(items))

	if page < 1 {
		page = b.pager.Current()
	}
	p := domain.Paginate(items, b.pager.PageSize(), page)
	b.pager.SetPage(page)
	return p
}

// Current returns the page at the stored position.
func (b *Browser) Current(snap domain.CatalogSnapshot) domain.Page[domain.Game] {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.filtered(snap)
	b.pager.Resize(len(items))
	return domain.Paginate(items, b.pager.PageSize(), b.pager.Current())
}

func (b *Browser) filtered(snap domain.CatalogSnapshot) []domain.Game {
	if b.memoValid && b.memoGen == snap.Generation && b.memoCriteria == b.criteria {
		return b.memo
	}
	if b.memoValid && b.memoGen != snap.Generation {
		b.pager.Reset()
	}
	b.memo = domain.ApplyCriteria(snap.Games, b.criteria)
	b.memoGen = snap.Generation
	b.memoCriteria = b.criteria
	b.memoValid = true
	b.recomputes++
	return b.memo
}
