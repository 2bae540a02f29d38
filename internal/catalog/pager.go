package catalog

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/fitcatalog/exercisedb-mcp/internal/exercisedb"
)

const (
	defaultPageSize  = 100
	defaultPageDelay = 100 * time.Millisecond
)

// pager walks the remote catalog one page at a time. Fetches are strictly
// sequential; a token-bucket limiter enforces the inter-page delay so a full
// refresh never bursts against the remote API. A pager is single-use: it is
// not restartable once exhausted or failed.
type pager struct {
	fetcher    exercisedb.PageFetcher
	pageSize   int
	limiter    *rate.Limiter
	page       int
	totalPages int
}

func newPager(fetcher exercisedb.PageFetcher, pageSize int, delay time.Duration) *pager {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &pager{
		fetcher:  fetcher,
		pageSize: pageSize,
		limiter:  rate.NewLimiter(limit, 1),
		page:     1,
		// Assume a single page until page 1 reports the real total.
		totalPages: 1,
	}
}

// next returns the next page of the listing, or nil once the sequence is
// exhausted. The first call fetches page 1 and learns the total page count
// from its response.
func (p *pager) next(ctx context.Context) (*exercisedb.Page, error) {
	if p.page > p.totalPages {
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	page, err := p.fetcher.FetchPage(ctx, p.page, p.pageSize)
	if err != nil {
		return nil, err
	}

	if p.page == 1 && page.TotalPages > 0 {
		p.totalPages = page.TotalPages
	}
	p.page++

	return page, nil
}
