package provider

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"oneinch-agent/pkg/types"
)

const maxPageWorkers = 4

// PageFetcher loads one page of orders
type PageFetcher func(ctx context.Context, page types.PageParams) (*types.OrderPage, error)

// CollectPages reads the first page, then the remaining pages concurrently.
// At most maxPages pages are read; a zero total means only the first page exists.
func CollectPages(ctx context.Context, fetch PageFetcher, limit, maxPages int) (*types.OrderPage, error) {
	first := types.PageParams{Page: 1, Limit: limit}.WithDefaults()
	head, err := fetch(ctx, first)
	if err != nil {
		return nil, err
	}
	if head == nil {
		head = &types.OrderPage{Items: []types.Order{}, Page: first.Page, Limit: first.Limit}
	}

	pages := (head.Total + first.Limit - 1) / first.Limit
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}
	if pages <= 1 {
		return head, nil
	}

	p := pool.NewWithResults[*types.OrderPage]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(maxPageWorkers)
	for n := 2; n <= pages; n++ {
		n := n
		p.Go(func(ctx context.Context) (*types.OrderPage, error) {
			page, err := fetch(ctx, types.PageParams{Page: n, Limit: first.Limit})
			if err != nil {
				return nil, err
			}
			if page == nil {
				page = &types.OrderPage{}
			}
			page.Page = n
			return page, nil
		})
	}
	rest, err := p.Wait()
	if err != nil {
		return nil, err
	}

	sort.Slice(rest, func(i, j int) bool { return rest[i].Page < rest[j].Page })

	all := &types.OrderPage{
		Items: append([]types.Order(nil), head.Items...),
		Page:  1,
		Limit: first.Limit,
		Total: head.Total,
	}
	for _, page := range rest {
		all.Items = append(all.Items, page.Items...)
	}
	return all, nil
}

// AllActiveOrders collects up to maxPages pages of active orders
func (p *Provider) AllActiveOrders(ctx context.Context, limit, maxPages int) (*types.OrderPage, error) {
	return CollectPages(ctx, p.GetActiveOrders, limit, maxPages)
}

// AllOrdersByMaker collects up to maxPages pages of a maker's orders
func (p *Provider) AllOrdersByMaker(ctx context.Context, address string, limit, maxPages int) (*types.OrderPage, error) {
	return CollectPages(ctx, func(ctx context.Context, page types.PageParams) (*types.OrderPage, error) {
		return p.GetOrdersByMaker(ctx, address, page)
	}, limit, maxPages)
}
