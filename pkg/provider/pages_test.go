package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneinch-agent/pkg/types"
)

// fakePages serves total orders split into pages of the requested size
func fakePages(total int, failOn int) (PageFetcher, *[]int) {
	var mu sync.Mutex
	var requested []int
	return func(ctx context.Context, page types.PageParams) (*types.OrderPage, error) {
		mu.Lock()
		requested = append(requested, page.Page)
		mu.Unlock()

		if page.Page == failOn {
			return nil, errors.New("service unavailable")
		}
		out := &types.OrderPage{Page: page.Page, Limit: page.Limit, Total: total}
		for i := (page.Page - 1) * page.Limit; i < total && i < page.Page*page.Limit; i++ {
			out.Items = append(out.Items, types.Order{OrderHash: fmt.Sprintf("0x%04d", i)})
		}
		return out, nil
	}, &requested
}

func TestCollectPages(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		limit     int
		maxPages  int
		wantItems int
		wantCalls int
	}{
		{name: "single page", total: 3, limit: 10, wantItems: 3, wantCalls: 1},
		{name: "unknown total", total: 0, limit: 10, wantItems: 0, wantCalls: 1},
		{name: "all pages", total: 25, limit: 10, wantItems: 25, wantCalls: 3},
		{name: "capped", total: 95, limit: 10, maxPages: 4, wantItems: 40, wantCalls: 4},
		{name: "default limit", total: 15, limit: 0, wantItems: 15, wantCalls: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fetch, requested := fakePages(tc.total, -1)

			got, err := CollectPages(context.Background(), fetch, tc.limit, tc.maxPages)
			require.NoError(t, err)
			assert.Len(t, got.Items, tc.wantItems)
			assert.Len(t, *requested, tc.wantCalls)
			assert.Equal(t, 1, got.Page)

			// items stay in page order
			for i, order := range got.Items {
				assert.Equal(t, fmt.Sprintf("0x%04d", i), order.OrderHash)
			}
		})
	}
}

func TestCollectPagesFailure(t *testing.T) {
	fetch, _ := fakePages(50, 3)
	_, err := CollectPages(context.Background(), fetch, 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service unavailable")

	fetch, _ = fakePages(50, 1)
	_, err = CollectPages(context.Background(), fetch, 10, 0)
	require.Error(t, err)
}

func TestCollectPagesNilPages(t *testing.T) {
	got, err := CollectPages(context.Background(), func(ctx context.Context, page types.PageParams) (*types.OrderPage, error) {
		return nil, nil
	}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, 1, got.Page)

	got, err = CollectPages(context.Background(), func(ctx context.Context, page types.PageParams) (*types.OrderPage, error) {
		if page.Page == 1 {
			return &types.OrderPage{Items: []types.Order{{OrderHash: "0x01"}}, Page: 1, Limit: page.Limit, Total: 30}, nil
		}
		return nil, nil
	}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}
