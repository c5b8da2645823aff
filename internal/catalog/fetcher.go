// Package catalog reads products from the backend and filters them
// locally.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("product not found")

// SuggestLimit caps the search-as-you-type list.
const SuggestLimit = 5

// Source is the product listing endpoint.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Fetcher has no cache: every call reads the full listing, and
// concurrent callers share one in-flight request.
type Fetcher struct {
	src Source
	sfg singleflight.Group
	log *slog.Logger
}

func NewFetcher(src Source, log *slog.Logger) *Fetcher {
	return &Fetcher{src: src, log: log}
}

func (f *Fetcher) FetchAll(ctx context.Context) ([]domain.Product, error) {
	// the shared request outlives any single caller; the client applies
	// its own timeout
	ch := f.sfg.DoChan("products", func() (interface{}, error) {
		return f.src.ListProducts(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			f.log.WarnContext(ctx, "product fetch failed", slog.String("error", res.Err.Error()))
			return nil, res.Err
		}
		products := res.Val.([]domain.Product)
		return append([]domain.Product(nil), products...), nil
	}
}

// Search matches q against name, category and brand. An empty query
// returns nothing without calling the backend.
func (f *Fetcher) Search(ctx context.Context, q string) ([]domain.Product, error) {
	if strings.TrimSpace(q) == "" {
		return []domain.Product{}, nil
	}
	products, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, Criteria{Text: q}), nil
}

// Suggest is Search that also looks at descriptions, capped at
// SuggestLimit.
func (f *Fetcher) Suggest(ctx context.Context, q string) ([]domain.Product, error) {
	if strings.TrimSpace(q) == "" {
		return []domain.Product{}, nil
	}
	products, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return limit(Filter(products, Criteria{Text: q, WithDescription: true}), SuggestLimit), nil
}

func (f *Fetcher) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, Criteria{Category: category}), nil
}

func (f *Fetcher) Get(ctx context.Context, id string) (domain.Product, error) {
	products, err := f.FetchAll(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrNotFound
}

// Related returns up to n other products from p's category.
func (f *Fetcher) Related(ctx context.Context, p domain.Product, n int) ([]domain.Product, error) {
	if p.Category == "" {
		return []domain.Product{}, nil
	}
	products, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	related := []domain.Product{}
	for _, candidate := range products {
		if candidate.ID == p.ID || !strings.EqualFold(candidate.Category, p.Category) {
			continue
		}
		related = append(related, candidate)
	}
	return limit(related, n), nil
}

// TopRated returns the n best rated products.
func (f *Fetcher) TopRated(ctx context.Context, n int) ([]domain.Product, error) {
	products, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return limit(ByRating(products), n), nil
}
