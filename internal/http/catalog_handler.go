package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	relatedLimit  = 4
	topRatedLimit = 8
)

type Catalog interface {
	FetchAll(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, q string) ([]domain.Product, error)
	Suggest(ctx context.Context, q string) ([]domain.Product, error)
	ByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Related(ctx context.Context, p domain.Product, n int) ([]domain.Product, error)
	TopRated(ctx context.Context, n int) ([]domain.Product, error)
}

type CatalogHandler struct {
	handler
	catalog Catalog
}

func NewCatalogHandler(c Catalog, h handler) *CatalogHandler {
	return &CatalogHandler{handler: h, catalog: c}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type ProductPageResponse struct {
	Product         domain.Product   `json:"product"`
	DiscountPercent int              `json:"discountPercent"`
	InStock         bool             `json:"inStock"`
	Related         []domain.Product `json:"related"`
}

type HomeResponse struct {
	Products []domain.Product `json:"products"`
	TopRated []domain.Product `json:"topRated"`
}

// GET /api/products
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	products, err := h.catalog.FetchAll(ctx)
	if err != nil {
		h.fetchFailed(w, r, "products", err)
		return
	}
	top, err := h.catalog.TopRated(ctx, topRatedLimit)
	if err != nil {
		h.fetchFailed(w, r, "products", err)
		return
	}
	h.respondJSON(w, http.StatusOK, HomeResponse{Products: products, TopRated: top})
}

// GET /api/products/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	p, err := h.catalog.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		h.fetchFailed(w, r, "products", err)
		return
	}

	related, err := h.catalog.Related(ctx, p, relatedLimit)
	if err != nil {
		related = []domain.Product{}
	}
	h.respondJSON(w, http.StatusOK, ProductPageResponse{
		Product:         p,
		DiscountPercent: p.DiscountPercent(),
		InStock:         p.InStock(),
		Related:         related,
	})
}

// GET /api/categories/{category}
func (h *CatalogHandler) Category(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	products, err := h.catalog.ByCategory(ctx, chi.URLParam(r, "category"))
	if err != nil {
		h.fetchFailed(w, r, "products", err)
		return
	}
	h.respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// GET /api/search?q=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	products, err := h.catalog.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.fetchFailed(w, r, "products", err)
		return
	}
	h.respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// GET /api/search/suggest?q=
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	products, err := h.catalog.Suggest(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.fetchFailed(w, r, "products", err)
		return
	}
	h.respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}
