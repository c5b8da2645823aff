package catalog

import (
	"sort"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Criteria narrows a product list. Empty fields match everything.
// Matching is case-insensitive substring matching.
type Criteria struct {
	Category string
	// Text is matched against name, category and brand.
	Text string
	// WithDescription also matches Text against the description.
	WithDescription bool
}

func Filter(products []domain.Product, c Criteria) []domain.Product {
	category := strings.ToLower(strings.TrimSpace(c.Category))
	text := strings.ToLower(strings.TrimSpace(c.Text))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !contains(p.Category, category) {
			continue
		}
		if text != "" && !matchesText(p, text, c.WithDescription) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesText(p domain.Product, text string, withDescription bool) bool {
	if contains(p.Name, text) || contains(p.Category, text) || contains(p.Brand, text) {
		return true
	}
	return withDescription && contains(p.Description, text)
}

// contains expects needle already lowercased.
func contains(haystack, needle string) bool {
	return haystack != "" && strings.Contains(strings.ToLower(haystack), needle)
}

// ByRating orders products best rated first, keeping the input order
// between equal ratings.
func ByRating(products []domain.Product) []domain.Product {
	out := append([]domain.Product(nil), products...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

func limit(products []domain.Product, n int) []domain.Product {
	if n >= 0 && len(products) > n {
		return products[:n]
	}
	return products
}
