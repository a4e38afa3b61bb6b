// Package catalog holds the product catalog types consumed by order creation.
package catalog

// Product is a sellable catalog entry. Inactive products remain visible to
// staff but cannot be ordered.
type Product struct {
	ID     string
	Name   string
	Price  float64
	Active bool
}
