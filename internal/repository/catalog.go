package repository

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jcmexdev/bakeryspot/internal/domain/catalog"
)

// Catalog is an in-memory product store implementing the lookup collaborator
// for order creation.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]catalog.Product)}
}

// Save persists a product, assigning an ID on first persistence.
func (r *Catalog) Save(p *catalog.Product) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.products[p.ID] = *p
	out := r.products[p.ID]
	return &out, nil
}

// LookupProduct returns the product or a *NotFoundError.
func (r *Catalog) LookupProduct(id string) (*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, &NotFoundError{Entity: "product", ID: id}
	}
	out := p
	return &out, nil
}

// SeedBakery loads the fixture products used by local development and tests.
func (r *Catalog) SeedBakery() map[string]catalog.Product {
	fixtures := []catalog.Product{
		{Name: "Butter Croissant", Price: 3.5, Active: true},
		{Name: "Sourdough Loaf", Price: 6.25, Active: true},
		{Name: "Chocolate Eclair", Price: 4.0, Active: true},
		{Name: "Cinnamon Roll", Price: 3.75, Active: true},
		{Name: "Seasonal Fruit Tart", Price: 5.5, Active: false},
	}
	out := make(map[string]catalog.Product, len(fixtures))
	for i := range fixtures {
		saved, _ := r.Save(&fixtures[i])
		out[saved.Name] = *saved
	}
	return out
}
