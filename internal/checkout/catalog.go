package checkout

import (
	"github.com/shopspring/decimal"

	"kasir/internal/domain"
)

// Catalog is the read-only snapshot a checkout session works against.
// It is loaded once when the session starts; concurrent stock changes
// elsewhere are the persistence side's concern.
type Catalog struct {
	products map[string]domain.Product
	types    map[string]domain.CustomerType
	order    []string
}

func NewCatalog(products []domain.Product, types []domain.CustomerType) *Catalog {
	c := &Catalog{
		products: make(map[string]domain.Product, len(products)),
		types:    make(map[string]domain.CustomerType, len(types)),
	}
	for _, p := range products {
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	for _, t := range types {
		c.types[t.Name] = t
	}
	return c
}

func (c *Catalog) Product(id string) (domain.Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// CustomerType looks up a type by name. Unknown names yield a zero-discount
// placeholder so pricing falls back to the regular tier.
func (c *Catalog) CustomerType(name string) domain.CustomerType {
	if t, ok := c.types[name]; ok {
		return t
	}
	return domain.CustomerType{Name: name, DiscountPercentage: decimal.Zero}
}

// ResolvePrice returns the unit price of a product for a customer type name
func (c *Catalog) ResolvePrice(productID, customerType string) (decimal.Decimal, bool) {
	p, ok := c.products[productID]
	if !ok {
		return decimal.Zero, false
	}
	return p.TierPrice(customerType), true
}
