package entity

import (
	"github.com/sangkips/investify-pos/internal/domain/enum"
)

// Product is a catalog product, resolved once from the backend payload
type Product struct {
	ID         string           `json:"id"`
	Code       string           `json:"code,omitempty"`
	Name       string           `json:"name"`
	CategoryID string           `json:"category_id,omitempty"`
	Price      float64          `json:"price"`
	TaxID      string           `json:"taxid"`
	TaxRate    float64          `json:"tax_rate"`
	Stock      float64          `json:"stock"`
	Kind       enum.ProductKind `json:"kind"`
	IsScale    bool             `json:"is_scale"`
}

// Category is a catalog category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is the product catalog for one stock location
type Catalog struct {
	LocationID string     `json:"location_id"`
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// KitComponent is one concrete product inside a kit. Components sharing a
// GroupID are alternatives; a component without a group is always included.
type KitComponent struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	GroupID     string  `json:"group_id,omitempty"`
	GroupName   string  `json:"group_name,omitempty"`
}

// IsFixed reports whether the component is always part of the kit
func (c KitComponent) IsFixed() bool {
	return c.GroupID == ""
}

// KitGroup is a set of mutually exclusive kit components
type KitGroup struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Options []KitComponent `json:"options"`
}

// Option returns the group member for productID
func (g KitGroup) Option(productID string) (KitComponent, bool) {
	for _, opt := range g.Options {
		if opt.ProductID == productID {
			return opt, true
		}
	}
	return KitComponent{}, false
}

// SplitKitComponents separates fixed components from alternative groups.
// Groups keep the order in which they first appear.
func SplitKitComponents(components []KitComponent) ([]KitComponent, []KitGroup) {
	var fixed []KitComponent
	var groups []KitGroup
	index := make(map[string]int)

	for _, c := range components {
		if c.IsFixed() {
			fixed = append(fixed, c)
			continue
		}
		i, ok := index[c.GroupID]
		if !ok {
			name := c.GroupName
			if name == "" {
				name = c.GroupID
			}
			groups = append(groups, KitGroup{ID: c.GroupID, Name: name})
			i = len(groups) - 1
			index[c.GroupID] = i
		}
		groups[i].Options = append(groups[i].Options, c)
	}
	return fixed, groups
}

// StockCheck is the backend verdict on a compound or kit stock validation
type StockCheck struct {
	HasStock bool     `json:"hasStock"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
}

// DiscountOffer is a discount the backend grants for a product and customer.
// Percentage offers carry Quantity as 0..100.
type DiscountOffer struct {
	Quantity   float64 `json:"quantity"`
	Percentage bool    `json:"percentage"`
}

// Currency is a backend currency with its exchange rate
type Currency struct {
	Code         string  `json:"code"`
	ExchangeRate float64 `json:"exchange_rate"`
	IsBase       bool    `json:"is_base"`
}
