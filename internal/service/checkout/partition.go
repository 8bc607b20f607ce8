package checkout

import (
	"sort"

	"marketplace-backend/internal/domain"
)

// partition splits order items into per-vendor groups. Items are classified
// by their resolved product type: anything not digital or service ships
// physically, so shipping is never silently skipped. A missing vendor
// profile degrades to an empty origin address, which pushes the rate
// aggregator onto fallback pricing instead of failing the quote.
func partition(items []domain.OrderItem, vendors map[string]domain.Vendor) []domain.VendorGroup {
	byVendor := make(map[string]*domain.VendorGroup)
	for _, it := range items {
		g, ok := byVendor[it.VendorID]
		if !ok {
			g = &domain.VendorGroup{VendorID: it.VendorID}
			if v, found := vendors[it.VendorID]; found {
				g.VendorName = v.Name
				g.Origin = v.Origin
				g.SupportsPickup = v.SupportsPickup
			}
			byVendor[it.VendorID] = g
		}
		g.Items = append(g.Items, it)
		if it.Shippable() {
			g.HasPhysicalItems = true
			g.PhysicalWeight += it.WeightGrams * it.Quantity
		}
	}

	groups := make([]domain.VendorGroup, 0, len(byVendor))
	for _, g := range byVendor {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].VendorID < groups[j].VendorID })
	return groups
}
