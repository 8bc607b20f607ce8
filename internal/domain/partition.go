package domain

// VendorGroup is the subset of a cart belonging to one vendor, produced by
// the vendor partitioner and consumed by the rate aggregator and the
// shipment saga.
type VendorGroup struct {
	VendorID         string      `json:"vendorId"`
	VendorName       string      `json:"vendorName"`
	Origin           Address     `json:"origin"`
	SupportsPickup   bool        `json:"supportsPickup"`
	Items            []OrderItem `json:"items"`
	PhysicalWeight   int         `json:"physicalWeightGrams"`
	HasPhysicalItems bool        `json:"hasPhysicalItems"`
}

// PhysicalItems returns the shippable subset of the group's items.
func (g VendorGroup) PhysicalItems() []OrderItem {
	var out []OrderItem
	for _, it := range g.Items {
		if it.Shippable() {
			out = append(out, it)
		}
	}
	return out
}
