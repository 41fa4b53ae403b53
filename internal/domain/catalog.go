package domain

// Vendor is a sellable-from entity owning a catalog of items. Vendors are
// read-only snapshots sourced wholesale from the store.
type Vendor struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
	Rating       float64 `json:"rating"`
	DeliveryTime string  `json:"delivery_time"`
}

// CatalogItem is a single purchasable product belonging to one vendor.
type CatalogItem struct {
	ID          string  `json:"id"`
	VendorID    string  `json:"vendor_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
}
