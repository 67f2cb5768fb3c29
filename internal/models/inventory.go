package models

type InventoryItem struct {
	ID          ID     `json:"id"`
	PartNumber  string `json:"part_number"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	InStock     int    `json:"in_stock"`
	MinRequired int    `json:"min_required"`
	OnOrder     int    `json:"on_order"`
	LastUpdated string `json:"last_updated"`
}

// LowStock reports whether stock has fallen below the required minimum.
func (i InventoryItem) LowStock() bool {
	return i.InStock < i.MinRequired
}

// FilterLowStock returns the low-stock subset of items in their original order.
func FilterLowStock(items []InventoryItem) []InventoryItem {
	out := make([]InventoryItem, 0)
	for _, item := range items {
		if item.LowStock() {
			out = append(out, item)
		}
	}
	return out
}
