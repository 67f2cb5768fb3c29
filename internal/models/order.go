package models

type Order struct {
	ID               ID     `json:"id"`
	OrderNumber      string `json:"order_number"`
	PartNumber       string `json:"part_number"`
	PartName         string `json:"part_name"`
	Quantity         int    `json:"quantity"`
	Status           string `json:"status"` // Pending, Processing, Completed, Cancelled
	OrderDate        string `json:"order_date"`
	ExpectedDelivery string `json:"expected_delivery"`
	Supplier         string `json:"supplier"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderCompleted  OrderStatus = "Completed"
	OrderCancelled  OrderStatus = "Cancelled"
)

// IsBackorder reports whether the order is still waiting on the supplier.
func (o Order) IsBackorder() bool {
	return o.Status == string(OrderPending)
}

// CountBackorders returns how many orders are still pending.
func CountBackorders(orders []Order) int {
	n := 0
	for _, o := range orders {
		if o.IsBackorder() {
			n++
		}
	}
	return n
}
