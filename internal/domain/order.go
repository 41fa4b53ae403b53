package domain

import (
	"strconv"
	"time"
)

// OrderStatus of a submitted order as recorded in the store. The client
// only ever writes OrderStatusPending; the rest of the lifecycle belongs
// to the fulfilment side.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderLine is one cart line captured for persistence, with the unit
// price as it was when the item was added.
type OrderLine struct {
	ItemID    string  `json:"item_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderSubmission is the finalized, write-once snapshot built at the
// moment of submission and handed to the store. It is not retained
// client-side after the write.
type OrderSubmission struct {
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	DeliveryAddress string      `json:"delivery_address"`
	Total           float64     `json:"total_amount"`
	Status          OrderStatus `json:"status"`
	Lines           []OrderLine `json:"lines"`
	CapturedAt      time.Time   `json:"captured_at"`
}

// FormatAmount renders a currency amount for display with two decimals.
// Rounding happens here and only here; sums are carried at full float64
// precision.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
