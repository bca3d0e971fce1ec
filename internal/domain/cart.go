package domain

import "time"

// Cart holds the line items for one client session. ID is empty until the cart is persisted.
// UpdatedAt orders writes to the same session and is not part of the API body.
type Cart struct {
	ID        string     `json:"id,omitempty"`
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"-"`
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

const DefaultQuantity = 1

// EmptyCart is the cart reported for a session that has never been written.
func EmptyCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
	}
}
