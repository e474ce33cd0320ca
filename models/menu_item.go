package models

// MenuItem is a row of the menu table. The API calls its ID an order ID.
type MenuItem struct {
	ID    int64  `json:"order_id"`
	Item  string `json:"item"`
	Price int    `json:"price"`
}
