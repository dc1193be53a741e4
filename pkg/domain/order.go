package domain

// OrderItem is one line of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderRecord is an immutable catalog entry, loaded once at startup and
// read-only for the life of the process.
type OrderRecord struct {
	OrderID     string      `json:"order_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
}

// LedgerEntry is the durable record of one completed adjudication.
// Entries are append-only and never rewritten.
type LedgerEntry struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Email     string `json:"email,omitempty"`
}
