// Package catalog provides the read-only order lookup, loaded once at
// startup from a JSON file and immutable for the life of the process.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// ordersFile mirrors the on-disk layout: {"orders": {"XRD12345": {...}}}.
type ordersFile struct {
	Orders map[string]domain.OrderRecord `json:"orders"`
}

// Catalog is an in-memory order index.
type Catalog struct {
	orders map[string]*domain.OrderRecord
}

// Load reads the orders file and builds the catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	var file ordersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse orders file: %w", err)
	}

	orders := make(map[string]*domain.OrderRecord, len(file.Orders))
	for id, rec := range file.Orders {
		rec.OrderID = id
		orders[id] = &rec
	}
	return &Catalog{orders: orders}, nil
}

// Lookup resolves an order identifier to its record.
// Returns domain.ErrOrderNotFound for unknown identifiers.
func (c *Catalog) Lookup(orderID string) (*domain.OrderRecord, error) {
	rec, ok := c.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return rec, nil
}

// Len returns the number of orders loaded.
func (c *Catalog) Len() int {
	return len(c.orders)
}
