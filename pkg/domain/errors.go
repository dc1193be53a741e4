package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrOrderNotFound is returned when an order ID is absent from the catalog.
var ErrOrderNotFound = errors.New("order not found")
