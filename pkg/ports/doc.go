// Package ports defines the interfaces between the conversation core
// and its collaborators: session persistence, locking, the order
// catalog, the external analysis services, notification delivery and
// the refund ledger. Adapters live under internal/adapters and friends.
package ports
