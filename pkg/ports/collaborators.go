package ports

import (
	"context"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// OrderCatalog is the read-only order lookup.
// Returns domain.ErrOrderNotFound for unknown identifiers.
type OrderCatalog interface {
	Lookup(orderID string) (*domain.OrderRecord, error)
}

// IntentClassifier judges a raw customer message for intent, sentiment
// and language. On error the caller falls back to a neutral verdict;
// implementations are never retried within a turn.
type IntentClassifier interface {
	Analyze(ctx context.Context, message string) (domain.IntentAnalysis, error)
}

// VisionVerifier judges an uploaded product image against the claim
// context (expected items plus complaint). On error the caller falls
// back to an "acceptable" verdict, which denies the refund.
type VisionVerifier interface {
	Verify(ctx context.Context, imagePath, claimContext string) (domain.ImageVerdict, error)
}

// ReceiptSender delivers a rendered refund receipt to the customer.
// Delivery failure is logged by the caller, never surfaced to the
// conversation as a hard error.
type ReceiptSender interface {
	Send(ctx context.Context, recipient, body, orderID string) error
}

// RefundLedger is the durable, append-only record of completed
// adjudications. Appends must be mutually exclusive.
type RefundLedger interface {
	Append(ctx context.Context, entry domain.LedgerEntry) error
	Entries(ctx context.Context) ([]domain.LedgerEntry, error)
}
