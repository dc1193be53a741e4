package ports

import (
	"context"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// SessionStore defines the interface for persisting conversation state
// between turns. Implementations must be safe for concurrent use; the
// per-session exclusivity guarantee lives in the session manager, not here.
type SessionStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.ConversationState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.ConversationState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns all active session IDs.
	List(ctx context.Context) ([]string, error)
}
