package workflow

import (
	"context"
	"fmt"

	"github.com/orderdesk/refundflow/internal/notify"
	"github.com/orderdesk/refundflow/pkg/domain"
)

// Finalize closes out the session: on approval it re-validates the
// email, renders and dispatches the receipt; for both outcomes it
// appends the durable ledger entry. Always the last stage of a walk.
func (st *Stages) Finalize(ctx context.Context, s *domain.ConversationState) error {
	s.CurrentStage = domain.StageFinalizer

	if s.Recorded {
		s.Reply("This claim is already closed. Our support team can help with anything further.")
		s.NeedsInput = false
		return nil
	}

	if s.RefundStatus == domain.RefundApproved {
		// Defense in depth: the finalize_flow path can land here with
		// whatever the email scan produced.
		if !ValidEmail(s.Email) {
			s.Reply("I still need a valid email address to send your receipt.")
			s.NeedsInput = true
			return nil
		}

		order, err := st.catalog.Lookup(s.OrderID)
		if err != nil {
			return fmt.Errorf("approved order missing from catalog: %w", err)
		}

		body := notify.RenderReceipt(order, s.ImageVerdict)
		if err := st.notifier.Send(ctx, s.Email, body, s.OrderID); err != nil {
			st.logger.Error("receipt delivery failed",
				"session_id", s.SessionID,
				"recipient", s.Email,
				"err", err,
			)
		}
		s.Reply(fmt.Sprintf("Success! A receipt has been sent to %s.", s.Email))
	}

	entry := domain.LedgerEntry{
		SessionID: s.SessionID,
		OrderID:   s.OrderID,
		Status:    s.RefundStatus,
		Email:     s.Email,
	}
	if err := st.ledger.Append(ctx, entry); err != nil {
		// Storage trouble never fails the conversation; the next
		// finalizer entry will retry the append.
		st.logger.Error("ledger append failed",
			"session_id", s.SessionID,
			"err", err,
		)
	} else {
		s.Recorded = true
	}

	s.NeedsInput = false
	return nil
}
