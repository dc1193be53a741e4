package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// Collect accumulates the three claim prerequisites, one per turn, each
// gated behind the previous: order identifier, complaint text, image.
func (st *Stages) Collect(ctx context.Context, s *domain.ConversationState) error {
	s.CurrentStage = domain.StageCollector
	msg := s.UserMessage

	// Last mention wins: a fresh message with a different valid
	// identifier rebinds the claim.
	if id, ok := ExtractOrderID(msg); ok {
		s.BindOrder(id)
	}

	if s.OrderID == "" {
		s.Reply("Please provide your Order ID (e.g., XRD12345).")
		s.NeedsInput = true
		return nil
	}

	if _, err := st.catalog.Lookup(s.OrderID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.Reply(fmt.Sprintf("Order '%s' not found in our records.", s.OrderID))
			// Clear so the next turn re-asks instead of looping on a
			// dead identifier.
			s.OrderID = ""
			s.NeedsInput = true
			return nil
		}
		return fmt.Errorf("catalog lookup: %w", err)
	}

	if s.Complaint == "" {
		remainder := StripOrderID(msg)
		if len(remainder) > 10 {
			s.Complaint = remainder
		} else {
			s.Reply("What is the issue with this order?")
			s.NeedsInput = true
			return nil
		}
	}

	if s.ImagePath == "" {
		s.Reply("Please upload a photo of the items you received.")
		s.NeedsInput = true
		return nil
	}

	s.NeedsInput = false
	s.Response = "Analyzing your claim..."
	return nil
}

// RouteAfterCollection pauses while prerequisites are missing and
// proceeds to image analysis once all three are present.
func RouteAfterCollection(s *domain.ConversationState) string {
	if s.NeedsInput {
		return outcomeNeedInput
	}
	return outcomeReady
}
