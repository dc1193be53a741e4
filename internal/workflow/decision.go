package workflow

import (
	"context"
	"fmt"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// Decide is the single point where refund_status is set, irreversibly.
// Approval requires the verdict status to be exactly "defective";
// anything else, including a missing verdict, denies. A status already
// present is preserved: no walk ever flips an adjudication.
func (st *Stages) Decide(ctx context.Context, s *domain.ConversationState) error {
	s.CurrentStage = domain.StageDecision

	if s.RefundStatus == "" {
		if s.ImageVerdict != nil && s.ImageVerdict.Status == domain.VerdictDefective {
			s.RefundStatus = domain.RefundApproved
		} else {
			s.RefundStatus = domain.RefundDenied
		}
		st.logger.Info("claim adjudicated",
			"session_id", s.SessionID,
			"order_id", s.OrderID,
			"status", s.RefundStatus,
		)
	}

	if s.RefundStatus == domain.RefundApproved {
		if ValidEmail(s.Email) {
			s.Response = "Refund approved. Sending your receipt now."
			s.NeedsInput = false
		} else {
			s.Reply("Refund approved! Please provide your email address for the receipt.")
			s.NeedsInput = true
		}
		return nil
	}

	desc := "Product acceptable"
	if s.ImageVerdict != nil && s.ImageVerdict.Description != "" {
		desc = s.ImageVerdict.Description
	}
	s.Reply(fmt.Sprintf("Refund denied. Analysis: %s.", desc))
	s.NeedsInput = false
	return nil
}

// RouteAfterDecision pauses for email capture on an approved claim with
// no usable address; every other outcome proceeds to the finalizer.
func RouteAfterDecision(s *domain.ConversationState) string {
	if s.RefundStatus == domain.RefundApproved && !ValidEmail(s.Email) {
		return outcomeAskEmail
	}
	return outcomeFinalize
}
