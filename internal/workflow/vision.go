package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// AnalyzeImage invokes the vision verifier exactly once per claim.
// A verdict already present makes this stage a no-op passthrough, so
// stray re-entries never re-invoke the collaborator.
func (st *Stages) AnalyzeImage(ctx context.Context, s *domain.ConversationState) error {
	if s.ImageVerdict != nil {
		return nil
	}
	s.CurrentStage = domain.StageImageAnalysis

	// The collector guarantees the order exists by the time we get here.
	order, err := st.catalog.Lookup(s.OrderID)
	if err != nil {
		return fmt.Errorf("order %s vanished between collection and analysis: %w", s.OrderID, err)
	}

	items := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	claimCtx := fmt.Sprintf("Order ID: %s\nExpected Items: %s\nUser Complaint: '%s'",
		s.OrderID, strings.Join(items, ", "), s.Complaint)

	st.logger.Info("invoking vision verifier",
		"session_id", s.SessionID,
		"order_id", s.OrderID,
		"image", s.ImagePath,
	)

	verdict, err := st.vision.Verify(ctx, s.ImagePath, claimCtx)
	if err != nil {
		// Fail closed: an unverifiable image reads as acceptable,
		// which denies the refund.
		st.logger.Error("vision verification failed, using conservative verdict",
			"session_id", s.SessionID,
			"err", err,
		)
		verdict = domain.ImageVerdict{
			Status:      domain.VerdictAcceptable,
			Description: "Technical Verification Failed",
		}
	}

	s.ImageVerdict = &verdict
	return nil
}
