package workflow

import (
	"context"
	"strings"

	"github.com/orderdesk/refundflow/pkg/domain"
)

// IntentReview is the entry stage. It classifies the first message of a
// claim, or captures an email address once a claim is approved and
// awaiting payment details. Mid-collection follow-ups skip
// re-classification and fall straight through to the collector.
func (st *Stages) IntentReview(ctx context.Context, s *domain.ConversationState) error {
	s.CurrentStage = domain.StageIntentReview
	msg := strings.TrimSpace(s.UserMessage)
	s.AppendHistory("user", msg)

	// Email capture, only once approved.
	if s.RefundStatus == domain.RefundApproved {
		if email, ok := ExtractEmail(msg); ok {
			s.Email = email
			s.Intent = domain.IntentFinalizeFlow
			s.NeedsInput = false
			return nil
		}
		if s.Email == "" {
			s.Reply("Please provide a valid email address.")
			s.NeedsInput = true
			return nil
		}
	}

	// Flow continuity: a claim already mid-collection keeps its
	// classification instead of re-running the classifier every turn.
	if (s.Intent == domain.IntentRefund || s.Intent == domain.IntentQualityComplaint) && s.RefundStatus == "" {
		s.NeedsInput = false
		return nil
	}

	analysis, err := st.classifier.Analyze(ctx, msg)
	if err != nil {
		st.logger.Error("intent classification failed, using neutral fallback",
			"session_id", s.SessionID,
			"err", err,
		)
		analysis = domain.IntentAnalysis{
			Intent:         domain.IntentGeneral,
			SentimentScore: 5,
			Language:       "en",
		}
	}

	s.SentimentScore = analysis.SentimentScore
	s.Intent = analysis.Intent
	if analysis.Language != "" {
		s.Language = analysis.Language
	}

	if s.Intent == domain.IntentGeneral {
		s.Reply("I can help with refunds or complaints. Do you have an Order ID?")
		s.NeedsInput = false
	} else {
		s.NeedsInput = true
	}
	return nil
}

// RouteAfterIntent selects the edge out of the intent review stage.
func RouteAfterIntent(s *domain.ConversationState) string {
	switch {
	case s.Intent == domain.IntentFinalizeFlow:
		return outcomeFinalize
	case s.Intent == domain.IntentGeneral:
		return outcomeGeneral
	case s.RefundStatus == domain.RefundApproved && s.NeedsInput:
		// Approved claim still waiting on an email: the stage has
		// already re-prompted, so the walk pauses here.
		return outcomeAwaitEmail
	}
	return outcomeContinue
}
