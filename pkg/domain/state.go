package domain

// Intent values bound by the intent review stage. The classifier only
// ever produces refund, quality_complaint or general; finalize_flow is
// set internally when an email capture should route straight to the
// finalizer.
const (
	IntentRefund           = "refund"
	IntentQualityComplaint = "quality_complaint"
	IntentGeneral          = "general"
	IntentFinalizeFlow     = "finalize_flow"
)

// Refund adjudication outcomes. The empty string means undecided.
// The status transitions at most once, from "" to a terminal value.
const (
	RefundApproved = "approved"
	RefundDenied   = "denied"
)

// Stage identifiers for the conversation graph.
const (
	StageIntentReview  = "intent_review"
	StageCollector     = "collector"
	StageImageAnalysis = "image_analysis"
	StageDecision      = "decision"
	StageFinalizer     = "finalizer"
)

// HistoryEntry is one recorded conversation turn.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the full snapshot of one refund conversation.
// The workflow engine owns it exclusively for the duration of a walk;
// the session store persists it between turns.
type ConversationState struct {
	SessionID      string        `json:"session_id"`
	UserMessage    string        `json:"user_message"`
	SentimentScore int           `json:"sentiment_score"`
	Intent         string        `json:"intent"`
	Language       string        `json:"language"`
	OrderID        string        `json:"order_id,omitempty"`
	Complaint      string        `json:"complaint,omitempty"`
	ImagePath      string        `json:"image_path,omitempty"`
	ImageVerdict   *ImageVerdict `json:"image_verdict,omitempty"`
	RefundStatus   string        `json:"refund_status"`
	Email          string        `json:"email,omitempty"`

	// CurrentStage records the last stage executed. Diagnostic only;
	// it carries no control-flow meaning.
	CurrentStage string `json:"current_node"`

	// Response is the single message surfaced to the user this turn.
	Response string `json:"response_message"`

	// NeedsInput pauses the walk and returns control to the caller.
	NeedsInput bool `json:"needs_input"`

	// Recorded is set once the finalizer has written this session's
	// ledger entry; it guards against duplicate entries on re-entry.
	Recorded bool `json:"ledger_recorded,omitempty"`

	// History is append-only: turns only ever add entries.
	History []HistoryEntry `json:"conversation_history"`
}

// NewState creates a fresh conversation with bootstrap defaults.
func NewState(sessionID string) *ConversationState {
	return &ConversationState{
		SessionID:      sessionID,
		SentimentScore: 5,
		Language:       "en",
		NeedsInput:     true,
		History:        []HistoryEntry{},
	}
}

// AppendHistory records one turn. History only ever grows.
func (s *ConversationState) AppendHistory(role, content string) {
	s.History = append(s.History, HistoryEntry{Role: role, Content: content})
}

// Reply sets the outbound message for this turn and records it in the
// conversation history.
func (s *ConversationState) Reply(message string) {
	s.Response = message
	s.AppendHistory("assistant", message)
}

// BindOrder binds an order identifier. Binding a different order than
// the one already held starts a new claim, so evidence accumulated for
// the previous order (complaint, image, verdict) no longer applies and
// is cleared. Re-binding the same identifier is a no-op.
func (s *ConversationState) BindOrder(orderID string) {
	if orderID == s.OrderID {
		return
	}
	if s.OrderID != "" {
		s.Complaint = ""
		s.ImagePath = ""
		s.ImageVerdict = nil
	}
	s.OrderID = orderID
}
