package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/refundflow/internal/workflow"
	"github.com/orderdesk/refundflow/pkg/domain"
)

// fakeCatalog serves a fixed set of orders.
type fakeCatalog struct {
	orders map[string]*domain.OrderRecord
}

func (f *fakeCatalog) Lookup(orderID string) (*domain.OrderRecord, error) {
	if o, ok := f.orders[orderID]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

// fakeClassifier returns a canned analysis and counts invocations.
type fakeClassifier struct {
	analysis domain.IntentAnalysis
	err      error
	calls    int
}

func (f *fakeClassifier) Analyze(ctx context.Context, message string) (domain.IntentAnalysis, error) {
	f.calls++
	return f.analysis, f.err
}

// fakeVision returns a canned verdict and counts invocations.
type fakeVision struct {
	verdict domain.ImageVerdict
	err     error
	calls   int
}

func (f *fakeVision) Verify(ctx context.Context, imagePath, claimContext string) (domain.ImageVerdict, error) {
	f.calls++
	return f.verdict, f.err
}

// fakeNotifier records sent receipts.
type fakeNotifier struct {
	err  error
	sent []string
}

func (f *fakeNotifier) Send(ctx context.Context, recipient, body, orderID string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, recipient)
	return nil
}

// fakeLedger records appends in memory.
type fakeLedger struct {
	mu      sync.Mutex
	err     error
	entries []domain.LedgerEntry
}

func (f *fakeLedger) Append(ctx context.Context, entry domain.LedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedger) Entries(ctx context.Context) ([]domain.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LedgerEntry(nil), f.entries...), nil
}

// fixture bundles the collaborator fakes behind an engine.
type fixture struct {
	catalog    *fakeCatalog
	classifier *fakeClassifier
	vision     *fakeVision
	notifier   *fakeNotifier
	ledger     *fakeLedger
	engine     *workflow.Engine
}

func newFixture() *fixture {
	f := &fixture{
		catalog: &fakeCatalog{orders: map[string]*domain.OrderRecord{
			"XRD12345": {
				OrderID: "XRD12345",
				Items: []domain.OrderItem{
					{Name: "Ceramic Kettle", Quantity: 1, Price: 64.0},
				},
				TotalAmount: 64.0,
			},
		}},
		classifier: &fakeClassifier{analysis: domain.IntentAnalysis{
			Intent:         domain.IntentRefund,
			SentimentScore: 2,
			Language:       "en",
		}},
		vision:   &fakeVision{verdict: domain.ImageVerdict{Status: domain.VerdictDefective, Description: "Cracked body"}},
		notifier: &fakeNotifier{},
		ledger:   &fakeLedger{},
	}
	stages := workflow.NewStages(f.catalog, f.classifier, f.vision, f.notifier, f.ledger)
	f.engine = workflow.NewEngine(stages)
	return f
}

// turn runs one walk with the given user message merged into the state.
func (f *fixture) turn(t *testing.T, s *domain.ConversationState, message string) {
	t.Helper()
	s.UserMessage = message
	require.NoError(t, f.engine.Walk(context.Background(), s))
}

func TestWalk_RefundIntentAsksForOrderID(t *testing.T) {
	f := newFixture()
	s := domain.NewState("t1")

	f.turn(t, s, "I want a refund, my kettle arrived broken")

	assert.Equal(t, domain.IntentRefund, s.Intent)
	assert.Equal(t, 2, s.SentimentScore)
	assert.True(t, s.NeedsInput)
	assert.Contains(t, s.Response, "Order ID")
	assert.Equal(t, domain.StageCollector, s.CurrentStage)
}

func TestWalk_GeneralIntentHalts(t *testing.T) {
	f := newFixture()
	f.classifier.analysis = domain.IntentAnalysis{Intent: domain.IntentGeneral, SentimentScore: 7, Language: "en"}
	s := domain.NewState("t2")

	f.turn(t, s, "what are your opening hours?")

	assert.Equal(t, domain.IntentGeneral, s.Intent)
	assert.Contains(t, s.Response, "refunds or complaints")
	assert.Equal(t, domain.StageIntentReview, s.CurrentStage)
	assert.Empty(t, s.RefundStatus)
}

func TestWalk_ClassifierFailureFallsBackToGeneral(t *testing.T) {
	f := newFixture()
	f.classifier.err = errors.New("upstream 503")
	s := domain.NewState("t3")

	f.turn(t, s, "give me my money back")

	assert.Equal(t, domain.IntentGeneral, s.Intent)
	assert.Equal(t, 5, s.SentimentScore)
	assert.Equal(t, "en", s.Language)
}

func TestWalk_UnknownOrderReprompts(t *testing.T) {
	f := newFixture()
	s := domain.NewState("t4")

	f.turn(t, s, "refund please")
	f.turn(t, s, "it's XRD99999")

	assert.Contains(t, s.Response, "XRD99999")
	assert.Contains(t, s.Response, "not found")
	assert.Empty(t, s.OrderID, "Dead identifier must be cleared for the next turn")
	assert.True(t, s.NeedsInput)
}

func TestWalk_CollectsPrerequisitesOnePerTurn(t *testing.T) {
	f := newFixture()
	s := domain.NewState("t5")

	f.turn(t, s, "refund please")
	assert.Contains(t, s.Response, "Order ID")

	f.turn(t, s, "XRD12345")
	assert.Equal(t, "XRD12345", s.OrderID)
	assert.Contains(t, s.Response, "issue")

	f.turn(t, s, "the kettle arrived with a huge crack down the side")
	assert.NotEmpty(t, s.Complaint)
	assert.Contains(t, s.Response, "photo")
	assert.Zero(t, f.vision.calls)
}

func TestWalk_InlineComplaintSkipsIssuePrompt(t *testing.T) {
	// Order ID and complaint in a single message: only the image is
	// still missing.
	f := newFixture()
	s := domain.NewState("t6")

	f.turn(t, s, "refund please")
	f.turn(t, s, "XRD12345 arrived completely shattered, glass everywhere")

	assert.Equal(t, "XRD12345", s.OrderID)
	assert.Contains(t, s.Complaint, "shattered")
	assert.Contains(t, s.Response, "photo")
}

func TestWalk_DefectiveVerdictApprovesAndAsksEmail(t *testing.T) {
	f := newFixture()
	s := approvedClaim(t, f)

	assert.Equal(t, domain.RefundApproved, s.RefundStatus)
	assert.Contains(t, s.Response, "email")
	assert.True(t, s.NeedsInput)
	assert.Equal(t, 1, f.vision.calls)
	assert.Empty(t, f.ledger.entries, "No ledger entry before the claim is finalized")
}

func TestWalk_AcceptableVerdictDeniesAndRecords(t *testing.T) {
	f := newFixture()
	f.vision.verdict = domain.ImageVerdict{Status: domain.VerdictAcceptable, Description: "Items match the order"}
	s := domain.NewState("t8")

	f.turn(t, s, "refund please")
	f.turn(t, s, "XRD12345 the kettle is completely unusable I swear")
	s.ImagePath = "uploads/kettle.jpg"
	f.turn(t, s, "here is the photo")

	assert.Equal(t, domain.RefundDenied, s.RefundStatus)
	assert.Contains(t, s.Response, "denied")
	assert.Contains(t, s.Response, "Items match the order")
	assert.False(t, s.NeedsInput)
	assert.Empty(t, f.notifier.sent)

	require.Len(t, f.ledger.entries, 1)
	assert.Equal(t, domain.RefundDenied, f.ledger.entries[0].Status)
	assert.Equal(t, "XRD12345", f.ledger.entries[0].OrderID)
}

func TestWalk_VisionFailureDeniesConservatively(t *testing.T) {
	f := newFixture()
	f.vision.err = errors.New("model timeout")
	s := domain.NewState("t9")

	f.turn(t, s, "refund please")
	f.turn(t, s, "XRD12345 arrived broken into several pieces")
	s.ImagePath = "uploads/broken.jpg"
	f.turn(t, s, "photo attached")

	assert.Equal(t, domain.RefundDenied, s.RefundStatus)
	assert.Contains(t, s.Response, "Technical Verification Failed")
}

func TestWalk_EmailCaptureSendsReceiptAndRecords(t *testing.T) {
	f := newFixture()
	s := approvedClaim(t, f)

	f.turn(t, s, "sure, jane.doe@example.com")

	assert.Equal(t, "jane.doe@example.com", s.Email)
	assert.Contains(t, s.Response, "receipt has been sent to jane.doe@example.com")
	assert.False(t, s.NeedsInput)
	assert.Equal(t, []string{"jane.doe@example.com"}, f.notifier.sent)

	require.Len(t, f.ledger.entries, 1)
	assert.Equal(t, domain.RefundApproved, f.ledger.entries[0].Status)
	assert.Equal(t, "jane.doe@example.com", f.ledger.entries[0].Email)
	assert.True(t, s.Recorded)
}

func TestWalk_InvalidEmailRepromptsWithoutSideEffects(t *testing.T) {
	f := newFixture()
	s := approvedClaim(t, f)

	f.turn(t, s, "just send it to my house")

	assert.True(t, s.NeedsInput)
	assert.Contains(t, s.Response, "valid email")
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.ledger.entries)
}

func TestWalk_StatusIsWriteOnce(t *testing.T) {
	// A denied claim stays denied even if later evidence would approve.
	f := newFixture()
	f.vision.verdict = domain.ImageVerdict{Status: domain.VerdictAcceptable}
	s := domain.NewState("t12")

	f.turn(t, s, "refund please")
	f.turn(t, s, "XRD12345 completely broken beyond any repair")
	s.ImagePath = "uploads/a.jpg"
	f.turn(t, s, "photo")
	require.Equal(t, domain.RefundDenied, s.RefundStatus)

	// Force a fresh walk with evidence that would now approve.
	s.ImageVerdict = &domain.ImageVerdict{Status: domain.VerdictDefective}
	f.turn(t, s, "look again, it really is broken")

	assert.Equal(t, domain.RefundDenied, s.RefundStatus)
}

func TestWalk_VerdictIsMemoized(t *testing.T) {
	// A follow-up on a denied claim re-traverses image analysis; the
	// stored verdict must make it a no-op.
	f := newFixture()
	f.vision.verdict = domain.ImageVerdict{Status: domain.VerdictAcceptable}
	s := domain.NewState("t13")

	f.turn(t, s, "refund please")
	f.turn(t, s, "XRD12345 completely unusable, the spout snapped off")
	s.ImagePath = "uploads/spout.jpg"
	f.turn(t, s, "photo")
	require.Equal(t, domain.RefundDenied, s.RefundStatus)
	require.Equal(t, 1, f.vision.calls)

	f.turn(t, s, "please check the photo once more")

	assert.Equal(t, 1, f.vision.calls, "Vision verifier must run once per claim")
}

func TestWalk_FollowUpSkipsClassifier(t *testing.T) {
	f := newFixture()
	s := domain.NewState("t14")

	f.turn(t, s, "refund please")
	require.Equal(t, 1, f.classifier.calls)

	f.turn(t, s, "XRD12345")
	f.turn(t, s, "the kettle arrived cracked along the base")

	assert.Equal(t, 1, f.classifier.calls, "Mid-collection turns must not re-classify")
}

func TestWalk_ClosedClaimShortCircuits(t *testing.T) {
	f := newFixture()
	s := approvedClaim(t, f)
	f.turn(t, s, "jane.doe@example.com")
	require.Len(t, f.ledger.entries, 1)

	f.turn(t, s, "jane.doe@example.com")

	assert.Len(t, f.ledger.entries, 1, "Duplicate ledger entries on re-entry")
	assert.Len(t, f.notifier.sent, 1, "Duplicate receipts on re-entry")
	assert.Contains(t, s.Response, "already closed")
}

func TestWalk_LedgerFailureKeepsConversationAlive(t *testing.T) {
	f := newFixture()
	f.ledger.err = errors.New("disk full")
	s := approvedClaim(t, f)

	f.turn(t, s, "jane.doe@example.com")

	assert.False(t, s.Recorded, "Failed append must stay retryable")
	assert.Contains(t, s.Response, "receipt has been sent")
}

func TestWalk_HistoryOnlyGrows(t *testing.T) {
	f := newFixture()
	s := domain.NewState("t16")

	var lengths []int
	for _, msg := range []string{"refund please", "XRD12345", "the kettle arrived badly cracked"} {
		f.turn(t, s, msg)
		lengths = append(lengths, len(s.History))
	}

	for i := 1; i < len(lengths); i++ {
		assert.Greater(t, lengths[i], lengths[i-1])
	}
}

func TestWalk_Hooks(t *testing.T) {
	f := newFixture()
	var entered []string
	walks := 0

	stages := workflow.NewStages(f.catalog, f.classifier, f.vision, f.notifier, f.ledger)
	engine := workflow.NewEngine(stages, workflow.WithHooks(workflow.Hooks{
		OnStageEnter: func(ctx context.Context, ev workflow.StageEvent) {
			entered = append(entered, ev.Stage)
		},
		OnWalkEnd: func(ctx context.Context, ev workflow.WalkEvent) {
			walks++
		},
	}))

	s := domain.NewState("t17")
	s.UserMessage = "refund please"
	require.NoError(t, engine.Walk(context.Background(), s))

	assert.Equal(t, []string{domain.StageIntentReview, domain.StageCollector}, entered)
	assert.Equal(t, 1, walks)
}

func TestEngine_Stages(t *testing.T) {
	f := newFixture()
	names := f.engine.Stages()

	assert.Equal(t, domain.StageIntentReview, names[0])
	assert.Len(t, names, 5)
}

// approvedClaim drives a fresh session to the approved-awaiting-email
// point: classified, collected, analyzed defective, adjudicated.
func approvedClaim(t *testing.T, f *fixture) *domain.ConversationState {
	t.Helper()
	s := domain.NewState("claim")

	f.turn(t, s, "refund please")
	f.turn(t, s, "XRD12345 it arrived cracked right down the middle")
	s.ImagePath = "uploads/crack.jpg"
	f.turn(t, s, "photo attached")

	require.Equal(t, domain.RefundApproved, s.RefundStatus)
	return s
}
