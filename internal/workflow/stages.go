package workflow

import (
	"log/slog"

	"github.com/orderdesk/refundflow/internal/logging"
	"github.com/orderdesk/refundflow/pkg/ports"
)

// Stages bundles the collaborators the stage bodies need. Stage methods
// mutate the conversation state; routers never do.
type Stages struct {
	catalog    ports.OrderCatalog
	classifier ports.IntentClassifier
	vision     ports.VisionVerifier
	notifier   ports.ReceiptSender
	ledger     ports.RefundLedger
	logger     *slog.Logger
}

// StagesOption configures the stage set.
type StagesOption func(*Stages)

// WithStagesLogger sets a structured logger for the stages.
func WithStagesLogger(logger *slog.Logger) StagesOption {
	return func(st *Stages) {
		st.logger = logger
	}
}

// NewStages creates the stage set with its collaborator dependencies.
func NewStages(
	catalog ports.OrderCatalog,
	classifier ports.IntentClassifier,
	vision ports.VisionVerifier,
	notifier ports.ReceiptSender,
	ledger ports.RefundLedger,
	opts ...StagesOption,
) *Stages {
	st := &Stages{
		catalog:    catalog,
		classifier: classifier,
		vision:     vision,
		notifier:   notifier,
		ledger:     ledger,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}
