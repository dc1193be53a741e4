package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orderdesk/refundflow/internal/logging"
	"github.com/orderdesk/refundflow/pkg/domain"
)

// Outcome labels returned by routers. An outcome with no declared edge
// halts the walk.
const (
	outcomeContinue   = "continue"
	outcomeGeneral    = "general"
	outcomeAwaitEmail = "await_email"
	outcomeFinalize   = "finalize"
	outcomeNeedInput  = "need_input"
	outcomeReady      = "ready"
	outcomeAskEmail   = "ask_email"
)

// Stage transforms the conversation state. All side effects (ledger
// appends, notification dispatch, collaborator calls) live in stages.
type Stage func(ctx context.Context, s *domain.ConversationState) error

// Router is a side-effect-free predicate over state selecting the
// outgoing edge after a stage has run.
type Router func(s *domain.ConversationState) string

// node couples a stage with its outgoing edges.
type node struct {
	stage  Stage
	router Router            // nil follows next unconditionally
	next   string            // unconditional edge; empty is terminal
	edges  map[string]string // outcome -> stage name; missing halts
}

// StageEvent is emitted around each stage execution.
type StageEvent struct {
	SessionID string
	Stage     string
}

// WalkEvent is emitted when a walk completes.
type WalkEvent struct {
	SessionID string
	Duration  time.Duration
}

// Hooks carries optional observability callbacks.
type Hooks struct {
	OnStageEnter func(context.Context, StageEvent)
	OnStageLeave func(context.Context, StageEvent)
	OnWalkEnd    func(context.Context, WalkEvent)
}

// Engine interprets the declared stage graph: one walk per inbound
// message, from the entry stage until a router halts or the terminal
// stage finishes. Walks are synchronous and bounded.
type Engine struct {
	entry  string
	nodes  map[string]node
	hooks  Hooks
	logger *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine wires the refund conversation graph over the given stages.
//
//	intent_review  -> finalize: finalizer | general: halt | await_email: halt | continue: collector
//	collector      -> need_input: halt | ready: image_analysis
//	image_analysis -> decision (unconditional)
//	decision       -> ask_email: halt | finalize: finalizer
//	finalizer      -> terminal
func NewEngine(st *Stages, opts ...Option) *Engine {
	e := &Engine{
		entry:  domain.StageIntentReview,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.nodes = map[string]node{
		domain.StageIntentReview: {
			stage:  st.IntentReview,
			router: RouteAfterIntent,
			edges: map[string]string{
				outcomeFinalize: domain.StageFinalizer,
				outcomeContinue: domain.StageCollector,
			},
		},
		domain.StageCollector: {
			stage:  st.Collect,
			router: RouteAfterCollection,
			edges: map[string]string{
				outcomeReady: domain.StageImageAnalysis,
			},
		},
		domain.StageImageAnalysis: {
			stage: st.AnalyzeImage,
			next:  domain.StageDecision,
		},
		domain.StageDecision: {
			stage:  st.Decide,
			router: RouteAfterDecision,
			edges: map[string]string{
				outcomeFinalize: domain.StageFinalizer,
			},
		},
		domain.StageFinalizer: {
			stage: st.Finalize,
		},
	}
	return e
}

// Walk executes one bounded traversal of the graph, mutating the state
// in place. No stage runs twice within a walk; revisiting one is a
// programming error and aborts the request.
func (e *Engine) Walk(ctx context.Context, s *domain.ConversationState) error {
	start := time.Now()
	visited := make(map[string]bool, len(e.nodes))

	current := e.entry
	for current != "" {
		if visited[current] {
			return fmt.Errorf("stage %q revisited within a single walk", current)
		}
		visited[current] = true

		n, ok := e.nodes[current]
		if !ok {
			return fmt.Errorf("unknown stage %q", current)
		}

		if e.hooks.OnStageEnter != nil {
			e.hooks.OnStageEnter(ctx, StageEvent{SessionID: s.SessionID, Stage: current})
		}

		if err := n.stage(ctx, s); err != nil {
			return fmt.Errorf("stage %s: %w", current, err)
		}

		if e.hooks.OnStageLeave != nil {
			e.hooks.OnStageLeave(ctx, StageEvent{SessionID: s.SessionID, Stage: current})
		}

		next := n.next
		if n.router != nil {
			outcome := n.router(s)
			next = n.edges[outcome]
			e.logger.Debug("routed",
				"session_id", s.SessionID,
				"stage", current,
				"outcome", outcome,
				"next", next,
			)
		}
		current = next
	}

	if e.hooks.OnWalkEnd != nil {
		e.hooks.OnWalkEnd(ctx, WalkEvent{SessionID: s.SessionID, Duration: time.Since(start)})
	}
	return nil
}

// Stages lists the declared stage names, entry first. Useful for
// introspection and metric label pre-registration.
func (e *Engine) Stages() []string {
	names := []string{e.entry}
	for name := range e.nodes {
		if name != e.entry {
			names = append(names, name)
		}
	}
	return names
}
