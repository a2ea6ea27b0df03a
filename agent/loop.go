package agent

import (
	"context"
	"fmt"

	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// DefaultMaxIterations bounds the perceive/decide/execute cycle for one
// task execution, counted across suspensions.
const DefaultMaxIterations = 50

// Result is the outcome of driving the loop as far as it can go: either
// the task finished (Pending == nil, FinalText holds the user-visible
// outcome) or it suspended awaiting a browser action (Pending != nil).
// State is always the latest consistent state and can be persisted and fed
// back into Resume.
type Result struct {
	State     AgentState     `json:"state"`
	FinalText string         `json:"final_text,omitempty"`
	Pending   *PendingAction `json:"pending,omitempty"`
}

// Finished reports whether the task ran to completion.
func (r *Result) Finished() bool {
	return r.Pending == nil
}

// Loop wires perception, decision, and execution into the agent cycle:
//
//	PERCEIVE -> DECIDE -> EXECUTE -> (loop, suspend, or terminate)
//
// The loop is strictly sequential; the only suspension point is a remote
// tool call, which suspends the entire task. Suspension is modeled as a
// two-phase protocol (Start/Resume with serializable state) rather than a
// language-level coroutine, so a suspended run survives process restarts.
type Loop struct {
	perception    *PerceptionStep
	decision      *DecisionStep
	execution     *ExecutionStep
	maxIterations int
	logger        logger.Logger
}

// NewLoop creates a control loop. maxIterations <= 0 selects the default.
func NewLoop(perception *PerceptionStep, decision *DecisionStep, execution *ExecutionStep, maxIterations int, log logger.Logger) *Loop {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		perception:    perception,
		decision:      decision,
		execution:     execution,
		maxIterations: maxIterations,
		logger:        log,
	}
}

// Start runs the loop from an initial state until the task finishes or
// suspends for a browser action.
func (l *Loop) Start(ctx context.Context, state AgentState) (*Result, error) {
	if len(state.Conversation) == 0 {
		return nil, ErrNoUserMessage
	}
	return l.drive(ctx, state)
}

// Resume continues a suspended run with the outcome of the pending browser
// action, then drives the loop until it finishes or suspends again.
// Perception always re-runs before the next decision, so elements are
// recomputed for any screenshot the outcome carried.
func (l *Loop) Resume(ctx context.Context, state AgentState, callID string, outcome ToolOutcome) (*Result, error) {
	state = state.Apply(l.execution.Resume(ctx, callID, outcome))
	return l.drive(ctx, state)
}

// drive executes perceive/decide/execute cycles until termination or
// suspension. Each cycle's state transition is atomic from the caller's
// point of view: on error, the last consistent state is simply never
// returned, and the caller may retry from its prior checkpoint.
func (l *Loop) drive(ctx context.Context, state AgentState) (*Result, error) {
	for i := 0; i < l.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state = state.Apply(l.perception.Perceive(ctx, state))

		proposal, err := l.decision.Decide(ctx, state)
		if err != nil {
			return nil, err
		}
		state = state.Apply(StateUpdate{Messages: []Message{proposal}})

		if len(proposal.ToolRequests) == 0 {
			l.logger.Info(ctx, "agent loop terminated", map[string]interface{}{
				"turns": len(state.Conversation),
			})
			return &Result{State: state, FinalText: proposal.Text}, nil
		}

		update, pending := l.execution.Execute(ctx, state)
		if pending != nil {
			return &Result{State: state, Pending: pending}, nil
		}
		state = state.Apply(update)
	}

	return nil, fmt.Errorf("%w: %d iterations", ErrIterationLimit, l.maxIterations)
}
