package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/hairizuan-noorazman/browser-agent/prompt"
)

// SuspendPayload is the request handed to the external browser actor when a
// remote tool is executed. A screenshot is always requested after the
// action so the next perception pass sees the new page state.
type SuspendPayload struct {
	Action            string                 `json:"action"`
	Args              map[string]interface{} `json:"args"`
	RequestScreenshot bool                   `json:"request_screenshot"`
}

// PendingAction couples a suspend payload with the tool call it answers.
// While a PendingAction is outstanding, the whole task execution is
// suspended; no other computation proceeds against its state.
type PendingAction struct {
	CallID  string         `json:"call_id"`
	Payload SuspendPayload `json:"payload"`
}

// SkillLoader resolves named skill prompts. *prompt.Loader satisfies it.
type SkillLoader interface {
	LoadSkill(name string) (string, error)
	ListSkills() []string
}

// DataSink accepts data collected from the page, tagged with the data
// source the task ran for (uuid.Nil for ad hoc tasks). Implementations
// must not block the control loop; hand-off to the ingestion pipeline
// happens in the background.
type DataSink interface {
	Submit(ctx context.Context, sourceID uuid.UUID, items []string) error
}

// ExecutionStep resolves the first tool request of the latest proposal,
// either synchronously (local tools) or by suspending for the external
// browser actor (remote tools).
//
// Only the first request is acted upon even when a proposal carries
// several; additional requests are dropped. This is a documented
// limitation carried over from the original behavior.
type ExecutionStep struct {
	skills SkillLoader
	sink   DataSink
	logger logger.Logger
}

// NewExecutionStep creates an execution step.
func NewExecutionStep(skills SkillLoader, sink DataSink, log logger.Logger) *ExecutionStep {
	return &ExecutionStep{
		skills: skills,
		sink:   sink,
		logger: log,
	}
}

// Execute processes the first tool request of the latest proposal. It
// returns either a state update (local tool resolved, or no-op when there
// is nothing to execute) or a pending action that suspends the loop.
func (e *ExecutionStep) Execute(ctx context.Context, state AgentState) (StateUpdate, *PendingAction) {
	last := state.LastMessage()
	if last == nil || last.Type != MessageTypeProposal || len(last.ToolRequests) == 0 {
		return StateUpdate{}, nil
	}

	request := last.ToolRequests[0]

	kind, known := ParseToolKind(request.Name)
	if known && kind.Local() {
		result := e.executeLocal(ctx, kind, request, state.DataSourceID)
		return StateUpdate{
			Messages: []Message{NewToolResultMessage(request.CallID, result)},
		}, nil
	}

	// Remote (and unrecognized) tools go to the browser-side executor.
	e.logger.Info(ctx, "suspending for browser action", map[string]interface{}{
		"action":  request.Name,
		"call_id": request.CallID,
	})

	args := request.Args
	if args == nil {
		args = map[string]interface{}{}
	}

	return StateUpdate{}, &PendingAction{
		CallID: request.CallID,
		Payload: SuspendPayload{
			Action:            request.Name,
			Args:              args,
			RequestScreenshot: true,
		},
	}
}

// Resume folds a tool outcome back into the state: the result is always
// appended as a tool result message; a new screenshot replaces the current
// one and clears the detected elements; a new viewport replaces the
// viewport.
func (e *ExecutionStep) Resume(ctx context.Context, callID string, outcome ToolOutcome) StateUpdate {
	update := StateUpdate{
		Messages: []Message{NewToolResultMessage(callID, outcome.Result)},
	}

	if outcome.Screenshot != "" {
		screenshot := outcome.Screenshot
		update.Screenshot = &screenshot
	}
	if outcome.Viewport != nil {
		viewport := *outcome.Viewport
		update.Viewport = &viewport
	}

	e.logger.Info(ctx, "browser action resumed", map[string]interface{}{
		"call_id":        callID,
		"new_screenshot": outcome.Screenshot != "",
		"new_viewport":   outcome.Viewport != nil,
	})

	return update
}

// executeLocal resolves a local tool in-process. Every local tool produces
// a textual outcome, never an error: a failed skill lookup or malformed
// argument is a recoverable message for the model, not a crash.
func (e *ExecutionStep) executeLocal(ctx context.Context, kind ToolKind, request ToolRequest, sourceID uuid.UUID) string {
	e.logger.Info(ctx, "executing server-side tool", map[string]interface{}{
		"tool":    string(kind),
		"call_id": request.CallID,
	})

	switch kind {
	case ToolLoadSkill:
		return e.loadSkill(request.Args)
	case ToolCollectData:
		return e.collectData(ctx, sourceID, request.Args)
	default:
		return fmt.Sprintf("Unknown server-side tool: %s", kind)
	}
}

func (e *ExecutionStep) loadSkill(args map[string]interface{}) string {
	name, _ := args["skill_name"].(string)
	if name == "" {
		return fmt.Sprintf("Error: skill_name is required.\n\nAvailable skills: %s", e.availableSkills())
	}

	content, err := e.skills.LoadSkill(name)
	if err != nil {
		available := e.availableSkills()
		if available == "" {
			available = "none"
		}
		return fmt.Sprintf("Error: Skill '%s' not found.\n\nAvailable skills: %s", name, available)
	}

	return content
}

func (e *ExecutionStep) collectData(ctx context.Context, sourceID uuid.UUID, args map[string]interface{}) string {
	items := toStringSlice(args["data"])
	if len(items) == 0 {
		return "Error: data must be a non-empty list of strings."
	}

	if err := e.sink.Submit(ctx, sourceID, items); err != nil {
		// The sink is a hand-off point; a failed hand-off is reported to
		// the model as text so it can retry or adjust.
		return fmt.Sprintf("Error: failed to submit collected data: %v", err)
	}

	return fmt.Sprintf("Successfully collected %d items. Data submitted for processing.", len(items))
}

// availableSkills renders the sorted skill names for error messages.
func (e *ExecutionStep) availableSkills() string {
	names := e.skills.ListSkills()
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, ", ")
}

// toStringSlice coerces a decoded JSON array into strings, dropping
// non-string entries.
func toStringSlice(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				items = append(items, s)
			}
		}
		return items
	}
	return nil
}

// Interface check: the prompt loader is the production skill source.
var _ SkillLoader = (*prompt.Loader)(nil)
