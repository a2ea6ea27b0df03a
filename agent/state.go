// Package agent implements the decision/perception loop of the browser
// automation agent: the agent state threaded through every step, the
// perception, decision, and execution steps, and the control loop that
// wires them together with an explicit suspend/resume protocol for
// browser-side tool execution.
package agent

import (
	"errors"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/detector"
)

var (
	// ErrNoUserMessage is returned when a run starts with an empty conversation.
	ErrNoUserMessage = errors.New("conversation must start with a user message")

	// ErrIterationLimit is returned when the control loop exceeds its
	// iteration budget without terminating.
	ErrIterationLimit = errors.New("iteration limit exceeded")
)

// MessageType discriminates conversation entries.
type MessageType string

const (
	// MessageTypeUser is input from the task issuer: instruction text and
	// optionally a screenshot.
	MessageTypeUser MessageType = "user"

	// MessageTypeProposal is the agent's proposed next step: text and/or
	// requested tool calls.
	MessageTypeProposal MessageType = "proposal"

	// MessageTypeToolResult is the outcome of a tool call.
	MessageTypeToolResult MessageType = "tool_result"
)

// ToolRequest is a tool call requested by the agent in a proposal.
type ToolRequest struct {
	CallID string                 `json:"call_id"`
	Name   string                 `json:"name"`
	Args   map[string]interface{} `json:"args"`
}

// ToolOutcome is the result of executing a tool call, produced either
// synchronously (local tools) or by the external browser actor (remote
// tools).
type ToolOutcome struct {
	Result     string             `json:"result"`
	Screenshot string             `json:"screenshot,omitempty"`
	Viewport   *detector.Viewport `json:"viewport,omitempty"`
}

// Message is one conversation entry. Exactly the fields relevant to its
// Type are set; the conversation is append-only and never reordered.
type Message struct {
	Type MessageType `json:"type"`

	// Text content: the user instruction, the proposal text, or the tool
	// result content depending on Type.
	Text string `json:"text,omitempty"`

	// Screenshot attached to a user message (base64, may be a data URL).
	Screenshot string `json:"screenshot,omitempty"`

	// Tool calls requested by a proposal.
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`

	// CallID links a tool result to the request it answers.
	CallID string `json:"call_id,omitempty"`
}

// NewUserMessage builds a user message carrying instruction text and an
// optional screenshot.
func NewUserMessage(text, screenshot string) Message {
	return Message{Type: MessageTypeUser, Text: text, Screenshot: screenshot}
}

// NewProposalMessage builds an agent proposal.
func NewProposalMessage(text string, requests []ToolRequest) Message {
	return Message{Type: MessageTypeProposal, Text: text, ToolRequests: requests}
}

// NewToolResultMessage builds a tool result entry.
func NewToolResultMessage(callID, content string) Message {
	return Message{Type: MessageTypeToolResult, CallID: callID, Text: content}
}

// AgentState is the aggregate threaded through every step of one task
// execution. It is owned by the control loop; steps read it and return
// partial StateUpdate records instead of mutating it. The whole value is
// JSON-serializable so a run can be checkpointed between any two
// iterations, which is what makes the suspend/resume protocol restartable.
type AgentState struct {
	Conversation      []Message                  `json:"conversation"`
	CurrentScreenshot string                     `json:"current_screenshot,omitempty"`
	Viewport          *detector.Viewport         `json:"viewport,omitempty"`
	DetectedElements  []detector.DetectedElement `json:"detected_elements"`

	// DataSourceID attributes collected data to a data source. Nil means
	// the task is ad hoc and submissions are stored unattributed.
	DataSourceID uuid.UUID `json:"data_source_id"`
}

// NewState builds the initial state for a task: one user message with the
// instruction and optional screenshot, plus the real viewport.
func NewState(instruction, screenshot string, viewport *detector.Viewport) AgentState {
	return AgentState{
		Conversation:      []Message{NewUserMessage(instruction, screenshot)},
		CurrentScreenshot: screenshot,
		Viewport:          viewport,
		DetectedElements:  []detector.DetectedElement{},
	}
}

// LastMessage returns the newest conversation entry, or nil when empty.
func (s AgentState) LastMessage() *Message {
	if len(s.Conversation) == 0 {
		return nil
	}
	return &s.Conversation[len(s.Conversation)-1]
}

// StateUpdate is a partial update produced by a step and merged into
// AgentState by the control loop. Nil fields mean "unchanged"; a non-nil
// DetectedElements slice (even empty) replaces the element list.
type StateUpdate struct {
	Messages         []Message
	Screenshot       *string
	Viewport         *detector.Viewport
	DetectedElements []detector.DetectedElement
}

// Empty reports whether the update changes nothing.
func (u StateUpdate) Empty() bool {
	return len(u.Messages) == 0 && u.Screenshot == nil && u.Viewport == nil && u.DetectedElements == nil
}

// Apply merges an update into the state and returns the new state. A
// screenshot change always clears the detected elements so stale elements
// can never survive into the next decision; the update may then replace
// them explicitly.
func (s AgentState) Apply(u StateUpdate) AgentState {
	next := s

	if len(u.Messages) > 0 {
		conversation := make([]Message, 0, len(s.Conversation)+len(u.Messages))
		conversation = append(conversation, s.Conversation...)
		conversation = append(conversation, u.Messages...)
		next.Conversation = conversation
	}

	if u.Screenshot != nil {
		next.CurrentScreenshot = *u.Screenshot
		next.DetectedElements = []detector.DetectedElement{}
	}

	if u.Viewport != nil {
		viewport := *u.Viewport
		next.Viewport = &viewport
	}

	if u.DetectedElements != nil {
		next.DetectedElements = u.DetectedElements
	}

	return next
}
