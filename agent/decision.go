package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hairizuan-noorazman/browser-agent/detector"
	"github.com/hairizuan-noorazman/browser-agent/llm"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// DecisionStep invokes the model to decide the next action. The system
// instructions are the base prompt plus a textual rendering of the
// currently detected elements; the proposal comes back unmodified.
type DecisionStep struct {
	llm          llm.LLM
	systemPrompt string
	tools        []llm.ToolSpec
	logger       logger.Logger
}

// NewDecisionStep creates a decision step bound to a fixed tool set.
func NewDecisionStep(model llm.LLM, systemPrompt string, tools []llm.ToolSpec, log logger.Logger) *DecisionStep {
	return &DecisionStep{
		llm:          model,
		systemPrompt: systemPrompt,
		tools:        tools,
		logger:       log,
	}
}

// Decide produces the agent's next proposal. Model failures are surfaced to
// the caller as fatal for this iteration; retry policy belongs to the
// caller, not here.
func (d *DecisionStep) Decide(ctx context.Context, state AgentState) (Message, error) {
	system := d.systemPrompt
	if rendered := detector.FormatForPrompt(state.DetectedElements); rendered != "" {
		system += "\n\n" + rendered
	}

	messages, err := conversationToLLM(state.Conversation)
	if err != nil {
		return Message{}, err
	}

	resp, err := d.llm.Generate(ctx, system, messages, d.tools)
	if err != nil {
		return Message{}, fmt.Errorf("model invocation failed: %w", err)
	}

	requests := make([]ToolRequest, 0, len(resp.ToolRequests))
	for _, req := range resp.ToolRequests {
		requests = append(requests, ToolRequest{
			CallID: req.ID,
			Name:   req.Name,
			Args:   req.Args,
		})
	}

	d.logger.Debug(ctx, "decision step completed", map[string]interface{}{
		"tool_requests": len(requests),
		"has_text":      resp.Text != "",
	})

	return NewProposalMessage(resp.Text, requests), nil
}

// screenshotMediaType reads the media type out of a data-URL prefix.
// Raw base64 payloads and unrecognizable prefixes default to PNG.
func screenshotMediaType(screenshot string) string {
	if !strings.HasPrefix(screenshot, "data:") {
		return "image/png"
	}
	rest := screenshot[len("data:"):]
	if idx := strings.IndexAny(rest, ";,"); idx > 0 {
		if mediaType := rest[:idx]; strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}
	return "image/png"
}

// conversationToLLM maps the agent conversation onto generic LLM messages.
// User messages become user turns (text plus optional image), proposals
// become assistant turns with tool_use blocks, and tool results become user
// turns carrying tool_result blocks, which is the shape tool-calling model
// APIs expect.
func conversationToLLM(conversation []Message) ([]llm.Message, error) {
	messages := make([]llm.Message, 0, len(conversation))

	for _, msg := range conversation {
		switch msg.Type {
		case MessageTypeUser:
			blocks := []llm.ContentBlock{}
			if msg.Text != "" {
				blocks = append(blocks, llm.TextBlock(msg.Text))
			}
			if msg.Screenshot != "" {
				blocks = append(blocks, llm.ImageBlock(screenshotMediaType(msg.Screenshot), msg.Screenshot))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, llm.TextBlock(""))
			}
			messages = append(messages, llm.Message{Role: llm.RoleUser, Blocks: blocks})

		case MessageTypeProposal:
			blocks := []llm.ContentBlock{}
			if msg.Text != "" {
				blocks = append(blocks, llm.TextBlock(msg.Text))
			}
			for _, req := range msg.ToolRequests {
				blocks = append(blocks, llm.ContentBlock{
					Type:       llm.BlockTypeToolUse,
					ToolCallID: req.CallID,
					ToolName:   req.Name,
					ToolArgs:   req.Args,
				})
			}
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Blocks: blocks})

		case MessageTypeToolResult:
			messages = append(messages, llm.Message{
				Role:   llm.RoleUser,
				Blocks: []llm.ContentBlock{llm.ToolResultBlock(msg.CallID, msg.Text)},
			})

		default:
			return nil, fmt.Errorf("unknown message type %q in conversation", msg.Type)
		}
	}

	return messages, nil
}
