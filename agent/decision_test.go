package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/browser-agent/llm"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

func newDecisionStep(model llm.LLM) *DecisionStep {
	return NewDecisionStep(model, "You are a browser automation agent.", ToolSpecs(nil), logger.NewTestLogger())
}

func TestDecisionStep_TextProposal(t *testing.T) {
	model := &scriptedLLM{responses: []*llm.Response{textResponse("All done.")}}
	step := newDecisionStep(model)

	proposal, err := step.Decide(context.Background(), NewState("task", "", nil))
	require.NoError(t, err)

	assert.Equal(t, MessageTypeProposal, proposal.Type)
	assert.Equal(t, "All done.", proposal.Text)
	assert.Empty(t, proposal.ToolRequests)
}

func TestDecisionStep_ToolProposal(t *testing.T) {
	model := &scriptedLLM{responses: []*llm.Response{
		toolResponse("Clicking the send button.", "call-1", "click", map[string]interface{}{"x": 95, "y": 92}),
	}}
	step := newDecisionStep(model)

	proposal, err := step.Decide(context.Background(), NewState("task", "", nil))
	require.NoError(t, err)

	require.Len(t, proposal.ToolRequests, 1)
	assert.Equal(t, "call-1", proposal.ToolRequests[0].CallID)
	assert.Equal(t, "click", proposal.ToolRequests[0].Name)
	assert.Equal(t, map[string]interface{}{"x": 95, "y": 92}, proposal.ToolRequests[0].Args)
}

func TestDecisionStep_SystemPromptCarriesElements(t *testing.T) {
	model := &scriptedLLM{responses: []*llm.Response{textResponse("ok"), textResponse("ok")}}
	step := newDecisionStep(model)

	// Without elements the base prompt is sent verbatim.
	state := NewState("task", "", nil)
	_, err := step.Decide(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "You are a browser automation agent.", model.systems[0])

	// With elements the rendering is appended.
	state.DetectedElements = sampleElements()
	_, err = step.Decide(context.Background(), state)
	require.NoError(t, err)
	assert.Contains(t, model.systems[1], "You are a browser automation agent.")
	assert.Contains(t, model.systems[1], "Detected UI Elements:")
	assert.Contains(t, model.systems[1], `[1] Button "Send" at grid (95, 92)`)
}

func TestDecisionStep_ModelError(t *testing.T) {
	model := &scriptedLLM{err: errors.New("throttled")}
	step := newDecisionStep(model)

	_, err := step.Decide(context.Background(), NewState("task", "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model invocation failed")
	assert.Contains(t, err.Error(), "throttled")
}

func TestConversationToLLM(t *testing.T) {
	conversation := []Message{
		NewUserMessage("open the inbox", "c2hvdA=="),
		NewProposalMessage("Clicking inbox.", []ToolRequest{
			{CallID: "call-1", Name: "click", Args: map[string]interface{}{"x": 10, "y": 20}},
		}),
		NewToolResultMessage("call-1", "Clicked at (128, 160)"),
	}

	messages, err := conversationToLLM(conversation)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	user := messages[0]
	assert.Equal(t, llm.RoleUser, user.Role)
	require.Len(t, user.Blocks, 2)
	assert.Equal(t, llm.BlockTypeText, user.Blocks[0].Type)
	assert.Equal(t, "open the inbox", user.Blocks[0].Text)
	assert.Equal(t, llm.BlockTypeImage, user.Blocks[1].Type)

	proposal := messages[1]
	assert.Equal(t, llm.RoleAssistant, proposal.Role)
	require.Len(t, proposal.Blocks, 2)
	assert.Equal(t, llm.BlockTypeText, proposal.Blocks[0].Type)
	assert.Equal(t, llm.BlockTypeToolUse, proposal.Blocks[1].Type)
	assert.Equal(t, "call-1", proposal.Blocks[1].ToolCallID)
	assert.Equal(t, "click", proposal.Blocks[1].ToolName)

	result := messages[2]
	assert.Equal(t, llm.RoleUser, result.Role)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, llm.BlockTypeToolResult, result.Blocks[0].Type)
	assert.Equal(t, "call-1", result.Blocks[0].ToolCallID)
}

func TestConversationToLLM_ScreenshotMediaType(t *testing.T) {
	tests := []struct {
		name       string
		screenshot string
		want       string
	}{
		{"raw base64 defaults to png", "c2hvdA==", "image/png"},
		{"png data URL", "data:image/png;base64,c2hvdA==", "image/png"},
		{"jpeg data URL", "data:image/jpeg;base64,c2hvdA==", "image/jpeg"},
		{"non-image data URL defaults to png", "data:text/plain;base64,c2hvdA==", "image/png"},
		{"bare data prefix defaults to png", "data:c2hvdA==", "image/png"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			messages, err := conversationToLLM([]Message{NewUserMessage("look", tc.screenshot)})
			require.NoError(t, err)
			require.Len(t, messages, 1)
			require.Len(t, messages[0].Blocks, 2)
			assert.Equal(t, tc.want, messages[0].Blocks[1].ImageMediaType)
		})
	}
}

func TestConversationToLLM_UnknownType(t *testing.T) {
	_, err := conversationToLLM([]Message{{Type: MessageType("mystery")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown message type")
}

func TestConversationToLLM_EmptyUserMessage(t *testing.T) {
	messages, err := conversationToLLM([]Message{NewUserMessage("", "")})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Blocks, 1)
	assert.Equal(t, llm.BlockTypeText, messages[0].Blocks[0].Type)
}
