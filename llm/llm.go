// Package llm abstracts the language model capability: given system
// instructions, a conversation, and a set of tool specs, produce a response
// that is text and/or a list of requested tool calls. Implementations can
// use different backends (AWS Bedrock, local stubs for tests, etc.)
package llm

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType identifies the kind of content carried by a block.
type BlockType string

const (
	BlockTypeText       BlockType = "text"
	BlockTypeImage      BlockType = "image"
	BlockTypeToolUse    BlockType = "tool_use"
	BlockTypeToolResult BlockType = "tool_result"
)

// ContentBlock is one piece of message content. Exactly the fields relevant
// to its Type are set.
type ContentBlock struct {
	Type BlockType

	// Text content (BlockTypeText)
	Text string

	// Base64 image payload and its media type (BlockTypeImage)
	ImageData      string
	ImageMediaType string

	// Tool call requested by the assistant (BlockTypeToolUse)
	ToolCallID string
	ToolName   string
	ToolArgs   map[string]interface{}

	// Result for a prior tool call (BlockTypeToolResult); reuses ToolCallID
	ToolResult string
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeText, Text: text}
}

// ImageBlock builds an image content block from a base64 payload.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{Type: BlockTypeImage, ImageMediaType: mediaType, ImageData: data}
}

// ToolResultBlock builds a tool result content block.
func ToolResultBlock(callID, result string) ContentBlock {
	return ContentBlock{Type: BlockTypeToolResult, ToolCallID: callID, ToolResult: result}
}

// Message is one conversation turn.
type Message struct {
	Role   Role
	Blocks []ContentBlock
}

// ToolSpec describes a tool the model may request.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// ToolRequest is a tool call requested by the model.
type ToolRequest struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// Response is the model output for one generation call.
type Response struct {
	Text         string
	ToolRequests []ToolRequest
	StopReason   string
}

// LLM is the language model capability.
type LLM interface {
	// Generate invokes the model with system instructions, the conversation
	// so far, and the tools it is allowed to request.
	Generate(ctx context.Context, system string, messages []Message, tools []ToolSpec) (*Response, error)
}
