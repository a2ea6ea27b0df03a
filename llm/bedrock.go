package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// BedrockLLM implements LLM using AWS Bedrock with anthropic-format
// messages, including tool use and image content blocks.
type BedrockLLM struct {
	client    *bedrockruntime.Client
	modelID   string
	maxTokens int
	logger    logger.Logger
}

// NewBedrockLLM creates a Bedrock-backed LLM.
func NewBedrockLLM(ctx context.Context, region, modelID string, maxTokens int, log logger.Logger) (*BedrockLLM, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockLLM{
		client:    bedrockruntime.NewFromConfig(cfg),
		modelID:   modelID,
		maxTokens: maxTokens,
		logger:    log,
	}, nil
}

// Generate invokes the Bedrock model and maps the anthropic response back to
// the generic Response shape.
func (b *BedrockLLM) Generate(ctx context.Context, system string, messages []Message, tools []ToolSpec) (*Response, error) {
	payload, err := buildAnthropicRequest(system, messages, tools, b.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to build model request: %w", err)
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	resp, err := parseAnthropicResponse(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	b.logger.Debug(ctx, "model generation completed", map[string]interface{}{
		"stop_reason":   resp.StopReason,
		"tool_requests": len(resp.ToolRequests),
	})

	return resp, nil
}

// buildAnthropicRequest marshals the generic conversation into the anthropic
// messages payload Bedrock expects.
func buildAnthropicRequest(system string, messages []Message, tools []ToolSpec, maxTokens int) ([]byte, error) {
	type anthropicTool struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description"`
		InputSchema map[string]interface{} `json:"input_schema"`
	}

	requestBody := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        maxTokens,
	}

	if system != "" {
		requestBody["system"] = system
	}

	if len(tools) > 0 {
		anthropicTools := make([]anthropicTool, len(tools))
		for i, t := range tools {
			anthropicTools[i] = anthropicTool{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: t.InputSchema,
			}
		}
		requestBody["tools"] = anthropicTools
	}

	anthropicMessages := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		content := make([]map[string]interface{}, 0, len(msg.Blocks))
		for _, block := range msg.Blocks {
			converted, err := convertBlock(block)
			if err != nil {
				return nil, err
			}
			content = append(content, converted)
		}
		anthropicMessages = append(anthropicMessages, map[string]interface{}{
			"role":    string(msg.Role),
			"content": content,
		})
	}
	requestBody["messages"] = anthropicMessages

	return json.Marshal(requestBody)
}

func convertBlock(block ContentBlock) (map[string]interface{}, error) {
	switch block.Type {
	case BlockTypeText:
		return map[string]interface{}{
			"type": "text",
			"text": block.Text,
		}, nil
	case BlockTypeImage:
		mediaType := block.ImageMediaType
		if mediaType == "" {
			mediaType = "image/png"
		}
		return map[string]interface{}{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": mediaType,
				"data":       stripDataURLPrefix(block.ImageData),
			},
		}, nil
	case BlockTypeToolUse:
		args := block.ToolArgs
		if args == nil {
			args = map[string]interface{}{}
		}
		return map[string]interface{}{
			"type":  "tool_use",
			"id":    block.ToolCallID,
			"name":  block.ToolName,
			"input": args,
		}, nil
	case BlockTypeToolResult:
		return map[string]interface{}{
			"type":        "tool_result",
			"tool_use_id": block.ToolCallID,
			"content":     block.ToolResult,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported content block type: %q", block.Type)
	}
}

// parseAnthropicResponse maps the anthropic response body onto Response.
func parseAnthropicResponse(body []byte) (*Response, error) {
	var parsed struct {
		Content []struct {
			Type  string                 `json:"type"`
			Text  string                 `json:"text"`
			ID    string                 `json:"id"`
			Name  string                 `json:"name"`
			Input map[string]interface{} `json:"input"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	resp := &Response{StopReason: parsed.StopReason}
	var textParts []string

	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_use":
			resp.ToolRequests = append(resp.ToolRequests, ToolRequest{
				ID:   block.ID,
				Name: block.Name,
				Args: block.Input,
			})
		}
	}

	resp.Text = strings.TrimSpace(strings.Join(textParts, "\n"))
	return resp, nil
}

// stripDataURLPrefix drops a data:<mime>;base64, prefix if present so image
// payloads can be passed through unchanged from browser captures.
func stripDataURLPrefix(data string) string {
	if strings.HasPrefix(data, "data:") {
		if idx := strings.Index(data, ","); idx != -1 {
			return data[idx+1:]
		}
	}
	return data
}
