package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-agent/detector"
	"github.com/hairizuan-noorazman/browser-agent/llm"
)

// scriptedLLM replays a fixed sequence of responses and records what it was
// invoked with.
type scriptedLLM struct {
	responses []*llm.Response
	err       error

	calls    int
	systems  []string
	messages [][]llm.Message
	tools    [][]llm.ToolSpec
}

func (s *scriptedLLM) Generate(ctx context.Context, system string, messages []llm.Message, tools []llm.ToolSpec) (*llm.Response, error) {
	s.systems = append(s.systems, system)
	s.messages = append(s.messages, messages)
	s.tools = append(s.tools, tools)

	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.responses) {
		return nil, fmt.Errorf("scripted LLM exhausted after %d calls", s.calls)
	}

	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func textResponse(text string) *llm.Response {
	return &llm.Response{Text: text, StopReason: "end_turn"}
}

func toolResponse(text, callID, name string, args map[string]interface{}) *llm.Response {
	return &llm.Response{
		Text:       text,
		StopReason: "tool_use",
		ToolRequests: []llm.ToolRequest{
			{ID: callID, Name: name, Args: args},
		},
	}
}

// stubDetector returns a fixed element list and counts invocations.
type stubDetector struct {
	elements []detector.DetectedElement
	calls    int
	lastShot string
}

func (d *stubDetector) Detect(ctx context.Context, screenshotBase64 string, viewport detector.Viewport) []detector.DetectedElement {
	d.calls++
	d.lastShot = screenshotBase64
	if d.elements == nil {
		return []detector.DetectedElement{}
	}
	return d.elements
}

func sampleElements() []detector.DetectedElement {
	return []detector.DetectedElement{
		{
			ElementType: detector.ElementTypeButton,
			Caption:     "Send",
			BBox:        detector.BoundingBox{XMin: 1216, YMin: 720, XMax: 1264, YMax: 752},
			GridCenter:  detector.GridCoords{X: 95, Y: 92},
			Confidence:  0.9,
		},
	}
}

// stubSkills serves skills from a map.
type stubSkills struct {
	skills map[string]string
}

func (s *stubSkills) LoadSkill(name string) (string, error) {
	content, ok := s.skills[name]
	if !ok {
		return "", errors.New("skill not found")
	}
	return content, nil
}

func (s *stubSkills) ListSkills() []string {
	names := make([]string, 0, len(s.skills))
	for name := range s.skills {
		names = append(names, name)
	}
	// Deterministic order for assertions.
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if names[j] < names[i] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	return names
}

// recordingSink captures collect_data submissions with their source tag.
type recordingSink struct {
	batches   [][]string
	sourceIDs []uuid.UUID
	err       error
}

func (s *recordingSink) Submit(ctx context.Context, sourceID uuid.UUID, items []string) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, items)
	s.sourceIDs = append(s.sourceIDs, sourceID)
	return nil
}

func testViewport() *detector.Viewport {
	return &detector.Viewport{Width: 1280, Height: 800}
}
