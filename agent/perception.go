package agent

import (
	"context"

	"github.com/hairizuan-noorazman/browser-agent/detector"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// ElementDetector is the perception capability consumed by the loop.
// *detector.Detector satisfies it.
type ElementDetector interface {
	Detect(ctx context.Context, screenshotBase64 string, viewport detector.Viewport) []detector.DetectedElement
}

// PerceptionStep refreshes the detected element list from the current
// screenshot. The enabled flag is threaded in explicitly so the step is
// testable without touching process environment.
type PerceptionStep struct {
	detector ElementDetector
	enabled  bool
	logger   logger.Logger
}

// NewPerceptionStep creates a perception step.
func NewPerceptionStep(det ElementDetector, enabled bool, log logger.Logger) *PerceptionStep {
	return &PerceptionStep{
		detector: det,
		enabled:  enabled,
		logger:   log,
	}
}

// Perceive returns a partial update carrying the fresh element list. When
// perception is disabled, or the state has no screenshot or viewport, it
// returns an explicit empty list rather than an error: the decision step
// must tolerate zero elements at all times.
func (p *PerceptionStep) Perceive(ctx context.Context, state AgentState) StateUpdate {
	if !p.enabled || state.CurrentScreenshot == "" || state.Viewport == nil {
		return StateUpdate{DetectedElements: []detector.DetectedElement{}}
	}

	elements := p.detector.Detect(ctx, state.CurrentScreenshot, *state.Viewport)

	p.logger.Debug(ctx, "perception step completed", map[string]interface{}{
		"elements": len(elements),
	})

	return StateUpdate{DetectedElements: elements}
}
