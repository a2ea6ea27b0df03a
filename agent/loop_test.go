package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/browser-agent/detector"
	"github.com/hairizuan-noorazman/browser-agent/llm"
	"github.com/hairizuan-noorazman/browser-agent/logger"
)

type loopFixture struct {
	model    *scriptedLLM
	detector *stubDetector
	sink     *recordingSink
	loop     *Loop
}

func newLoopFixture(responses []*llm.Response, skills map[string]string, maxIterations int) *loopFixture {
	log := logger.NewTestLogger()
	model := &scriptedLLM{responses: responses}
	det := &stubDetector{}
	sink := &recordingSink{}

	perception := NewPerceptionStep(det, true, log)
	decision := NewDecisionStep(model, "You are a browser automation agent.", ToolSpecs(nil), log)
	execution := NewExecutionStep(&stubSkills{skills: skills}, sink, log)

	return &loopFixture{
		model:    model,
		detector: det,
		sink:     sink,
		loop:     NewLoop(perception, decision, execution, maxIterations, log),
	}
}

func TestLoop_Start_RequiresUserMessage(t *testing.T) {
	f := newLoopFixture(nil, nil, 0)

	_, err := f.loop.Start(context.Background(), AgentState{})
	assert.ErrorIs(t, err, ErrNoUserMessage)
}

func TestLoop_TerminatesOnTextProposal(t *testing.T) {
	f := newLoopFixture([]*llm.Response{textResponse("Task complete: inbox is empty.")}, nil, 0)

	result, err := f.loop.Start(context.Background(), NewState("check the inbox", "c2hvdA==", testViewport()))
	require.NoError(t, err)

	assert.True(t, result.Finished())
	assert.Equal(t, "Task complete: inbox is empty.", result.FinalText)
	assert.Nil(t, result.Pending)

	// user + proposal
	require.Len(t, result.State.Conversation, 2)
	assert.Equal(t, MessageTypeProposal, result.State.Conversation[1].Type)
}

func TestLoop_SuspendsOnRemoteTool(t *testing.T) {
	f := newLoopFixture([]*llm.Response{
		toolResponse("Clicking the center.", "call-1", "click", map[string]interface{}{"x": 50, "y": 50}),
	}, nil, 0)

	result, err := f.loop.Start(context.Background(), NewState("click the middle", "c2hvdA==", testViewport()))
	require.NoError(t, err)

	assert.False(t, result.Finished())
	require.NotNil(t, result.Pending)
	assert.Equal(t, "call-1", result.Pending.CallID)
	assert.Equal(t, SuspendPayload{
		Action:            "click",
		Args:              map[string]interface{}{"x": 50, "y": 50},
		RequestScreenshot: true,
	}, result.Pending.Payload)

	// The proposal is recorded before suspension so the resumed state can
	// pair the tool result with its request.
	last := result.State.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, MessageTypeProposal, last.Type)
}

func TestLoop_ResumeContinuesToCompletion(t *testing.T) {
	f := newLoopFixture([]*llm.Response{
		toolResponse("Clicking.", "call-1", "click", map[string]interface{}{"x": 50, "y": 50}),
		textResponse("Done."),
	}, nil, 0)

	state := NewState("click the middle", "b2xk", testViewport())
	suspended, err := f.loop.Start(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, suspended.Pending)

	result, err := f.loop.Resume(context.Background(), suspended.State, suspended.Pending.CallID, ToolOutcome{
		Result:     "Clicked at (640, 400)",
		Screenshot: "bmV3",
		Viewport:   &detector.Viewport{Width: 1280, Height: 800},
	})
	require.NoError(t, err)

	assert.True(t, result.Finished())
	assert.Equal(t, "Done.", result.FinalText)

	// user, proposal, tool result, final proposal
	require.Len(t, result.State.Conversation, 4)
	assert.Equal(t, MessageTypeToolResult, result.State.Conversation[2].Type)
	assert.Equal(t, "call-1", result.State.Conversation[2].CallID)
	assert.Equal(t, "bmV3", result.State.CurrentScreenshot)
}

func TestLoop_ResumeScreenshotTriggersFreshPerception(t *testing.T) {
	f := newLoopFixture([]*llm.Response{
		toolResponse("Clicking.", "call-1", "click", map[string]interface{}{"x": 50, "y": 50}),
		textResponse("Done."),
	}, nil, 0)
	f.detector.elements = sampleElements()

	suspended, err := f.loop.Start(context.Background(), NewState("click", "b2xk", testViewport()))
	require.NoError(t, err)
	callsBeforeResume := f.detector.calls

	result, err := f.loop.Resume(context.Background(), suspended.State, suspended.Pending.CallID, ToolOutcome{
		Result:     "Clicked",
		Screenshot: "bmV3",
	})
	require.NoError(t, err)

	// Perception ran again, against the new screenshot.
	assert.Greater(t, f.detector.calls, callsBeforeResume)
	assert.Equal(t, "bmV3", f.detector.lastShot)
	require.Len(t, result.State.DetectedElements, 1)
}

func TestLoop_LocalToolRoundTrip(t *testing.T) {
	f := newLoopFixture([]*llm.Response{
		toolResponse("Loading the WhatsApp skill.", "call-1", "load_skill", map[string]interface{}{"skill_name": "whatsapp-web"}),
		textResponse("Skill loaded, proceeding."),
	}, map[string]string{"whatsapp-web": "## WhatsApp Web automation notes"}, 0)

	result, err := f.loop.Start(context.Background(), NewState("message Alice on WhatsApp", "c2hvdA==", testViewport()))
	require.NoError(t, err)

	// The skill resolves in-process; no suspension happened.
	assert.True(t, result.Finished())
	assert.Equal(t, "Skill loaded, proceeding.", result.FinalText)

	// user, proposal, tool result, final proposal
	require.Len(t, result.State.Conversation, 4)
	toolResult := result.State.Conversation[2]
	assert.Equal(t, MessageTypeToolResult, toolResult.Type)
	assert.Equal(t, "call-1", toolResult.CallID)
	assert.Equal(t, "## WhatsApp Web automation notes", toolResult.Text)
}

func TestLoop_UnknownSkillRoundTrip(t *testing.T) {
	f := newLoopFixture([]*llm.Response{
		toolResponse("Trying a skill.", "call-1", "load_skill", map[string]interface{}{"skill_name": "ghost"}),
		textResponse("No such skill, continuing without it."),
	}, map[string]string{"whatsapp-web": "notes"}, 0)

	result, err := f.loop.Start(context.Background(), NewState("do a thing", "c2hvdA==", testViewport()))
	require.NoError(t, err)

	assert.True(t, result.Finished())
	toolResult := result.State.Conversation[2]
	assert.Equal(t, "Error: Skill 'ghost' not found.\n\nAvailable skills: whatsapp-web", toolResult.Text)
}

func TestLoop_CollectDataFlow(t *testing.T) {
	f := newLoopFixture([]*llm.Response{
		toolResponse("Submitting findings.", "call-1", "collect_data", map[string]interface{}{
			"data": []interface{}{"Alice: hello", "Bob: bye"},
		}),
		textResponse("Data captured."),
	}, nil, 0)

	result, err := f.loop.Start(context.Background(), NewState("collect the chat", "c2hvdA==", testViewport()))
	require.NoError(t, err)

	assert.True(t, result.Finished())
	require.Len(t, f.sink.batches, 1)
	assert.Equal(t, []string{"Alice: hello", "Bob: bye"}, f.sink.batches[0])
	assert.Equal(t, "Successfully collected 2 items. Data submitted for processing.", result.State.Conversation[2].Text)
}

func TestLoop_IterationLimit(t *testing.T) {
	// The model keeps loading the same skill forever.
	responses := make([]*llm.Response, 5)
	for i := range responses {
		responses[i] = toolResponse("again", "call", "load_skill", map[string]interface{}{"skill_name": "whatsapp-web"})
	}
	f := newLoopFixture(responses, map[string]string{"whatsapp-web": "notes"}, 3)

	_, err := f.loop.Start(context.Background(), NewState("loop forever", "c2hvdA==", testViewport()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIterationLimit)
}

func TestLoop_ContextCancellation(t *testing.T) {
	f := newLoopFixture([]*llm.Response{textResponse("never reached")}, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.loop.Start(ctx, NewState("task", "", nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoop_ModelErrorPropagates(t *testing.T) {
	f := newLoopFixture(nil, nil, 0)
	f.model.err = errors.New("backend unavailable")

	_, err := f.loop.Start(context.Background(), NewState("task", "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model invocation failed")
	assert.Contains(t, err.Error(), "backend unavailable")
}
