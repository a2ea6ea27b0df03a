package agent

import "github.com/hairizuan-noorazman/browser-agent/llm"

// ToolKind is the closed set of tools the agent can request. Each kind
// carries a local/remote tag: local tools resolve in-process, remote tools
// suspend the control loop and hand off to the browser-side executor.
type ToolKind string

const (
	ToolClick       ToolKind = "click"
	ToolTypeText    ToolKind = "type_text"
	ToolScroll      ToolKind = "scroll"
	ToolDrag        ToolKind = "drag"
	ToolWait        ToolKind = "wait"
	ToolScreenshot  ToolKind = "screenshot"
	ToolLoadSkill   ToolKind = "load_skill"
	ToolCollectData ToolKind = "collect_data"
)

// ParseToolKind maps a tool name onto the closed variant set.
func ParseToolKind(name string) (ToolKind, bool) {
	switch kind := ToolKind(name); kind {
	case ToolClick, ToolTypeText, ToolScroll, ToolDrag, ToolWait,
		ToolScreenshot, ToolLoadSkill, ToolCollectData:
		return kind, true
	}
	return "", false
}

// Local reports whether the tool resolves in-process without the browser.
func (k ToolKind) Local() bool {
	switch k {
	case ToolLoadSkill, ToolCollectData:
		return true
	}
	return false
}

// gridCoordSchema is the JSON schema fragment for a 0-100 grid coordinate.
func gridCoordSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     100,
		"description": description,
	}
}

// ToolSpecs returns the fixed tool specs the model is bound to, including
// the dynamic list of available skills in the load_skill description.
func ToolSpecs(availableSkills []string) []llm.ToolSpec {
	loadSkillDescription := "Load a specialized skill prompt for domain-specific browser automation. " +
		"Use this when a site or task needs specialized knowledge."
	if len(availableSkills) > 0 {
		loadSkillDescription += " Available skills:"
		for _, name := range availableSkills {
			loadSkillDescription += " " + name
		}
	}

	return []llm.ToolSpec{
		{
			Name:        string(ToolClick),
			Description: "Click at a position on screen using grid coordinates (0-100 scale). (0,0) is top-left, (50,50) is center, (100,100) is bottom-right.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": gridCoordSchema("X position (0=left, 50=center, 100=right)"),
					"y": gridCoordSchema("Y position (0=top, 50=center, 100=bottom)"),
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        string(ToolTypeText),
			Description: "Type text at the current cursor position. Click an input field or text area first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to type",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name: string(ToolScroll),
			Description: "Scroll a specific scrollable area or the entire page. Pages can have multiple " +
				"scrollable areas (sidebars, chat lists, message panels); pass x,y to target one, omit them to scroll the whole page.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"direction": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"up", "down", "left", "right"},
						"description": "Scroll direction",
					},
					"amount": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"default":     300,
						"description": "Scroll amount in pixels",
					},
					"x": gridCoordSchema("Optional X coordinate (0-100 grid) of the scrollable area to target"),
					"y": gridCoordSchema("Optional Y coordinate (0-100 grid) of the scrollable area to target"),
				},
				"required": []string{"direction"},
			},
		},
		{
			Name:        string(ToolDrag),
			Description: "Drag from a start position to an end position using grid coordinates. Useful for drag-and-drop, selecting text, or moving elements.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start_x": gridCoordSchema("Start X position (0-100)"),
					"start_y": gridCoordSchema("Start Y position (0-100)"),
					"end_x":   gridCoordSchema("End X position (0-100)"),
					"end_y":   gridCoordSchema("End Y position (0-100)"),
				},
				"required": []string{"start_x", "start_y", "end_x", "end_y"},
			},
		},
		{
			Name:        string(ToolWait),
			Description: "Wait for the given number of milliseconds. Use for page animations and loading states.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ms": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     10000,
						"description": "Wait time in milliseconds",
					},
				},
				"required": []string{"ms"},
			},
		},
		{
			Name:        string(ToolScreenshot),
			Description: "Request a fresh screenshot of the current page, especially after an action that might have changed the content.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reason": map[string]interface{}{
						"type":        "string",
						"default":     "",
						"description": "Reason for requesting the screenshot",
					},
				},
			},
		},
		{
			Name:        string(ToolLoadSkill),
			Description: loadSkillDescription,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"skill_name": map[string]interface{}{
						"type":        "string",
						"description": "Name of the skill to load, e.g. 'whatsapp-web'",
					},
				},
				"required": []string{"skill_name"},
			},
		},
		{
			Name: string(ToolCollectData),
			Description: "Submit collected data from the current page for storage and processing. " +
				"Accepts a list of strings; each string can be a single item or a comprehensive summary. " +
				"Calling this does NOT end the task.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "List of strings with extracted information",
					},
				},
				"required": []string{"data"},
			},
		},
	}
}
