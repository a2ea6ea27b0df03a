package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolKind(t *testing.T) {
	tests := []struct {
		name  string
		known bool
	}{
		{"click", true},
		{"type_text", true},
		{"scroll", true},
		{"drag", true},
		{"wait", true},
		{"screenshot", true},
		{"load_skill", true},
		{"collect_data", true},
		{"navigate", false},
		{"", false},
		{"Click", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ParseToolKind(tt.name)
			assert.Equal(t, tt.known, ok)
			if ok {
				assert.Equal(t, ToolKind(tt.name), kind)
			}
		})
	}
}

func TestToolKind_Local(t *testing.T) {
	local := map[ToolKind]bool{
		ToolClick:       false,
		ToolTypeText:    false,
		ToolScroll:      false,
		ToolDrag:        false,
		ToolWait:        false,
		ToolScreenshot:  false,
		ToolLoadSkill:   true,
		ToolCollectData: true,
	}

	for kind, want := range local {
		assert.Equal(t, want, kind.Local(), "tool %s", kind)
	}
}

func TestToolSpecs(t *testing.T) {
	specs := ToolSpecs([]string{"whatsapp-web", "linkedin"})
	require.Len(t, specs, 8)

	byName := map[string]bool{}
	for _, spec := range specs {
		byName[spec.Name] = true
		assert.NotEmpty(t, spec.Description, "tool %s", spec.Name)
		assert.Equal(t, "object", spec.InputSchema["type"], "tool %s", spec.Name)
	}
	for _, name := range []string{"click", "type_text", "scroll", "drag", "wait", "screenshot", "load_skill", "collect_data"} {
		assert.True(t, byName[name], "missing tool %s", name)
	}
}

func TestToolSpecs_ListsAvailableSkills(t *testing.T) {
	specs := ToolSpecs([]string{"whatsapp-web", "linkedin"})

	var loadSkill string
	for _, spec := range specs {
		if spec.Name == "load_skill" {
			loadSkill = spec.Description
		}
	}
	require.NotEmpty(t, loadSkill)
	assert.Contains(t, loadSkill, "whatsapp-web")
	assert.Contains(t, loadSkill, "linkedin")

	// Without skills, the description carries no skill listing.
	specs = ToolSpecs(nil)
	for _, spec := range specs {
		if spec.Name == "load_skill" {
			assert.NotContains(t, spec.Description, "Available skills:")
		}
	}
}
