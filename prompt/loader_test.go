package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPromptDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skills"), 0o755))

	files := map[string]string{
		"system.prompt.md":                       "You are a browser automation agent.",
		"skills/whatsapp-web.skill.prompt.md":    "WhatsApp Web automation instructions.",
		"skills/linkedin-feed.skill.prompt.md":   "LinkedIn feed instructions.",
		"skills/empty.skill.prompt.md":           "   \n\t",
		"skills/notes.md":                        "not a skill file",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	return dir
}

func TestLoader_SystemPrompt(t *testing.T) {
	loader := NewLoader(setupPromptDir(t))

	content, err := loader.SystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, "You are a browser automation agent.", content)
}

func TestLoader_LoadSkill(t *testing.T) {
	loader := NewLoader(setupPromptDir(t))

	content, err := loader.LoadSkill("whatsapp-web")
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp Web automation instructions.", content)
}

func TestLoader_LoadSkill_NotFound(t *testing.T) {
	loader := NewLoader(setupPromptDir(t))

	_, err := loader.LoadSkill("nonexistent")
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestLoader_LoadSkill_Empty(t *testing.T) {
	loader := NewLoader(setupPromptDir(t))

	_, err := loader.LoadSkill("empty")
	assert.ErrorIs(t, err, ErrPromptEmpty)
}

func TestLoader_ListSkills(t *testing.T) {
	loader := NewLoader(setupPromptDir(t))

	skills := loader.ListSkills()
	assert.Equal(t, []string{"empty", "linkedin-feed", "whatsapp-web"}, skills)
}

func TestLoader_ListSkills_MissingDir(t *testing.T) {
	loader := NewLoader(t.TempDir())

	assert.Empty(t, loader.ListSkills())
}

func TestLoader_CachesContent(t *testing.T) {
	dir := setupPromptDir(t)
	loader := NewLoader(dir)

	first, err := loader.LoadSkill("whatsapp-web")
	require.NoError(t, err)

	// Rewrite the file; the cached content must be served.
	path := filepath.Join(dir, "skills", "whatsapp-web.skill.prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))

	second, err := loader.LoadSkill("whatsapp-web")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	loader.ClearCache()

	third, err := loader.LoadSkill("whatsapp-web")
	require.NoError(t, err)
	assert.Equal(t, "changed", third)
}
