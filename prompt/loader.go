// Package prompt loads operator-authored markdown prompt files: the agent
// system prompt and named skill prompts that specialize behavior for a
// given site or task. Loaded content is cached for the process lifetime.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	// SystemPromptFile is the base instruction file name inside the prompt dir.
	SystemPromptFile = "system.prompt.md"

	// skillSuffix is the file suffix identifying skill prompts.
	skillSuffix = ".skill.prompt.md"

	// skillsSubdir is the directory holding skill prompts inside the prompt dir.
	skillsSubdir = "skills"
)

var (
	// ErrPromptNotFound is returned when a prompt file does not exist.
	ErrPromptNotFound = errors.New("prompt file not found")

	// ErrPromptEmpty is returned when a prompt file exists but has no content.
	ErrPromptEmpty = errors.New("prompt file is empty")
)

// Loader reads and caches prompt files from a directory.
type Loader struct {
	dir string

	mu    sync.RWMutex
	cache map[string]string
}

// NewLoader creates a prompt loader rooted at the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		cache: make(map[string]string),
	}
}

// SystemPrompt returns the base system prompt.
func (l *Loader) SystemPrompt() (string, error) {
	return l.load(SystemPromptFile)
}

// LoadSkill returns the prompt content for a named skill.
func (l *Loader) LoadSkill(name string) (string, error) {
	return l.load(filepath.Join(skillsSubdir, name+skillSuffix))
}

// ListSkills returns the sorted names of available skills. A missing skills
// directory yields an empty list, not an error.
func (l *Loader) ListSkills() []string {
	entries, err := os.ReadDir(filepath.Join(l.dir, skillsSubdir))
	if err != nil {
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), skillSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), skillSuffix))
	}

	sort.Strings(names)
	return names
}

// ClearCache drops all cached content. Useful for tests and hot reloading.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]string)
}

// load reads a prompt file relative to the loader root, serving repeat reads
// from the cache.
func (l *Loader) load(relPath string) (string, error) {
	l.mu.RLock()
	cached, ok := l.cache[relPath]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fullPath := filepath.Join(l.dir, relPath)

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPromptNotFound, relPath)
		}
		return "", fmt.Errorf("failed to read prompt file %s: %w", relPath, err)
	}

	content := string(raw)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %s", ErrPromptEmpty, relPath)
	}

	l.mu.Lock()
	l.cache[relPath] = content
	l.mu.Unlock()

	return content, nil
}
