package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// pngHeader is the PNG file signature; uploads in these tests carry it so
// the fixtures look like the screenshot frames the archive actually stores.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func stepKey(runID uuid.UUID, step int) string {
	return fmt.Sprintf("runs/%s/step-%04d.png", runID, step)
}

func framePayload(step int) []byte {
	return append(append([]byte{}, pngHeader...), []byte(fmt.Sprintf("frame-%d", step))...)
}

func TestNewLocalStorage(t *testing.T) {
	tests := []struct {
		name      string
		baseDir   string
		wantError bool
	}{
		{
			name:      "existing archive root",
			baseDir:   t.TempDir(),
			wantError: false,
		},
		{
			name:      "creates missing archive root",
			baseDir:   filepath.Join(t.TempDir(), "screenshots"),
			wantError: false,
		},
		{
			name:      "empty archive root",
			baseDir:   "",
			wantError: true,
		},
		{
			name:      "dot as archive root",
			baseDir:   ".",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewLocalStorage(tt.baseDir)
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatal("expected storage but got nil")
			}
		})
	}
}

func TestLocalStorage_UploadScreenshot(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	store, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	runID := uuid.New()

	tests := []struct {
		name      string
		path      string
		payload   []byte
		wantError bool
	}{
		{
			name:      "first frame of a run",
			path:      stepKey(runID, 0),
			payload:   framePayload(0),
			wantError: false,
		},
		{
			name:      "later frame of the same run",
			path:      stepKey(runID, 17),
			payload:   framePayload(17),
			wantError: false,
		},
		{
			name:      "frame for a different run",
			path:      stepKey(uuid.New(), 0),
			payload:   framePayload(0),
			wantError: false,
		},
		{
			name:      "empty key",
			path:      "",
			payload:   framePayload(0),
			wantError: true,
		},
		{
			name:      "key escaping the archive root",
			path:      "../escape.png",
			payload:   framePayload(0),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Upload(ctx, tt.path, bytes.NewReader(tt.payload))

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			written, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(tt.path)))
			if err != nil {
				t.Fatalf("failed to read archived frame: %v", err)
			}
			if !bytes.Equal(written, tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d bytes", len(written), len(tt.payload))
			}
			if !bytes.HasPrefix(written, pngHeader) {
				t.Error("archived frame lost its PNG signature")
			}
		})
	}
}

func TestLocalStorage_ArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	// Archive a short run frame by frame, the way the run manager does after
	// each executed action, then read the whole trace back in order.
	runID := uuid.New()
	const steps = 3

	for step := 0; step < steps; step++ {
		if err := store.Upload(ctx, stepKey(runID, step), bytes.NewReader(framePayload(step))); err != nil {
			t.Fatalf("failed to archive step %d: %v", step, err)
		}
	}

	for step := 0; step < steps; step++ {
		key := stepKey(runID, step)

		exists, err := store.Exists(ctx, key)
		if err != nil {
			t.Fatalf("failed to check step %d: %v", step, err)
		}
		if !exists {
			t.Fatalf("step %d missing from archive", step)
		}

		reader, err := store.Download(ctx, key)
		if err != nil {
			t.Fatalf("failed to download step %d: %v", step, err)
		}
		payload, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			t.Fatalf("failed to read step %d: %v", step, err)
		}
		if !bytes.Equal(payload, framePayload(step)) {
			t.Errorf("step %d payload mismatch", step)
		}
	}

	// Frames from one run never shadow another run's keys.
	exists, err := store.Exists(ctx, stepKey(uuid.New(), 0))
	if err != nil {
		t.Fatalf("failed to check foreign run: %v", err)
	}
	if exists {
		t.Error("frame reported under a run that never uploaded it")
	}
}

func TestLocalStorage_Download(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	runID := uuid.New()
	key := stepKey(runID, 0)
	if err := store.Upload(ctx, key, bytes.NewReader(framePayload(0))); err != nil {
		t.Fatalf("failed to archive frame: %v", err)
	}

	t.Run("archived frame", func(t *testing.T) {
		reader, err := store.Download(ctx, key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer reader.Close()

		payload, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("failed to read frame: %v", err)
		}
		if !bytes.Equal(payload, framePayload(0)) {
			t.Error("frame payload mismatch")
		}
	})

	t.Run("step that was never archived", func(t *testing.T) {
		_, err := store.Download(ctx, stepKey(runID, 99))
		if err != ErrFileNotFound {
			t.Errorf("expected ErrFileNotFound but got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := store.Download(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})

	t.Run("key escaping the archive root", func(t *testing.T) {
		if _, err := store.Download(ctx, "../escape.png"); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	key := stepKey(uuid.New(), 0)
	if err := store.Upload(ctx, key, bytes.NewReader(framePayload(0))); err != nil {
		t.Fatalf("failed to archive frame: %v", err)
	}

	t.Run("archived frame", func(t *testing.T) {
		if err := store.Delete(ctx, key); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		exists, err := store.Exists(ctx, key)
		if err != nil {
			t.Fatalf("failed to check existence: %v", err)
		}
		if exists {
			t.Error("frame should be gone after deletion")
		}
	})

	t.Run("frame that was never archived", func(t *testing.T) {
		err := store.Delete(ctx, stepKey(uuid.New(), 0))
		if err != ErrFileNotFound {
			t.Errorf("expected ErrFileNotFound but got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if err := store.Delete(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_Exists(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	runID := uuid.New()
	key := stepKey(runID, 0)
	if err := store.Upload(ctx, key, bytes.NewReader(framePayload(0))); err != nil {
		t.Fatalf("failed to archive frame: %v", err)
	}

	t.Run("archived frame", func(t *testing.T) {
		exists, err := store.Exists(ctx, key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("frame should exist")
		}
	})

	t.Run("frame that was never archived", func(t *testing.T) {
		exists, err := store.Exists(ctx, stepKey(runID, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists {
			t.Error("frame should not exist")
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := store.Exists(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_GetURL(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	runID := uuid.New()
	key := stepKey(runID, 0)
	if err := store.Upload(ctx, key, bytes.NewReader(framePayload(0))); err != nil {
		t.Fatalf("failed to archive frame: %v", err)
	}

	t.Run("archived frame", func(t *testing.T) {
		url, err := store.GetURL(ctx, key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url == "" {
			t.Error("URL should not be empty")
		}
		// Local URLs are filesystem paths; the run segment must survive.
		if !strings.Contains(url, runID.String()) {
			t.Errorf("URL should carry run ID %s, got %q", runID, url)
		}
	})

	t.Run("frame that was never archived", func(t *testing.T) {
		_, err := store.GetURL(ctx, stepKey(runID, 42))
		if err != ErrFileNotFound {
			t.Errorf("expected ErrFileNotFound but got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if _, err := store.GetURL(ctx, ""); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestLocalStorage_UploadLargeScreenshot(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	store, err := NewLocalStorage(baseDir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	// Full-page captures run into the megabytes; make sure nothing truncates.
	size := 2 * 1024 * 1024
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0xAB}, size)...)

	key := stepKey(uuid.New(), 0)
	if err := store.Upload(ctx, key, bytes.NewReader(payload)); err != nil {
		t.Fatalf("failed to archive frame: %v", err)
	}

	info, err := os.Stat(filepath.Join(baseDir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("failed to stat frame: %v", err)
	}
	if info.Size() != int64(len(payload)) {
		t.Errorf("frame size mismatch: got %d, want %d", info.Size(), len(payload))
	}
}

func TestLocalStorage_PathTraversalPrevention(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	maliciousKeys := []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32",
		"../../escape.png",
		fmt.Sprintf("runs/%s/../../../escape.png", uuid.New()),
	}

	for _, key := range maliciousKeys {
		t.Run("block_"+key, func(t *testing.T) {
			if err := store.Upload(ctx, key, bytes.NewReader(framePayload(0))); err == nil {
				t.Errorf("should have blocked path traversal for: %s", key)
			}
		})
	}
}
