package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// fakeModel is a scripted detection model for tests.
type fakeModel struct {
	detections []Detection
	err        error
	calls      int
}

func (m *fakeModel) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.detections, nil
}

// fakeCaptioner returns a fixed caption per call, cycling through captions.
type fakeCaptioner struct {
	captions []string
	err      error
	calls    int
}

func (c *fakeCaptioner) Caption(ctx context.Context, img image.Image) (string, error) {
	defer func() { c.calls++ }()
	if c.err != nil {
		return "", c.err
	}
	if len(c.captions) == 0 {
		return "", nil
	}
	return c.captions[c.calls%len(c.captions)], nil
}

// testScreenshot returns a base64-encoded PNG of the given size.
func testScreenshot(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test screenshot: %v", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
