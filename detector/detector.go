// Package detector turns browser screenshots into typed, positioned UI
// elements. Detection and captioning run behind pluggable capabilities so
// the inference backend can be swapped without touching the pipeline, and
// the public contract degrades to an empty element list on any failure.
package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// DefaultConfidenceThreshold is the minimum confidence for a raw detection
// to become an element.
const DefaultConfidenceThreshold = 0.25

// placeholderCaption is used when captioning is unavailable or fails.
// Captioning is a known degraded mode: detection coordinates stay accurate
// without it.
const placeholderCaption = "UI element"

// ErrInvalidImage is returned when a screenshot payload cannot be decoded.
var ErrInvalidImage = errors.New("invalid screenshot image")

// Detection is a raw bounding box candidate produced by a detection model.
type Detection struct {
	BBox       BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
}

// DetectionModel produces raw bounding box candidates for a screenshot.
// Implementations may be a model, a heuristic, or a stub.
type DetectionModel interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// Captioner describes a cropped element region with a short caption.
type Captioner interface {
	Caption(ctx context.Context, img image.Image) (string, error)
}

// PlaceholderCaptioner is the no-op captioner. It always returns the generic
// placeholder string.
type PlaceholderCaptioner struct{}

// Caption returns the placeholder caption for any region.
func (PlaceholderCaptioner) Caption(ctx context.Context, img image.Image) (string, error) {
	return placeholderCaption, nil
}

// Detector runs the full element detection pipeline: decode screenshot,
// detect candidate boxes, caption and classify each region, and map pixel
// centers onto the 0-100 grid.
type Detector struct {
	model     DetectionModel
	captioner Captioner
	threshold float64
	logger    logger.Logger
}

// New creates a Detector with the default confidence threshold.
func New(model DetectionModel, captioner Captioner, log logger.Logger) *Detector {
	if captioner == nil {
		captioner = PlaceholderCaptioner{}
	}
	return &Detector{
		model:     model,
		captioner: captioner,
		threshold: DefaultConfidenceThreshold,
		logger:    log,
	}
}

// SetConfidenceThreshold overrides the minimum detection confidence.
func (d *Detector) SetConfidenceThreshold(threshold float64) {
	d.threshold = threshold
}

// Detect returns the UI elements found in a base64-encoded screenshot.
//
// Any failure anywhere in the pipeline (malformed image, model error,
// invalid viewport) yields an empty list, never an error: downstream
// consumers must tolerate zero detected elements at all times, and a
// missing visual signal is preferable to crashing the decision loop.
func (d *Detector) Detect(ctx context.Context, screenshotBase64 string, viewport Viewport) []DetectedElement {
	if !viewport.Valid() {
		d.logger.Warn(ctx, "element detection skipped: invalid viewport", map[string]interface{}{
			"width":  viewport.Width,
			"height": viewport.Height,
		})
		return []DetectedElement{}
	}

	img, err := DecodeScreenshot(screenshotBase64)
	if err != nil {
		d.logger.Warn(ctx, "element detection skipped: undecodable screenshot", map[string]interface{}{
			"error": err.Error(),
		})
		return []DetectedElement{}
	}

	detections, err := d.model.Detect(ctx, img)
	if err != nil {
		d.logger.Error(ctx, "detection model failed", map[string]interface{}{
			"error": err.Error(),
		})
		return []DetectedElement{}
	}

	elements := make([]DetectedElement, 0, len(detections))
	for _, det := range detections {
		if det.Confidence < d.threshold || !det.BBox.Valid() {
			continue
		}

		caption := d.captionRegion(ctx, img, det.BBox)

		centerX, centerY := det.BBox.Center()
		gridCenter, err := PixelToGrid(centerX, centerY, viewport.Width, viewport.Height)
		if err != nil {
			// Viewport was validated above; treat this as a pipeline bug
			// and drop the candidate rather than abort the pass.
			d.logger.Error(ctx, "grid mapping failed for detection", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		elements = append(elements, DetectedElement{
			ElementType: ClassifyCaption(caption),
			Caption:     caption,
			BBox:        det.BBox,
			GridCenter:  gridCenter,
			Confidence:  det.Confidence,
		})
	}

	d.logger.Info(ctx, "element detection completed", map[string]interface{}{
		"candidates": len(detections),
		"elements":   len(elements),
	})

	return elements
}

// captionRegion crops the detection region and runs the captioner over it.
// Caption failures fall back to the placeholder string.
func (d *Detector) captionRegion(ctx context.Context, img image.Image, box BoundingBox) string {
	region := cropRegion(img, box)

	caption, err := d.captioner.Caption(ctx, region)
	if err != nil {
		d.logger.Warn(ctx, "captioning failed, using placeholder", map[string]interface{}{
			"error": err.Error(),
		})
		return placeholderCaption
	}
	if strings.TrimSpace(caption) == "" {
		return placeholderCaption
	}
	return caption
}

// DecodeScreenshot decodes a base64-encoded screenshot, tolerating an
// optional data URL prefix (data:<mime>;base64,...). The color model is
// whatever the underlying codec produced; consumers must not assume RGB.
func DecodeScreenshot(screenshotBase64 string) (image.Image, error) {
	payload := screenshotBase64
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx == -1 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return img, nil
}

// cropRegion extracts the bounding box region from the image. Codecs that do
// not support sub-imaging fall back to the full image, which only affects
// caption quality, never coordinates.
func cropRegion(img image.Image, box BoundingBox) image.Image {
	rect := image.Rect(box.XMin, box.YMin, box.XMax, box.YMax).Intersect(img.Bounds())
	if rect.Empty() {
		return img
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}
	return img
}
