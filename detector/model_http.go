package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/browser-agent/logger"
)

// HTTPModel implements DetectionModel against an inference sidecar that
// wraps the detection weights (an OmniParser-style service). The sidecar
// owns model loading; this client performs a single readiness handshake on
// first use, cached for the process lifetime and safe under concurrent
// first use.
type HTTPModel struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger

	readyOnce sync.Once
	readyErr  error
}

// NewHTTPModel creates a detection model client for the given sidecar URL.
func NewHTTPModel(baseURL string, log logger.Logger) *HTTPModel {
	return &HTTPModel{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log,
	}
}

type detectResponse struct {
	Detections []struct {
		BBox       [4]int  `json:"bbox"`
		Confidence float64 `json:"confidence"`
	} `json:"detections"`
}

// Detect sends the screenshot to the sidecar and returns its raw candidates.
func (m *HTTPModel) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := m.ensureReady(ctx); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/detect", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create detect request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("detection sidecar returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode detection response: %w", err)
	}

	detections := make([]Detection, 0, len(parsed.Detections))
	for _, d := range parsed.Detections {
		detections = append(detections, Detection{
			BBox: BoundingBox{
				XMin: d.BBox[0],
				YMin: d.BBox[1],
				XMax: d.BBox[2],
				YMax: d.BBox[3],
			},
			Confidence: d.Confidence,
		})
	}

	return detections, nil
}

// ensureReady performs the one-time readiness handshake with the sidecar.
// The sidecar loads its weights on startup, so readiness implies the model
// is resident. A failed handshake is cached: the detector's degrade-to-empty
// policy handles the persistent failure upstream.
func (m *HTTPModel) ensureReady(ctx context.Context) error {
	m.readyOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/health", nil)
		if err != nil {
			m.readyErr = fmt.Errorf("failed to create health request: %w", err)
			return
		}

		resp, err := m.httpClient.Do(req)
		if err != nil {
			m.readyErr = fmt.Errorf("detection sidecar unreachable: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			m.readyErr = fmt.Errorf("detection sidecar unhealthy: status %d", resp.StatusCode)
			return
		}

		m.logger.Info(ctx, "detection sidecar ready", map[string]interface{}{
			"url": m.baseURL,
		})
	})

	return m.readyErr
}
