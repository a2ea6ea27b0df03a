package detector

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hairizuan-noorazman/browser-agent/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPModel_Detect(t *testing.T) {
	var healthCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			atomic.AddInt32(&healthCalls, 1)
			w.WriteHeader(http.StatusOK)
		case "/detect":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"detections":[{"bbox":[10,20,110,60],"confidence":0.87},{"bbox":[0,0,5,5],"confidence":0.3}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	model := NewHTTPModel(server.URL, logger.NewTestLogger())
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))

	detections, err := model.Detect(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	assert.Equal(t, BoundingBox{XMin: 10, YMin: 20, XMax: 110, YMax: 60}, detections[0].BBox)
	assert.InDelta(t, 0.87, detections[0].Confidence, 1e-9)

	// Second call reuses the cached readiness handshake.
	_, err = model.Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&healthCalls))
}

func TestHTTPModel_ReadinessCheckedOnceUnderConcurrency(t *testing.T) {
	var healthCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			atomic.AddInt32(&healthCalls, 1)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(`{"detections":[]}`))
	}))
	defer server.Close()

	model := NewHTTPModel(server.URL, logger.NewTestLogger())
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := model.Detect(context.Background(), img)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&healthCalls))
}

func TestHTTPModel_UnhealthySidecar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	model := NewHTTPModel(server.URL, logger.NewTestLogger())
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	_, err := model.Detect(context.Background(), img)
	require.Error(t, err)

	// The failed handshake is cached, not retried per call.
	_, err2 := model.Detect(context.Background(), img)
	assert.Equal(t, err, err2)
}

func TestHTTPModel_DetectErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "inference exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	model := NewHTTPModel(server.URL, logger.NewTestLogger())
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	_, err := model.Detect(context.Background(), img)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
