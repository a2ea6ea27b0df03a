package detector

import (
	"errors"
	"math"
)

// ErrInvalidViewport is returned when a viewport dimension is zero or negative.
// The pixel-to-grid ratio is undefined in that case, so the conversion fails
// fast instead of silently returning the origin.
var ErrInvalidViewport = errors.New("viewport dimensions must be positive")

// PixelToGrid converts a pixel position to 0-100 grid coordinates.
//
// Each axis is scaled independently as round(100 * pixel / dimension) and
// clamped to [0, 100], so out-of-viewport pixels map to the nearest edge
// rather than wrapping or erroring.
func PixelToGrid(x, y, viewportWidth, viewportHeight int) (GridCoords, error) {
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return GridCoords{}, ErrInvalidViewport
	}

	gridX := int(math.Round(float64(x) / float64(viewportWidth) * 100))
	gridY := int(math.Round(float64(y) / float64(viewportHeight) * 100))

	return GridCoords{
		X: clampGrid(gridX),
		Y: clampGrid(gridY),
	}, nil
}

// GridToPixel converts 0-100 grid coordinates back to a pixel position using
// the same linear relationship as PixelToGrid.
func GridToPixel(grid GridCoords, viewportWidth, viewportHeight int) (int, int, error) {
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return 0, 0, ErrInvalidViewport
	}

	x := int(math.Round(float64(clampGrid(grid.X)) / 100 * float64(viewportWidth)))
	y := int(math.Round(float64(clampGrid(grid.Y)) / 100 * float64(viewportHeight)))

	return x, y, nil
}

func clampGrid(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
