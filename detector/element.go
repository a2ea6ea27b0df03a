package detector

import "fmt"

// ElementType classifies a detected UI element.
type ElementType string

const (
	ElementTypeButton ElementType = "button"
	ElementTypeInput  ElementType = "input"
	ElementTypeIcon   ElementType = "icon"
	ElementTypeSearch ElementType = "search"
	ElementTypeLink   ElementType = "link"
	ElementTypeImage  ElementType = "image"
	ElementTypeText   ElementType = "text"
)

// Viewport holds browser viewport dimensions in pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both viewport dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// BoundingBox is a pixel bounding box for a detected element.
type BoundingBox struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// Valid reports whether the box has positive area.
func (b BoundingBox) Valid() bool {
	return b.XMin < b.XMax && b.YMin < b.YMax
}

// Center returns the pixel center of the box.
func (b BoundingBox) Center() (int, int) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2
}

// GridCoords is a position on the 0-100 grid.
type GridCoords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DetectedElement is a detected UI element with position and description.
// Elements are immutable values; a fresh list is produced on every
// detection pass and fully replaces the previous one.
type DetectedElement struct {
	ElementType ElementType `json:"element_type"`
	Caption     string      `json:"caption"`
	BBox        BoundingBox `json:"bbox"`
	GridCenter  GridCoords  `json:"grid_center"`
	Confidence  float64     `json:"confidence"`
}

// String renders the element the way it appears in prompt listings.
func (e DetectedElement) String() string {
	return fmt.Sprintf("%s %q at grid (%d, %d)", e.ElementType, e.Caption, e.GridCenter.X, e.GridCenter.Y)
}
