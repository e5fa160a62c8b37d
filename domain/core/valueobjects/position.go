package valueobjects

import (
	"encoding/json"
	"errors"
	"math"
)

// Position is a value object representing vertex coordinates in 2D rendering space.
// The origin is the top-left corner and y grows downward.
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, errors.New("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon &&
		math.Abs(p.y-other.y) < epsilon
}

// Within checks if the position lies inside [0, box.Width] x [0, box.Height]
func (p Position) Within(box BoundingBox) bool {
	return p.x >= 0 && p.x <= box.width && p.y >= 0 && p.y <= box.height
}

// MarshalJSON implements json.Marshaler
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}{X: p.x, Y: p.y})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewPosition(raw.X, raw.Y)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// BoundingBox is the size of the rendering viewport
type BoundingBox struct {
	width  float64
	height float64
}

// NewBoundingBox creates a bounding box with validation
func NewBoundingBox(width, height float64) (BoundingBox, error) {
	if !isValidCoordinate(width) || !isValidCoordinate(height) || width < 0 || height < 0 {
		return BoundingBox{}, errors.New("invalid bounding box: dimensions must be finite and non-negative")
	}
	return BoundingBox{width: width, height: height}, nil
}

// Width returns the viewport width
func (b BoundingBox) Width() float64 {
	return b.width
}

// Height returns the viewport height
func (b BoundingBox) Height() float64 {
	return b.height
}

// MarshalJSON implements json.Marshaler
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}{Width: b.width, Height: b.height})
}

// UnmarshalJSON implements json.Unmarshaler
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var raw struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewBoundingBox(raw.Width, raw.Height)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
