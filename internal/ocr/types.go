package ocr

import (
	"context"
	"image"
)

// Point is a vertex of a detected text box in crop coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Candidate is one recognized text line as reported by an engine. Nothing
// about it is validated; Merge decides what is usable.
type Candidate struct {
	Box   []Point `json:"box"`
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
	// Vertices is how many vertex entries the engine reported, malformed
	// ones included. Zero means len(Box).
	Vertices int `json:"vertices,omitempty"`
}

// vertexCount is the box size the engine reported.
func (c Candidate) vertexCount() int {
	if c.Vertices > 0 {
		return c.Vertices
	}
	return len(c.Box)
}

// Engine recognizes text lines in an image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) ([]Candidate, error)
}

// Keyer is implemented by engines whose results are a pure function of the
// input image and a stable configuration key. Caches use the key to keep
// results of differently configured engines apart.
type Keyer interface {
	Key() string
}
