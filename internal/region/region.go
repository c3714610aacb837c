// Package region selects the subtitle area of a frame.
package region

import (
	"fmt"
	"image"
	"image/draw"
)

// Rect is a region of interest in source-video pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Validate rejects negative sizes. Zero sizes are allowed and crop to an
// empty image.
func (r Rect) Validate() error {
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("roi size %dx%d must not be negative", r.Width, r.Height)
	}
	return nil
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// FromRectangle converts an image.Rectangle back into a Rect.
func FromRectangle(b image.Rectangle) Rect {
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

// Clamp intersects r with bounds. Regions reaching past the frame are cut
// silently; a region entirely outside yields an empty rectangle.
func Clamp(r Rect, bounds image.Rectangle) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return r.Bounds().Intersect(bounds)
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

// Crop returns the part of img inside rect together with the top-left
// corner of the clamped region, which callers add to positions found in the
// crop to map them back to frame coordinates. The offset is the clamped
// corner even when the crop is empty.
func Crop(img image.Image, rect Rect) (image.Image, image.Point) {
	bounds := img.Bounds()
	clamped := Clamp(rect, bounds)
	offset := image.Pt(max(rect.X, bounds.Min.X), max(rect.Y, bounds.Min.Y))
	if clamped.Empty() {
		return image.NewRGBA(image.Rectangle{}), offset
	}
	offset = clamped.Min
	if sub, ok := img.(subImager); ok {
		return sub.SubImage(clamped), offset
	}
	out := image.NewRGBA(image.Rect(0, 0, clamped.Dx(), clamped.Dy()))
	draw.Draw(out, out.Bounds(), img, clamped.Min, draw.Src)
	return out, offset
}

// IsEmpty reports whether img has no pixels.
func IsEmpty(img image.Image) bool {
	return img == nil || img.Bounds().Empty()
}
