package ocr

import (
	"image"
	"math"
	"strings"

	"hardsub/internal/textutil"
)

const minBoxPoints = 4

// Merge combines candidates into one reading. Blank texts and boxes that
// reported fewer than four vertices are skipped; the remaining texts are cleaned and
// joined with a single space in engine order. The position is the centre of
// the bounding box around every kept box, truncated to integers and shifted
// by offset. Nothing usable yields "" at the origin.
func Merge(cands []Candidate, offset image.Point) (string, image.Point) {
	texts := make([]string, 0, len(cands))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	havePoint := false

	for _, cand := range cands {
		if strings.TrimSpace(cand.Text) == "" || cand.vertexCount() < minBoxPoints {
			continue
		}
		texts = append(texts, textutil.Clean(cand.Text))
		for _, p := range cand.Box {
			if !finite(p.X) || !finite(p.Y) {
				continue
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			havePoint = true
		}
	}
	if len(texts) == 0 || !havePoint {
		return "", image.Point{}
	}

	text := strings.TrimSpace(strings.Join(texts, " "))
	cx := int((minX+maxX)/2) + offset.X
	cy := int((minY+maxY)/2) + offset.Y
	return text, image.Pt(cx, cy)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
