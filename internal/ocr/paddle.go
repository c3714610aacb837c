package ocr

import (
	"context"
	"encoding/json"
	"image"
	"strings"
)

// PaddleEngine runs a PaddleOCR wrapper that prints recognition results as
// JSON on stdout. The image path is appended after the configured arguments.
type PaddleEngine struct {
	runner
}

// NewPaddleEngine constructs a PaddleOCR-backed engine.
func NewPaddleEngine(command string, args []string, opts ...Option) *PaddleEngine {
	return &PaddleEngine{runner: newRunner(command, args, opts)}
}

// Key identifies the engine configuration for caching.
func (e *PaddleEngine) Key() string {
	return "paddle:" + strings.Join(append([]string{e.command}, e.args...), " ")
}

// Recognize runs the wrapper on img and parses its output.
func (e *PaddleEngine) Recognize(ctx context.Context, img image.Image) ([]Candidate, error) {
	output, err := e.run(ctx, img, func(path string) []string {
		return append(append([]string(nil), e.args...), path)
	})
	if err != nil {
		return nil, err
	}
	return ParsePaddleJSON(output), nil
}

// ParsePaddleJSON decodes every result layout PaddleOCR emits:
//
//	[[box, [text, score]], ...]        classic list of lines
//	[[[box, [text, score]], ...]]      the same wrapped in a page list
//	null or []                         nothing detected
//	[{"box": ..., "text": ...}, ...]   object lines
//	{"code": 100, "data": [...]}       PaddleOCR-json envelope
//
// Entries that fit none of these are dropped. Invalid JSON yields no
// candidates.
func ParsePaddleJSON(data []byte) []Candidate {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil
	}
	return parsePaddleValue(root)
}

func parsePaddleValue(v any) []Candidate {
	switch value := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if data, ok := value["data"]; ok {
			return parsePaddleValue(data)
		}
		if cand, ok := parseObjectLine(value); ok {
			return []Candidate{cand}
		}
		return nil
	case []any:
		lines := value
		if isPageList(lines) {
			out := make([]Candidate, 0)
			for _, page := range lines {
				out = append(out, parsePaddleValue(page)...)
			}
			return out
		}
		out := make([]Candidate, 0, len(lines))
		for _, line := range lines {
			if cand, ok := parseLine(line); ok {
				out = append(out, cand)
			}
		}
		return out
	default:
		return nil
	}
}

// isPageList reports whether every element is itself a list of lines rather
// than a line. A line starts with a box, which is a list of points; a page
// starts with a line, whose own first element is a box.
func isPageList(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		page, ok := item.([]any)
		if !ok {
			if item == nil {
				continue
			}
			return false
		}
		if len(page) == 0 {
			continue
		}
		if !looksLikeLine(page[0]) {
			return false
		}
	}
	return true
}

func looksLikeLine(v any) bool {
	switch line := v.(type) {
	case map[string]any:
		return true
	case []any:
		if len(line) < 2 {
			return false
		}
		box, ok := line[0].([]any)
		if !ok || len(box) == 0 {
			return false
		}
		_, ok = box[0].([]any)
		return ok
	default:
		return false
	}
}

func parseLine(v any) (Candidate, bool) {
	switch line := v.(type) {
	case map[string]any:
		return parseObjectLine(line)
	case []any:
		if len(line) < 2 {
			return Candidate{}, false
		}
		box, reported, ok := parseBox(line[0])
		if !ok {
			return Candidate{}, false
		}
		text, score, ok := parseInfo(line[1])
		if !ok {
			return Candidate{}, false
		}
		return Candidate{Box: box, Text: text, Score: score, Vertices: reported}, true
	default:
		return Candidate{}, false
	}
}

func parseObjectLine(obj map[string]any) (Candidate, bool) {
	text, ok := obj["text"].(string)
	if !ok {
		return Candidate{}, false
	}
	box, reported, ok := parseBox(obj["box"])
	if !ok {
		return Candidate{}, false
	}
	score, _ := obj["score"].(float64)
	return Candidate{Box: box, Text: text, Score: score, Vertices: reported}, true
}

func parseInfo(v any) (string, float64, bool) {
	switch info := v.(type) {
	case string:
		return info, 0, true
	case []any:
		if len(info) < 1 {
			return "", 0, false
		}
		text, ok := info[0].(string)
		if !ok {
			return "", 0, false
		}
		var score float64
		if len(info) > 1 {
			score, _ = info[1].(float64)
		}
		return text, score, true
	default:
		return "", 0, false
	}
}

// parseBox keeps every well-formed vertex and reports how many entries the
// box had. Short boxes are returned as-is; Merge is where they are rejected.
func parseBox(v any) ([]Point, int, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, 0, false
	}
	points := make([]Point, 0, len(raw))
	for _, item := range raw {
		coords, ok := item.([]any)
		if !ok || len(coords) < 2 {
			continue
		}
		x, okX := coords[0].(float64)
		y, okY := coords[1].(float64)
		if !okX || !okY {
			continue
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, len(raw), true
}
