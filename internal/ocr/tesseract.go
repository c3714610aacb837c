package ocr

import (
	"context"
	"image"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"hardsub/internal/language"
)

// TesseractEngine runs the tesseract CLI in single-line mode and reads its
// TSV output.
type TesseractEngine struct {
	runner
	lang string
}

// NewTesseractEngine constructs a tesseract-backed engine. Extra args are
// inserted before the "tsv" config name.
func NewTesseractEngine(command, lang string, args []string, opts ...Option) *TesseractEngine {
	return &TesseractEngine{runner: newRunner(command, args, opts), lang: language.Tesseract(lang)}
}

// Key identifies the engine configuration for caching.
func (e *TesseractEngine) Key() string {
	return "tesseract:" + e.lang + ":" + strings.Join(append([]string{e.command}, e.args...), " ")
}

// Recognize runs tesseract on img.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) ([]Candidate, error) {
	output, err := e.run(ctx, img, func(path string) []string {
		args := []string{path, "stdout", "--psm", "7", "-l", e.lang}
		args = append(args, e.args...)
		return append(args, "tsv")
	})
	if err != nil {
		return nil, err
	}
	return ParseTesseractTSV(output), nil
}

type tsvLineKey struct {
	block, par, line int
}

type tsvLine struct {
	words                    []string
	left, top, right, bottom int
	confSum                  float64
}

// ParseTesseractTSV groups word rows (level 5) into one candidate per text
// line, keyed by block, paragraph and line number in first-seen order. Rows
// with too few columns, unparsable numbers, or no text are skipped.
func ParseTesseractTSV(data []byte) []Candidate {
	var order []tsvLineKey
	lines := make(map[tsvLineKey]*tsvLine)

	for i, row := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if i == 0 && strings.HasPrefix(row, "level") {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}
		nums := make([]int, 10)
		ok := true
		for j := 0; j < 10; j++ {
			n, err := strconv.Atoi(strings.TrimSpace(cols[j]))
			if err != nil {
				ok = false
				break
			}
			nums[j] = n
		}
		if !ok || nums[0] != 5 {
			continue
		}
		text := strings.TrimSpace(strings.Join(cols[11:], "\t"))
		if text == "" {
			continue
		}
		conf, _ := strconv.ParseFloat(strings.TrimSpace(cols[10]), 64)

		key := tsvLineKey{block: nums[2], par: nums[3], line: nums[4]}
		left, top, width, height := nums[6], nums[7], nums[8], nums[9]
		entry, exists := lines[key]
		if !exists {
			entry = &tsvLine{left: left, top: top, right: left + width, bottom: top + height}
			lines[key] = entry
			order = append(order, key)
		}
		entry.words = append(entry.words, text)
		entry.left = min(entry.left, left)
		entry.top = min(entry.top, top)
		entry.right = max(entry.right, left+width)
		entry.bottom = max(entry.bottom, top+height)
		entry.confSum += conf
	}

	out := make([]Candidate, 0, len(order))
	for _, key := range order {
		entry := lines[key]
		l, t, r, b := float64(entry.left), float64(entry.top), float64(entry.right), float64(entry.bottom)
		out = append(out, Candidate{
			Box:   []Point{{X: l, Y: t}, {X: r, Y: t}, {X: r, Y: b}, {X: l, Y: b}},
			Text:  joinWords(entry.words),
			Score: entry.confSum / float64(len(entry.words)) / 100,
		})
	}
	return out
}

// joinWords joins tesseract words with spaces, except between ideographs
// where tesseract splits every character into its own word.
func joinWords(words []string) string {
	var b strings.Builder
	for i, word := range words {
		if i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(words[i-1])
			next, _ := utf8.DecodeRuneInString(word)
			if !isIdeograph(prev) || !isIdeograph(next) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(word)
	}
	return b.String()
}

func isIdeograph(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Hangul) || unicode.Is(unicode.P, r) && r > 0x2000
}
