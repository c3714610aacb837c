// Package ass serializes subtitle segments as an Advanced SubStation Alpha
// script with one fixed style and per-line \pos overrides.
package ass

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"hardsub/internal/fileutil"
	"hardsub/internal/tracking"
)

// bom is written ahead of the script so players on Windows detect UTF-8.
const bom = "\uFEFF"

const headerTemplate = `[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Microsoft JhengHei,44,&H00FFFFFF,&H00000000,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,0,2,20,20,20,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// FormatTimestamp renders seconds as H:MM:SS.CC. Rounding happens once on
// the total centisecond count, so 59.999 carries into 0:01:00.00. A small
// tolerance keeps decimal inputs such as 3599.995 from rounding down because
// of their binary representation. Negative and non-finite inputs render as
// zero.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds*100 + 0.5 + 1e-9))
	cs := total % 100
	totalSeconds := total / 100
	s := totalSeconds % 60
	m := (totalSeconds / 60) % 60
	h := totalSeconds / 3600
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	"\r\n", `\N`,
	"\n", `\N`,
)

// Escape makes text safe for a Dialogue line: backslashes and braces are
// escaped and line breaks become \N.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Header returns the script header for the given play resolution.
func Header(playResX, playResY int) string {
	return fmt.Sprintf(headerTemplate, playResX, playResY)
}

// Render writes the script for segs to w. Segments whose trimmed text is
// empty are skipped; positions are clamped to the play resolution.
func Render(w io.Writer, segs []tracking.Segment, playResX, playResY int) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header(playResX, playResY)); err != nil {
		return err
	}
	for _, seg := range segs {
		text := Escape(strings.TrimSpace(seg.Text))
		if text == "" {
			continue
		}
		x := clamp(seg.Pos.X, 0, playResX)
		y := clamp(seg.Pos.Y, 0, playResY)
		if _, err := fmt.Fprintf(bw, "Dialogue: 0,%s,%s,Default,,0,0,0,,{\\pos(%d,%d)}%s\n",
			FormatTimestamp(seg.Start), FormatTimestamp(seg.End), x, y, text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile renders segs to path as UTF-8 with a byte order mark. The file
// is replaced atomically; a failed write leaves no partial script behind.
func WriteFile(path string, segs []tracking.Segment, playResX, playResY int) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		if _, err := io.WriteString(w, bom); err != nil {
			return err
		}
		return Render(w, segs, playResX, playResY)
	})
}

// ReadFile returns the script at path without its byte order mark.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), bom), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
