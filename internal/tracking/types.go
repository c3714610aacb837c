package tracking

import "fmt"

// Position is a point in source-video pixels.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Item is one sampled frame that carried text.
type Item struct {
	// Time is the sample timestamp in seconds.
	Time float64
	// Raw is the recognized text the item was built from.
	Raw string
	// Text is Raw after cleaning and script conversion.
	Text string
	Pos  Position
}

// Segment is a subtitle cue.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Pos   Position
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}
