package performance

import "time"

// Point is one (date, cumulative return) observation
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Cursor walks a cumulative-return series lazily.
// The first point is the anchor date with value 0; each later point is
// cumprod(1+r) - 1 up to that date. A cursor is finite and cannot be rewound.
type Cursor struct {
	anchor  time.Time
	dates   []time.Time
	returns []float64

	pos    int // -1 = anchor 미방출
	growth float64
}

// NewCursor creates a cursor over periodic returns aligned with dates
func NewCursor(anchor time.Time, dates []time.Time, returns []float64) *Cursor {
	return &Cursor{
		anchor:  anchor,
		dates:   dates,
		returns: returns,
		pos:     -1,
		growth:  1,
	}
}

// Next returns the next point, or false once the series is exhausted
func (c *Cursor) Next() (Point, bool) {
	if c.pos < 0 {
		c.pos = 0
		return Point{Date: c.anchor, Value: 0}, true
	}
	if c.pos >= len(c.returns) || c.pos >= len(c.dates) {
		return Point{}, false
	}

	c.growth *= 1 + c.returns[c.pos]
	p := Point{Date: c.dates[c.pos], Value: c.growth - 1}
	c.pos++
	return p, true
}

// Collect drains the cursor into a slice
func Collect(c *Cursor) []Point {
	points := make([]Point, 0, len(c.returns)+1)
	for {
		p, ok := c.Next()
		if !ok {
			return points
		}
		points = append(points, p)
	}
}
