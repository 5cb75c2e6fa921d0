// Package radar computes the geometry of a radar (spider) chart: axis
// endpoints, the user and benchmark polygons, concentric grid rings and label
// anchors. It draws nothing; callers feed the vertices to whatever vector
// surface they render on.
package radar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ChartPoint is one axis value on the 5-point scale.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Point is a vertex in drawing coordinates, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label is an axis caption and where to anchor it.
type Label struct {
	Text   string `json:"text"`
	Anchor Point  `json:"anchor"`
}

// Layout is the complete chart geometry.
type Layout struct {
	Size      float64   `json:"size"`
	Center    float64   `json:"center"`
	Radius    float64   `json:"radius"`
	Axes      []Point   `json:"axes"`
	User      []Point   `json:"user"`
	Benchmark []Point   `json:"benchmark"`
	Rings     [][]Point `json:"rings"`
	Labels    []Label   `json:"labels"`
}

// Compute lays out series and benchmark on a regular N-gon of diameter size.
// Axis 0 points up and axes advance clockwise.
func Compute(series, benchmark []ChartPoint, maxValue, size float64, levels int, opts ...Option) (*Layout, error) {
	s := newSettings(opts)

	switch {
	case !finite(maxValue), !finite(size):
		return nil, fmt.Errorf("%w: maxValue %v size %v", ErrInvalidDomain, maxValue, size)
	case maxValue <= 0:
		return nil, fmt.Errorf("%w: maxValue %v", ErrInvalidDomain, maxValue)
	case levels <= 0:
		return nil, fmt.Errorf("%w: levels %d", ErrInvalidDomain, levels)
	case size <= 2*s.margin:
		return nil, fmt.Errorf("%w: size %v with margin %v", ErrInvalidDomain, size, s.margin)
	}

	n := len(series)
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateAxisCount, n)
	}
	if len(benchmark) != n {
		return nil, fmt.Errorf("%w: %d vs %d", ErrSeriesMismatch, len(benchmark), n)
	}

	center := size / 2
	radius := size/2 - s.margin
	step := 2 * math.Pi / float64(n)
	angle := func(i int) float64 { return step*float64(i) - math.Pi/2 }
	at := func(i int, r float64) Point {
		a := angle(i)
		return Point{X: center + r*math.Cos(a), Y: center + r*math.Sin(a)}
	}
	project := func(v float64) float64 {
		if s.clamp {
			v = math.Max(0, math.Min(maxValue, v))
		}
		return v / maxValue * radius
	}

	l := &Layout{
		Size:      size,
		Center:    center,
		Radius:    radius,
		Axes:      make([]Point, n),
		User:      make([]Point, n),
		Benchmark: make([]Point, n),
		Rings:     make([][]Point, levels),
		Labels:    make([]Label, n),
	}
	for i := 0; i < n; i++ {
		l.Axes[i] = at(i, radius)
		l.User[i] = at(i, project(series[i].Value))
		l.Benchmark[i] = at(i, project(benchmark[i].Value))
		l.Labels[i] = Label{
			Text:   truncate(series[i].Label, s.labelMax, s.labelKeep),
			Anchor: at(i, radius+s.labelOffset),
		}
	}
	for k := 1; k <= levels; k++ {
		ring := make([]Point, n)
		r := float64(k) / float64(levels) * radius
		for i := 0; i < n; i++ {
			ring[i] = at(i, r)
		}
		l.Rings[k-1] = ring
	}
	return l, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func truncate(text string, maxLen, keep int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	return string(r[:keep]) + ellipsis
}

// Closed returns points with the first vertex appended, ready to stroke as a closed path.
func Closed(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	out := make([]Point, len(points), len(points)+1)
	copy(out, points)
	return append(out, points[0])
}

// PointsAttr formats points as "x,y x,y ..." for SVG polygon elements.
func PointsAttr(points []Point) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', 2, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', 2, 64))
	}
	return b.String()
}
