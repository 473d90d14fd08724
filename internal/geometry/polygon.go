package geometry

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
)

// Point is an integer pixel coordinate in frame space.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// ImagePoint converts p for use with image and gocv drawing calls.
func (p Point) ImagePoint() image.Point {
	return image.Pt(p.X, p.Y)
}

// MarshalJSON encodes a point as an [x, y] pair.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// MaxCoordinate bounds the magnitude of a decoded coordinate.
const MaxCoordinate = math.MaxInt32

// UnmarshalJSON accepts an [x, y] pair; fractional values are truncated.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point needs 2 coordinates, got %d", len(pair))
	}
	for _, v := range pair {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxCoordinate {
			return fmt.Errorf("coordinate %g out of range", v)
		}
	}
	p.X = int(pair[0])
	p.Y = int(pair[1])
	return nil
}

// Polygon is an ordered boundary traversal. It need not be convex.
type Polygon []Point

// Clone returns a copy that does not share the backing array.
func (poly Polygon) Clone() Polygon {
	if poly == nil {
		return nil
	}
	out := make(Polygon, len(poly))
	copy(out, poly)
	return out
}

// ImagePoints converts the polygon for gocv.NewPointsVectorFromPoints.
func (poly Polygon) ImagePoints() []image.Point {
	pts := make([]image.Point, len(poly))
	for i, p := range poly {
		pts[i] = p.ImagePoint()
	}
	return pts
}

// Centroid returns the integer mean of the vertices, used to anchor labels.
func (poly Polygon) Centroid() Point {
	if len(poly) == 0 {
		return Point{}
	}
	var sx, sy int
	for _, p := range poly {
		sx += p.X
		sy += p.Y
	}
	return Point{X: sx / len(poly), Y: sy / len(poly)}
}

// Contains reports whether pt lies inside poly or on its boundary.
// poly must have at least 3 points.
func Contains(pt Point, poly Polygon) bool {
	n := len(poly)
	inside := false

	j := n - 1
	for i := 0; i < n; i++ {
		a, b := poly[j], poly[i]
		if onSegment(pt, a, b) {
			return true
		}

		// Half-open rule on y so a vertex shared by two edges is counted once.
		if (b.Y > pt.Y) != (a.Y > pt.Y) {
			// Compare pt.X against the edge's x at pt.Y without division:
			// pt.X < b.X + (a.X-b.X)*(pt.Y-b.Y)/(a.Y-b.Y)
			lhs := int64(pt.X-b.X) * int64(a.Y-b.Y)
			rhs := int64(a.X-b.X) * int64(pt.Y-b.Y)
			if a.Y-b.Y < 0 {
				lhs, rhs = -lhs, -rhs
			}
			if lhs < rhs {
				inside = !inside
			}
		}
		j = i
	}

	return inside
}

// onSegment reports whether p lies on the closed segment ab.
func onSegment(p, a, b Point) bool {
	cross := int64(b.X-a.X)*int64(p.Y-a.Y) - int64(b.Y-a.Y)*int64(p.X-a.X)
	if cross != 0 {
		return false
	}
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}
