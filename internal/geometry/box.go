package geometry

import "image"

// Box is an axis-aligned bounding box [x1, y1, x2, y2] as reported by a detector.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Centroid returns the integer center, truncating ((x1+x2)/2, (y1+y2)/2).
func (b Box) Centroid() Point {
	return Point{
		X: int((b.X1 + b.X2) / 2),
		Y: int((b.Y1 + b.Y2) / 2),
	}
}

// Rect converts the box to an integer image.Rectangle for drawing.
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}
