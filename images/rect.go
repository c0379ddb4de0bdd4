// Package images - shared image primitives for the alignment pipeline.
package images

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// CalculateIoU returns the Intersection over Union of two rectangles, a value
// between 0.0 (disjoint) and 1.0 (identical). Detection backends use it to
// suppress overlapping face candidates during non-maximum suppression.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The rectangle to compare against.
//
// Returns:
//   - float32: The IoU score in [0, 1].
func CalculateIoU(r, o Rect) float32 {
	// The intersection starts where both rectangles have begun and ends as
	// soon as the first one ends.
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Inclusion-exclusion: Union(A, B) = Area(A) + Area(B) - Intersection(A, B).
	areaR := (r.X2 - r.X1) * (r.Y2 - r.Y1)
	areaO := (o.X2 - o.X1) * (o.Y2 - o.Y1)
	unionArea := areaR + areaO - interArea

	return float32(interArea) / float32(unionArea)
}
