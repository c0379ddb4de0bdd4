package faces

// DetectionError reports that an image did not contain exactly one detectable
// face. It is a distinct type so callers can tell a bad input image apart
// from batch-shape validation failures.
type DetectionError struct {
	// Count is the number of faces the detector returned.
	Count int
}

func (e *DetectionError) Error() string {
	if e.Count == 0 {
		return "no face detected"
	}
	return "too many faces detected"
}
