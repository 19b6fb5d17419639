package a

// Circle is a circle.
type Circle struct {
	// @Testable
	radius float64
}
