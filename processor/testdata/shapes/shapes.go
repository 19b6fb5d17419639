package shapes

// Square is a square.
type Square struct {
	// @Testable
	side float64
}

// @Testable
func (s *Square) area() float64 {
	return s.side * s.side
}
