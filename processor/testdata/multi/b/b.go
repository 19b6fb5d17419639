package b

// Triangle is a triangle.
type Triangle struct {
	// @Testable
	base float64
}
