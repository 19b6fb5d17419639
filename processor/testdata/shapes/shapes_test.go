package shapes

type fixture struct {
	// @Testable{Clearer: false}
	square *Square
}
