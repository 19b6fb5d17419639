package catadioptre

import "testing"

func TestProxyCount(t *testing.T) {
	testCases := []struct {
		testable Testable
		want     int
	}{
		{testable: DefaultTestable(), want: 3},
		{testable: Testable{Getter: true}, want: 1},
		{testable: Testable{Setter: true, Clearer: true}, want: 2},
		{testable: Testable{}, want: 0},
	}
	for _, tc := range testCases {
		if got := tc.testable.ProxyCount(); got != tc.want {
			t.Errorf("%+v: expecting %d; got %d", tc.testable, tc.want, got)
		}
	}
}
