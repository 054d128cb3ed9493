package api

import "testing"

func TestIntParam(t *testing.T) {
	cases := []struct {
		raw  string
		def  int
		want int
	}{
		{"", 50, 50},
		{"0", 50, 0},
		{"7", 50, 7},
		{"abc", 50, 50},
		{"-3", 50, 50},
		{"1.5", 50, 50},
		// Values past the int range must fall back, not wrap negative.
		{"99999999999999999999", 50, 50},
	}
	for _, c := range cases {
		if got := intParam(c.raw, c.def); got != c.want {
			t.Errorf("intParam(%q, %d) = %d, want %d", c.raw, c.def, got, c.want)
		}
	}
}
