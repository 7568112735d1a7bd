package utils

import "testing"

func TestRoundTo(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{15.3, 15.3},
		{15.34, 15.3},
		{15.35, 15.4},
		{-3.26, -3.3},
		{0, 0},
	}
	for _, c := range cases {
		if got := RoundTo(c.in, 1); got != c.want {
			t.Errorf("RoundTo(%v, 1) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"clear sky":      "Clear sky",
		"Clear Sky":      "Clear sky",
		"city not found": "City not found",
		"":               "",
		"überwiegend":    "Überwiegend",
	}
	for in, want := range cases {
		if got := Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := map[float64]string{
		15:    "15.0",
		15.3:  "15.3",
		-2.5:  "-2.5",
		0:     "0.0",
		10.25: "10.25",
	}
	for in, want := range cases {
		if got := FormatDecimal(in); got != want {
			t.Errorf("FormatDecimal(%v) = %q, want %q", in, got, want)
		}
	}
}
