package drift

import (
	"context"
	"math"
	"testing"
)

func TestLexiconPolarity(t *testing.T) {
	t.Parallel()

	p := NewLexiconPolarity(DefaultConfig().NegationWords, map[string]float64{"Meh": -0.2})
	cases := map[string]float64{
		"":                 0,
		"the table":        0,
		"good":             0.7,
		"not good":         -0.35,
		"very good":        0.91,
		"I don't like it":  -0.15,
		"good and bad":     0,
		"meh":              -0.2,
		"terrible, awful!": -1,
	}
	for text, want := range cases {
		got, err := p.Polarity(context.Background(), text)
		if err != nil {
			t.Fatalf("Polarity(%q): %v", text, err)
		}
		if !approx(got, want) {
			t.Fatalf("Polarity(%q)=%v, want %v", text, got, want)
		}
	}
}

func TestClampPolarity(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want float64 }{
		{1.5, 1},
		{-3, -1},
		{0.12345, 0.123},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tc := range cases {
		if got := ClampPolarity(tc.in); got != tc.want {
			t.Fatalf("ClampPolarity(%v)=%v, want %v", tc.in, got, tc.want)
		}
	}
}
