package drift

import (
	"context"
	"errors"
	"testing"
)

func TestColorCode_Bands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		polarity, emphasis float64
		want               FieldCode
	}{
		{0, 0.75, FieldSymbolicEmphasis},
		{-0.9, 0, FieldVeryNegative},
		{-0.6, 0, FieldVeryNegative},
		{-0.3, 0, FieldMildNegative},
		{-0.15, 0, FieldMildNegative},
		{-0.1, 0, FieldStable},
		{0.1, 0, FieldStable},
		{0.2, 0, FieldMildPositive},
		{0.25, 0, FieldStrongPositive},
		{0.6, 0, FieldCriticalPositive},
	}
	for _, tc := range cases {
		if got := ColorCode(tc.polarity, tc.emphasis); got != tc.want {
			t.Fatalf("ColorCode(%v,%v)=%d, want %d", tc.polarity, tc.emphasis, got, tc.want)
		}
	}
}

func TestFieldAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	a, err := NewFieldAnalyzer(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewFieldAnalyzer: %v", err)
	}
	cases := []struct {
		text string
		code FieldCode
		tag  string
	}{
		{"Honey, pass the arsenic.", FieldConflict, "Wry Sarcasm / Affective Inversion"},
		{"Bring the napalm", FieldCriticalPositive, "Symbolic Voltage Detected"},
		{"G R O S S!!!", FieldSymbolicEmphasis, "Overwritten Neutrality – Emotional Charge"},
		{"the table is here", FieldStable, "No Deviation"},
		{"This is terrible", FieldVeryNegative, "Masked Despair"},
	}
	for _, tc := range cases {
		got, err := a.Analyze(context.Background(), tc.text)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", tc.text, err)
		}
		if got.Code != tc.code || got.Tag != tc.tag {
			t.Fatalf("Analyze(%q) code=%d tag=%q, want %d %q", tc.text, got.Code, got.Tag, tc.code, tc.tag)
		}
		if got.ColorHex != Palette[tc.code].Hex || got.DriftLevel != Palette[tc.code].Label {
			t.Fatalf("Analyze(%q) color=%q level=%q", tc.text, got.ColorHex, got.DriftLevel)
		}
	}
}

func TestFieldAnalyzer_PolarityError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a, err := NewFieldAnalyzer(DefaultConfig(), PolarityFunc(func(context.Context, string) (float64, error) {
		return 0, boom
	}))
	if err != nil {
		t.Fatalf("NewFieldAnalyzer: %v", err)
	}
	if _, err := a.Analyze(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
}

func TestNewFieldAnalyzer_RejectsBadWeights(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BatchWeights.SpacedLetters = -1
	if _, err := NewFieldAnalyzer(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err=%v, want ErrInvalidConfig", err)
	}
}
