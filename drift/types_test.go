package drift

import "testing"

func TestWeight_PriorityOrder(t *testing.T) {
	t.Parallel()

	prev := 1 << 30
	for _, p := range overridePriority {
		if p.Weight > prev {
			t.Fatalf("%s weight %d is above the previous %d", p.Label, p.Weight, prev)
		}
		prev = p.Weight
	}
	if Weight(LabelSymbolicOverride) != 100 || Weight(LabelEmojiEmphasisOverride) != 60 {
		t.Fatalf("unexpected endpoint weights")
	}
	if Weight(LabelStable) != 0 || IsOverride(LabelNegative) {
		t.Fatalf("fallback labels must have no weight")
	}
}

func TestLabels(t *testing.T) {
	t.Parallel()

	labels := Labels()
	if len(labels) != 11 {
		t.Fatalf("labels=%v, want 11", labels)
	}
	seen := map[Label]bool{}
	for _, l := range labels {
		if seen[l] {
			t.Fatalf("duplicate label %q", l)
		}
		seen[l] = true
	}
}

func TestDriftWeightRule(t *testing.T) {
	t.Parallel()

	drifting := map[Label]bool{
		LabelSymbolicOverride:      true,
		LabelMockedEcho:            true,
		LabelRhetoricalDrift:       true,
		LabelSarcasmHint:           true,
		LabelNegationAmplified:     true,
		LabelEmphasisOverride:      true,
		LabelStableRationale:       false,
		LabelEmojiEmphasisOverride: false,
	}
	for l, want := range drifting {
		if got := Weight(l) >= DriftWeight; got != want {
			t.Fatalf("%s: weight %d drift=%v, want %v", l, Weight(l), got, want)
		}
	}
}
