package drift

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T, cfg Config, polarity PolarityProvider) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, EngineOptions{Polarity: polarity})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngineClassify_Scenarios(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	cases := []struct {
		name     string
		baseline string
		incoming string
		label    Label
		drift    bool
		resp     Responsiveness
	}{
		{"mocked echo", "I'm fine.", "I SAID I'M FINE!!!", LabelMockedEcho, true, Reactive},
		{"sarcasm ellipsis", "Great job.", "Great job...", LabelSarcasmHint, true, Neutral},
		{"rhetorical", "You helped a lot.", "You helped a lot?", LabelRhetoricalDrift, true, Neutral},
		{"negation shared root", "I like it.", "I don't like it.", LabelNegationAmplified, true, Neutral},
		{"emoji", "Ok", "Ok 😂😂", LabelEmojiEmphasisOverride, false, Neutral},
		{"sarcasm beats emphasis", "Thanks.", "YOU ARE ABSOLUTELY BRILLIANT...", LabelSarcasmHint, true, Neutral},
		{"emphasis override", "Ignore that.", "PLEASE LISTEN!!!", LabelEmphasisOverride, true, Proactive},
		{"symbolic", "We reflect quietly", "We reflect quietly, in awe and wonder.", LabelSymbolicOverride, true, Neutral},
		{"hedge", "I'm doing fine.", "Maybe not.", LabelStableRationale, false, Neutral},
		{"positive", "ok.", "Sooo goood!!", LabelPositive, true, Neutral},
		{"negative", "WOW, THAT IS GREAT!!", "that is great.", LabelNegative, true, Neutral},
		{"whitelisted acronyms", "AI", "GPT", LabelStable, false, Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := e.Classify(context.Background(), tc.baseline, tc.incoming, nil)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if res.Label != tc.label {
				t.Fatalf("label=%q, want %q (rationale=%q)", res.Label, tc.label, res.Rationale)
			}
			if res.Drift != tc.drift {
				t.Fatalf("drift=%v, want %v", res.Drift, tc.drift)
			}
			if res.FieldResponsiveness != tc.resp {
				t.Fatalf("responsiveness=%q, want %q", res.FieldResponsiveness, tc.resp)
			}
			if res.Rationale == "" {
				t.Fatalf("empty rationale")
			}
		})
	}
}

func TestEngineClassify_ResultFlags(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	res, err := e.Classify(context.Background(), "I'm fine.", "I SAID I'M FINE!!!", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !res.MirrorMatch || !res.EmphasisOverride || res.SymbolicOverride {
		t.Fatalf("flags mirror=%v emphasis=%v symbolic=%v", res.MirrorMatch, res.EmphasisOverride, res.SymbolicOverride)
	}
	if !approx(res.DriftScore, 1.1) {
		t.Fatalf("DriftScore=%v, want 1.1", res.DriftScore)
	}

	res, err = e.Classify(context.Background(), "We reflect quietly", "We reflect quietly, in awe and wonder.", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !res.SymbolicOverride || res.Rationale != "Symbolic trigger: symbolic_awe" {
		t.Fatalf("symbolic=%v rationale=%q", res.SymbolicOverride, res.Rationale)
	}
}

func TestEngineClassify_FallbackRationale(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	res, err := e.Classify(context.Background(), "ok.", "Sooo goood!!", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Rationale != "Emphasis shift from 0.00 to 0.85 (Δ=0.85)" {
		t.Fatalf("rationale=%q", res.Rationale)
	}
	res, err = e.Classify(context.Background(), "AI", "GPT", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Rationale != "Emphasis shift within tolerance (Δ=0.00)" {
		t.Fatalf("rationale=%q", res.Rationale)
	}
}

func TestEngineClassify_IdenticalPairsNeverDrift(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	texts := []string{
		"I'm fine.", "I SAID I'M FINE!!!", "Great job...", "Sure. /s", "Maybe not 😂😂",
		"You helped a lot?", "", "   ", "...", "PLEASE LISTEN!!!", "I don't like it.",
		"!!!!!!", "?!?!?!", "!!! ???", strings.Repeat("😂", 10),
	}
	for _, text := range texts {
		res, err := e.Classify(context.Background(), text, text, nil)
		if err != nil {
			t.Fatalf("Classify(%q): %v", text, err)
		}
		if res.Drift || res.DriftScore != 0 || res.Label != LabelStable {
			t.Fatalf("identical %q: drift=%v score=%v label=%q", text, res.Drift, res.DriftScore, res.Label)
		}
	}

	res, err := e.Classify(context.Background(), "A moment of awe.", "A moment of awe.", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Label != LabelSymbolicOverride {
		t.Fatalf("identical symbolic pair label=%q", res.Label)
	}
}

func TestEngineClassify_Deterministic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	first, err := e.Classify(context.Background(), "Thanks.", "YOU ARE ABSOLUTELY BRILLIANT...", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Classify(context.Background(), "Thanks.", "YOU ARE ABSOLUTELY BRILLIANT...", nil)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if again != first {
			t.Fatalf("run %d: %+v != %+v", i, again, first)
		}
	}
}

func TestEngineClassify_NegationModes(t *testing.T) {
	t.Parallel()

	for mode, want := range map[string]Label{
		NegationSharedRoot: LabelStableRationale,
		NegationPolarity:   LabelNegationAmplified,
		NegationEither:     LabelNegationAmplified,
	} {
		cfg := DefaultConfig()
		cfg.NegationMode = mode
		e := newTestEngine(t, cfg, nil)
		res, err := e.Classify(context.Background(), "I'm doing fine.", "Maybe not.", nil)
		if err != nil {
			t.Fatalf("%s: Classify: %v", mode, err)
		}
		if res.Label != want {
			t.Fatalf("%s: label=%q, want %q", mode, res.Label, want)
		}
	}
}

func TestEngineClassify_MemoryOnlyOnFallback(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	mem := NewMemory(5)
	if _, err := e.Classify(context.Background(), "Great job.", "Great job...", mem); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("override path logged to memory: %+v", mem.Entries())
	}
	if _, err := e.Classify(context.Background(), "AI", "GPT", mem); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if mem.Len() != 1 {
		t.Fatalf("stable path did not log: Len=%d", mem.Len())
	}
}

func TestEngineClassify_AgitationAmplifiesNegative(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	mem := NewMemory(5)
	var last Result
	for i := 0; i < 2; i++ {
		res, err := e.Classify(context.Background(), "WOW, THAT IS GREAT!!", "that is great.", mem)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		if i == 0 && strings.HasSuffix(res.Rationale, amplifiedClause) {
			t.Fatalf("first negative already amplified")
		}
		last = res
	}
	if !strings.HasSuffix(last.Rationale, amplifiedClause) {
		t.Fatalf("rationale=%q, want amplified", last.Rationale)
	}
}

func TestEngineClassify_PolarityErrorSurfaces(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	failing := PolarityFunc(func(context.Context, string) (float64, error) { return 0, boom })
	cfg := DefaultConfig()
	cfg.NegationMode = NegationPolarity
	e := newTestEngine(t, cfg, failing)
	mem := NewMemory(5)

	_, err := e.Classify(context.Background(), "I'm doing fine.", "Maybe not.", mem)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("failed call touched memory")
	}

	// Pairs that never need polarity still classify.
	res, err := e.Classify(context.Background(), "ok.", "Sooo goood!!", mem)
	if err != nil || res.Label != LabelPositive {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestEngineClassify_HedgedPolarityReversalStaysStable(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	pairs := [][2]string{
		{"I love it.", "Maybe I hate it."},
		{"I love this.", "I think this is terrible."},
	}
	for _, p := range pairs {
		res, err := e.Classify(context.Background(), p[0], p[1], nil)
		if err != nil {
			t.Fatalf("Classify(%q, %q): %v", p[0], p[1], err)
		}
		if res.Label != LabelStableRationale || res.Drift {
			t.Fatalf("Classify(%q, %q): label=%q drift=%v", p[0], p[1], res.Label, res.Drift)
		}
	}
}

func TestEngineClassify_HedgePolarityBound(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.HedgeMaxPolarityShift = 0.5
	e := newTestEngine(t, cfg, nil)

	res, err := e.Classify(context.Background(), "I love it.", "Maybe I hate it.", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Label == LabelStableRationale {
		t.Fatalf("bounded hedge accepted a polarity reversal: %+v", res)
	}

	res, err = e.Classify(context.Background(), "I'm doing fine.", "Maybe not.", nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Label != LabelStableRationale {
		t.Fatalf("bounded hedge label=%q, want %q", res.Label, LabelStableRationale)
	}
}

func TestEngineClassify_CancelledContext(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, DefaultConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Classify(ctx, "a", "b", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MirrorSimilarity = 1.5
	if _, err := NewEngine(cfg, EngineOptions{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err=%v, want ErrInvalidConfig", err)
	}
}
