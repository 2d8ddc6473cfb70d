package drift

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

const amplifiedClause = " (amplified by prior unresolved tension)"

// EngineOptions carries the engine's collaborators. Zero values select the
// lexicon polarity scorer and a discarding logger.
type EngineOptions struct {
	Polarity PolarityProvider
	Logger   *slog.Logger
}

// Engine classifies tonal drift between a baseline and an incoming utterance.
// It holds no per-session state; pass a Memory to Classify for history.
type Engine struct {
	cfg      Config
	scorer   Scorer
	detect   detectors
	polarity PolarityProvider
	logger   *slog.Logger
}

// NewEngine validates cfg and builds an engine.
func NewEngine(cfg Config, opts EngineOptions) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewEngine: %w", err)
	}
	e := &Engine{
		cfg:      cfg,
		scorer:   NewScorer(cfg.Weights, cfg.AcronymWhitelist, cfg.EmphaticWords),
		detect:   newDetectors(cfg),
		polarity: opts.Polarity,
		logger:   opts.Logger,
	}
	if e.polarity == nil {
		e.polarity = NewLexiconPolarity(cfg.NegationWords, nil)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Emphasis scores text with the engine's interactive weight table.
func (e *Engine) Emphasis(text string) float64 { return e.scorer.Score(text) }

// Classify picks exactly one label for the pair. Override detectors compete by
// weight; when none fires, the emphasis delta decides between positive, negative
// and stable. mem may be nil; it is only written on the fallback paths, after
// every signal has been computed, so a failed call leaves it untouched.
func (e *Engine) Classify(ctx context.Context, baseline, incoming string, mem *Memory) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("Classify: %w", err)
	}

	baseScore := e.scorer.Score(baseline)
	incScore := e.scorer.Score(incoming)
	driftScore := incScore - baseScore

	polarities := map[string]float64{}
	polarity := func(text string) (float64, error) {
		if v, ok := polarities[text]; ok {
			return v, nil
		}
		v, err := e.polarity.Polarity(ctx, text)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("non-finite polarity %v", v)
		}
		polarities[text] = v
		return v, nil
	}

	mirror := e.detect.mirrored(baseline, incoming)
	tag, symbolic := e.detect.symbolicTag(incoming)

	var candidates []candidate
	add := func(l Label, rationale string) {
		if rationale == "" {
			rationale = overrideMessage(l)
		}
		candidates = append(candidates, candidate{label: l, weight: Weight(l), rationale: rationale})
	}

	if symbolic {
		add(LabelSymbolicOverride, "Symbolic trigger: "+tag)
	}
	if e.detect.mockedEcho(mirror, driftScore) {
		add(LabelMockedEcho, "")
	}
	if e.detect.rhetoricalDrift(baseline, incoming) {
		add(LabelRhetoricalDrift, "")
	}
	if e.detect.sarcasmHint(baseline, incoming) {
		add(LabelSarcasmHint, "")
	}
	negated, err := e.negationAmplified(baseline, incoming, polarity)
	if err != nil {
		return Result{}, fmt.Errorf("Classify: polarity: %w", err)
	}
	if negated {
		add(LabelNegationAmplified, "")
	}
	if e.detect.emphasisOverride(incScore, mirror) {
		add(LabelEmphasisOverride, "")
	}
	if e.detect.hedged(baseline, incoming) {
		ok, err := e.hedgeWithinShift(baseline, incoming, polarity)
		if err != nil {
			return Result{}, fmt.Errorf("Classify: polarity: %w", err)
		}
		if ok {
			add(LabelStableRationale, "")
		}
	}
	if e.detect.emojiOverride(baseline, incoming) {
		add(LabelEmojiEmphasisOverride, "")
	}

	res := Result{
		DriftScore:       driftScore,
		EmphasisOverride: incScore >= e.cfg.EmphasisOverride,
		SymbolicOverride: symbolic,
		MirrorMatch:      mirror,
	}

	if len(candidates) > 0 {
		win := candidates[0]
		for _, c := range candidates[1:] {
			if c.weight > win.weight {
				win = c
			}
		}
		e.logger.Debug("drift candidates",
			"labels", candidateLabels(candidates),
			"winner", win.label,
			"emphasis_delta", driftScore,
			"mirror", mirror)

		res.Drift = win.weight >= DriftWeight
		res.Label = win.label
		res.Rationale = win.rationale
		res.FieldResponsiveness = responsiveness(win.label, incoming, mirror)
		return res, nil
	}

	res.FieldResponsiveness = Neutral
	if math.Abs(driftScore) >= e.cfg.DriftThreshold {
		res.Drift = true
		res.Label = LabelPositive
		if driftScore < 0 {
			res.Label = LabelNegative
		}
		res.Rationale = fmt.Sprintf("Emphasis shift from %.2f to %.2f (Δ=%.2f)", baseScore, incScore, driftScore)
		if mem != nil {
			mem.Log(baseline, incoming, driftScore)
			if res.Label == LabelNegative && mem.RecentAgitation(e.cfg.AgitationThreshold, e.cfg.AgitationWindow) {
				res.Rationale += amplifiedClause
			}
		}
		return res, nil
	}

	res.Label = LabelStable
	res.Rationale = fmt.Sprintf("Emphasis shift within tolerance (Δ=%.2f)", driftScore)
	if mem != nil {
		mem.Log(baseline, incoming, driftScore)
	}
	return res, nil
}

// negationAmplified applies the configured negation mode. The shared-root mode
// never consults polarity.
func (e *Engine) negationAmplified(baseline, incoming string, polarity func(string) (float64, error)) (bool, error) {
	if !e.detect.newNegation(baseline, incoming) {
		return false, nil
	}
	if e.cfg.NegationMode != NegationPolarity && sharedRoot(baseline, incoming) {
		return true, nil
	}
	if e.cfg.NegationMode == NegationSharedRoot {
		return false, nil
	}
	pb, err := polarity(baseline)
	if err != nil {
		return false, err
	}
	pi, err := polarity(incoming)
	if err != nil {
		return false, err
	}
	return pb > 0 && pi <= 0, nil
}

// hedgeWithinShift applies the optional polarity bound on hedges. A zero bound
// accepts every hedge without consulting polarity.
func (e *Engine) hedgeWithinShift(baseline, incoming string, polarity func(string) (float64, error)) (bool, error) {
	if e.cfg.HedgeMaxPolarityShift == 0 {
		return true, nil
	}
	pb, err := polarity(baseline)
	if err != nil {
		return false, err
	}
	pi, err := polarity(incoming)
	if err != nil {
		return false, err
	}
	return math.Abs(pi-pb) < e.cfg.HedgeMaxPolarityShift, nil
}

func candidateLabels(cs []candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c.label))
	}
	return out
}
