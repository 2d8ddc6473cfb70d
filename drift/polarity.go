package drift

import (
	"context"
	"math"
	"strings"
)

// PolarityProvider scores the sentiment of text in [-1, 1].
type PolarityProvider interface {
	Polarity(ctx context.Context, text string) (float64, error)
}

// PolarityFunc adapts a plain function to PolarityProvider.
type PolarityFunc func(ctx context.Context, text string) (float64, error)

func (f PolarityFunc) Polarity(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}

var defaultPolarityLexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "fine": 0.4, "okay": 0.5, "ok": 0.5, "nice": 0.6,
	"like": 0.3, "love": 0.5, "loved": 0.7, "lovely": 0.5, "happy": 0.8, "glad": 0.5,
	"excellent": 1.0, "amazing": 0.6, "awesome": 1.0, "incredible": 0.9, "wonderful": 1.0,
	"perfect": 1.0, "best": 1.0, "better": 0.5, "helpful": 0.5, "helped": 0.3,
	"thanks": 0.2, "thank": 0.2, "beautiful": 0.85, "brilliant": 0.9, "calm": 0.3,
	"pleased": 0.5, "enjoy": 0.4, "fun": 0.3, "well": 0.2, "right": 0.3, "sure": 0.5,
	"bad": -0.7, "awful": -1.0, "terrible": -1.0, "horrible": -1.0, "hate": -0.8,
	"hated": -0.9, "sad": -0.5, "angry": -0.5, "mad": -0.6, "worse": -0.4, "worst": -1.0,
	"disgusting": -1.0, "outrageous": -0.6, "annoying": -0.8, "annoyed": -0.5,
	"upset": -0.5, "wrong": -0.5, "broken": -0.4, "stupid": -0.8, "ugly": -0.7,
	"boring": -1.0, "tired": -0.4, "sorry": -0.5, "poor": -0.4, "useless": -0.5,
	"fail": -0.5, "failed": -0.5, "lament": -0.3, "resignation": -0.2, "insane": -1.0,
}

var polarityIntensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "absolutely": 1.4,
	"totally": 1.3, "quite": 1.1, "super": 1.4,
}

// LexiconPolarity is a dictionary polarity scorer. Each scored word contributes its
// lexicon value, scaled by a preceding intensifier and flipped (at half strength)
// by a preceding negation; the result is the mean over scored words.
type LexiconPolarity struct {
	lexicon   map[string]float64
	negations map[string]struct{}
}

// NewLexiconPolarity returns a scorer over the built-in lexicon. Extra entries
// override built-in scores.
func NewLexiconPolarity(negationWords []string, extra map[string]float64) *LexiconPolarity {
	p := &LexiconPolarity{
		lexicon:   make(map[string]float64, len(defaultPolarityLexicon)+len(extra)),
		negations: make(map[string]struct{}, len(negationWords)),
	}
	for w, v := range defaultPolarityLexicon {
		p.lexicon[w] = v
	}
	for w, v := range extra {
		p.lexicon[lowerText(w)] = v
	}
	for _, w := range negationWords {
		p.negations[lowerText(strings.TrimSpace(w))] = struct{}{}
	}
	return p
}

func (p *LexiconPolarity) isNegation(tok string) bool {
	if _, ok := p.negations[tok]; ok {
		return true
	}
	return strings.HasSuffix(tok, "n't")
}

// Polarity never fails; ctx is accepted to satisfy PolarityProvider.
func (p *LexiconPolarity) Polarity(_ context.Context, text string) (float64, error) {
	var sum float64
	scored := 0
	negate := false
	boost := 1.0
	for _, tok := range tokens(text) {
		if p.isNegation(tok) {
			negate = true
			continue
		}
		if m, ok := polarityIntensifiers[tok]; ok {
			boost *= m
			continue
		}
		v, ok := p.lexicon[tok]
		if !ok {
			continue
		}
		v *= boost
		if negate {
			v *= -0.5
		}
		sum += v
		scored++
		negate = false
		boost = 1.0
	}
	if scored == 0 {
		return 0, nil
	}
	return ClampPolarity(sum / float64(scored)), nil
}

// ClampPolarity bounds v to [-1, 1] and rounds it to three decimals. NaN becomes 0.
func ClampPolarity(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return math.Round(v*1000) / 1000
}
