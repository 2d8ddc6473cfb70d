package drift

import (
	"strings"
	"unicode"
)

// detectors holds the compiled word lists every signal check needs. Each check is
// a total function: empty or punctuation-only text yields false.
type detectors struct {
	cfg       Config
	negations phraseSet
	hedges    phraseSet
}

func newDetectors(cfg Config) detectors {
	return detectors{
		cfg:       cfg,
		negations: newPhraseSet(cfg.NegationWords),
		hedges:    newPhraseSet(cfg.HedgePhrases),
	}
}

// symbolicTag returns "symbolic_<keyword>" for the first configured keyword found
// in incoming, matched case-insensitively as a substring.
func (d detectors) symbolicTag(incoming string) (string, bool) {
	lowered := lowerText(incoming)
	if lowered == "" {
		return "", false
	}
	for _, tag := range d.cfg.RareTags {
		tag = lowerText(strings.TrimSpace(tag))
		if tag != "" && strings.Contains(lowered, tag) {
			return "symbolic_" + tag, true
		}
	}
	return "", false
}

// mirrored reports whether incoming restates baseline: the texts are equal, the
// normalized incoming contains the normalized baseline, or the two are similar
// enough. Equal punctuation- or emoji-only texts normalize to "" but still mirror.
func (d detectors) mirrored(baseline, incoming string) bool {
	if b := strings.TrimSpace(baseline); b != "" && b == strings.TrimSpace(incoming) {
		return true
	}
	nb, ni := normalizeText(baseline), normalizeText(incoming)
	if nb == "" || ni == "" {
		return false
	}
	if strings.Contains(ni, nb) {
		return true
	}
	return similarity(nb, ni) >= d.cfg.MirrorSimilarity
}

// mockedEcho is a mirrored reply whose emphasis rose by more than the echo margin.
func (d detectors) mockedEcho(mirror bool, emphasisDelta float64) bool {
	return mirror && emphasisDelta > d.cfg.EchoMargin
}

// rhetoricalDrift reports a statement turned into a question: incoming ends in '?'
// and, without its question marks, equals baseline without its trailing '.'/'!'.
func (d detectors) rhetoricalDrift(baseline, incoming string) bool {
	inc := strings.TrimSpace(incoming)
	if !strings.HasSuffix(inc, "?") {
		return false
	}
	incCore := strings.TrimSpace(strings.TrimRight(inc, "?"))
	baseCore := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(baseline), ".!"))
	if incCore == "" || baseCore == "" {
		return false
	}
	return strings.EqualFold(foldApostrophes(incCore), foldApostrophes(baseCore))
}

// sarcasmHint reports a sarcasm marker or trailing ellipsis that incoming adds
// over baseline.
func (d detectors) sarcasmHint(baseline, incoming string) bool {
	return d.sarcasmMarks(incoming) > d.sarcasmMarks(baseline)
}

func (d detectors) sarcasmMarks(text string) int {
	n := 0
	for _, m := range d.cfg.SarcasmMarkers {
		n += markerCount(text, m)
	}
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, "…") {
		n++
	}
	return n
}

// hedged reports whether incoming introduces a hedge phrase baseline lacks.
// The polarity bound is checked by the caller, which owns the provider.
func (d detectors) hedged(baseline, incoming string) bool {
	return d.hedges.count(incoming) > d.hedges.count(baseline)
}

// emphasisOverride fires on shouted text that is not a restatement of baseline.
func (d detectors) emphasisOverride(incomingEmphasis float64, mirror bool) bool {
	return incomingEmphasis >= d.cfg.EmphasisOverride && !mirror
}

// emojiOverride fires when incoming carries at least the configured number of
// emoji and more than baseline.
func (d detectors) emojiOverride(baseline, incoming string) bool {
	n := countEmoji(incoming)
	return n >= d.cfg.EmojiOverrideCount && n > countEmoji(baseline)
}

// newNegation reports whether incoming adds a negation word over baseline.
func (d detectors) newNegation(baseline, incoming string) bool {
	return d.negations.count(incoming) > d.negations.count(baseline)
}

// sharedRoot reports a non-empty intersection of the word tokens of both texts.
func sharedRoot(baseline, incoming string) bool {
	base := wordSet(baseline)
	for w := range wordSet(incoming) {
		if _, ok := base[w]; ok {
			return true
		}
	}
	return false
}

// responsiveness attributes the change: a mocked echo reacts to baseline, while
// unmirrored shouting or emoji with capitals comes from the speaker.
func responsiveness(label Label, incoming string, mirror bool) Responsiveness {
	switch label {
	case LabelMockedEcho:
		return Reactive
	case LabelEmphasisOverride, LabelEmojiEmphasisOverride:
		if hasUpper(incoming) && !mirror {
			return Proactive
		}
	}
	return Neutral
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
