package drift

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// EmphasisWeights is one call site's weight table for the emphasis scorer.
// A zero weight disables its feature.
type EmphasisWeights struct {
	Caps          float64 `yaml:"caps"`
	CapsRatio     float64 `yaml:"caps_ratio"`
	Exclaim       float64 `yaml:"exclaim"`
	Question      float64 `yaml:"question"`
	PunctRun      float64 `yaml:"punct_run"`
	Elongated     float64 `yaml:"elongated"`
	Emoji         float64 `yaml:"emoji"`
	SpacedLetters float64 `yaml:"spaced_letters"`
	EmphaticCaps  float64 `yaml:"emphatic_caps"`
}

// InteractiveWeights is the table used when comparing a pair of utterances.
func InteractiveWeights() EmphasisWeights {
	return EmphasisWeights{
		Caps:      0.05,
		Exclaim:   0.1,
		Question:  0.1,
		PunctRun:  0.1,
		Elongated: 0.2,
		Emoji:     0.1,
	}
}

// BatchWeights is the table used by single-text field drift analysis.
func BatchWeights() EmphasisWeights {
	return EmphasisWeights{
		CapsRatio:     1.0,
		PunctRun:      0.5,
		SpacedLetters: 1.0,
		EmphaticCaps:  1.0,
	}
}

// Validate rejects negative or non-finite weights, which would break the
// non-negative score guarantee.
func (w EmphasisWeights) Validate() error {
	for name, v := range map[string]float64{
		"caps": w.Caps, "caps_ratio": w.CapsRatio, "exclaim": w.Exclaim,
		"question": w.Question, "punct_run": w.PunctRun, "elongated": w.Elongated,
		"emoji": w.Emoji, "spaced_letters": w.SpacedLetters, "emphatic_caps": w.EmphaticCaps,
	} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("%w: weight %s=%v", ErrInvalidConfig, name, v)
		}
	}
	return nil
}

// EmphasisFeatures are the raw surface counts the score is built from.
type EmphasisFeatures struct {
	Caps          int
	Letters       int
	Exclaims      int
	Questions     int
	PunctRun      int
	Elongated     int
	Emoji         int
	SpacedLetters int
	EmphaticCaps  int
}

// CapsRatio is Caps/Letters, or 0 for text without letters.
func (f EmphasisFeatures) CapsRatio() float64 {
	if f.Letters == 0 {
		return 0
	}
	return float64(f.Caps) / float64(f.Letters)
}

// Scorer computes symbolic emphasis with a fixed weight table.
type Scorer struct {
	weights  EmphasisWeights
	acronyms map[string]struct{}
	emphatic map[string]struct{}
}

// NewScorer builds a scorer. Acronyms are matched case-sensitively against whole
// tokens and their capitals are not counted; emphatic words are matched lowercase.
func NewScorer(w EmphasisWeights, acronyms, emphaticWords []string) Scorer {
	s := Scorer{
		weights:  w,
		acronyms: make(map[string]struct{}, len(acronyms)),
		emphatic: make(map[string]struct{}, len(emphaticWords)),
	}
	for _, a := range acronyms {
		s.acronyms[strings.TrimSpace(a)] = struct{}{}
	}
	for _, e := range emphaticWords {
		s.emphatic[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return s
}

// Score returns the weighted emphasis of text. It is always >= 0 and 0 for "".
func (s Scorer) Score(text string) float64 {
	f := s.Features(text)
	w := s.weights
	score := w.Caps*float64(f.Caps) +
		w.CapsRatio*f.CapsRatio() +
		w.Exclaim*float64(f.Exclaims) +
		w.Question*float64(f.Questions) +
		w.PunctRun*float64(f.PunctRun) +
		w.Elongated*float64(f.Elongated) +
		w.Emoji*float64(f.Emoji) +
		w.SpacedLetters*float64(f.SpacedLetters) +
		w.EmphaticCaps*float64(f.EmphaticCaps)
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return score
}

// Features extracts the surface counts of text.
func (s Scorer) Features(text string) EmphasisFeatures {
	var f EmphasisFeatures
	if text == "" {
		return f
	}

	run := 0
	flushRun := func() {
		if run >= 2 {
			f.PunctRun += run
		}
		run = 0
	}
	for _, r := range text {
		switch r {
		case '!':
			f.Exclaims++
			run++
			continue
		case '?':
			f.Questions++
			run++
			continue
		}
		flushRun()
	}
	flushRun()

	singles := 0
	flushSingles := func() {
		if singles >= 3 {
			f.SpacedLetters++
		}
		singles = 0
	}
	for _, tok := range strings.Fields(text) {
		core := trimToWord(tok)
		_, whitelisted := s.acronyms[core]
		upper, letters := 0, 0
		for _, r := range tok {
			if !unicode.IsLetter(r) {
				continue
			}
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
		f.Letters += letters
		if !whitelisted {
			f.Caps += upper
		}
		if hasLetterRun(tok, 3) {
			f.Elongated++
		}
		if letters >= 2 && upper == letters && !whitelisted {
			if _, ok := s.emphatic[strings.ToLower(core)]; ok {
				f.EmphaticCaps++
			}
		}
		if letters == 1 && len([]rune(core)) == 1 {
			singles++
		} else {
			flushSingles()
		}
	}
	flushSingles()

	f.Emoji = countEmoji(text)
	return f
}

// trimToWord strips leading and trailing runes that are not letters or digits.
func trimToWord(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// hasLetterRun reports whether s contains a letter repeated n or more times in a row.
func hasLetterRun(s string, n int) bool {
	var prev rune
	count := 0
	for _, r := range s {
		if unicode.IsLetter(r) && unicode.ToLower(r) == unicode.ToLower(prev) {
			count++
		} else {
			count = 1
		}
		prev = r
		if unicode.IsLetter(r) && count >= n {
			return true
		}
	}
	return false
}
