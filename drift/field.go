package drift

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// FieldCode is a field drift category. Negative codes are negative drift, 99 is
// symbolic emphasis.
type FieldCode int

const (
	FieldConflict         FieldCode = -3
	FieldVeryNegative     FieldCode = -2
	FieldMildNegative     FieldCode = -1
	FieldStable           FieldCode = 0
	FieldMildPositive     FieldCode = 1
	FieldStrongPositive   FieldCode = 2
	FieldCriticalPositive FieldCode = 3
	FieldSymbolicEmphasis FieldCode = 99
)

const (
	fieldUnknownColorHex   = "#000000"
	fieldEmphasisColorAt   = 0.75
	fieldChargedNeutralAt  = 1.5
	fieldNeutralPolarityAt = 0.1
)

// PaletteEntry is the display color of a field code.
type PaletteEntry struct {
	Label string `json:"label"`
	Hex   string `json:"hex"`
	Name  string `json:"name"`
}

// Palette is an accessible seven-color scheme plus the conflict code.
var Palette = map[FieldCode]PaletteEntry{
	FieldConflict:         {Label: "Field Conflict", Hex: fieldUnknownColorHex, Name: "Black"},
	FieldVeryNegative:     {Label: "Very Negative Drift", Hex: "#0072B2", Name: "Deep Blue"},
	FieldMildNegative:     {Label: "Mild Negative Drift", Hex: "#56B4E9", Name: "Sky Blue"},
	FieldStable:           {Label: "Stable", Hex: "#999999", Name: "Gray"},
	FieldMildPositive:     {Label: "Mild Positive Drift", Hex: "#F0E442", Name: "Mustard Yellow"},
	FieldStrongPositive:   {Label: "Strong Positive Drift", Hex: "#E69F00", Name: "Orange"},
	FieldCriticalPositive: {Label: "Critical Positive Drift", Hex: "#D55E00", Name: "Vermilion"},
	FieldSymbolicEmphasis: {Label: "Symbolic Emphasis", Hex: "#CC79A7", Name: "Purple"},
}

var fieldTags = map[FieldCode]string{
	FieldVeryNegative:     "Masked Despair",
	FieldMildNegative:     "Emotional Compression",
	FieldStable:           "No Deviation",
	FieldMildPositive:     "Overcompensation",
	FieldStrongPositive:   "Forced Positivity",
	FieldCriticalPositive: "Inverted Affect",
	FieldSymbolicEmphasis: "Symbolic Emphasis",
}

// Default word banks for field drift.
var (
	DefaultShockWords = []string{
		"napalm", "guillotine", "poison", "grenade", "nuke", "casket", "eviscerate", "arsenic",
	}
	DefaultAffectionateOpeners = []string{
		"honey", "sweetie", "darling", "dear", "babe", "love", "my friend", "cutie", "snookums",
	}
)

// ColorCode maps polarity and batch emphasis onto a field code. Strong emphasis
// wins over polarity; otherwise polarity falls into symmetric bands around a
// ±0.10 stable zone.
func ColorCode(polarity, emphasis float64) FieldCode {
	switch {
	case emphasis >= fieldEmphasisColorAt:
		return FieldSymbolicEmphasis
	case polarity <= -0.60:
		return FieldVeryNegative
	case polarity < -fieldNeutralPolarityAt:
		return FieldMildNegative
	case polarity <= fieldNeutralPolarityAt:
		return FieldStable
	case polarity < 0.25:
		return FieldMildPositive
	case polarity < 0.60:
		return FieldStrongPositive
	default:
		return FieldCriticalPositive
	}
}

// FieldAnalysis is the batch result for one text.
type FieldAnalysis struct {
	Text          string    `json:"text"`
	Polarity      float64   `json:"polarity"`
	EmphasisScore float64   `json:"emphasis_score"`
	Code          FieldCode `json:"drift_code"`
	DriftLevel    string    `json:"drift_level"`
	Tag           string    `json:"spanda_tag"`
	ColorHex      string    `json:"color_hex"`
}

// FieldAnalyzer classifies single texts by polarity, batch emphasis and word banks.
type FieldAnalyzer struct {
	scorer    Scorer
	polarity  PolarityProvider
	shock     []string
	affection []string
}

// NewFieldAnalyzer builds an analyzer using cfg's batch weight table. A nil
// provider selects the lexicon polarity scorer.
func NewFieldAnalyzer(cfg Config, polarity PolarityProvider) (*FieldAnalyzer, error) {
	if err := cfg.BatchWeights.Validate(); err != nil {
		return nil, fmt.Errorf("NewFieldAnalyzer: %w", err)
	}
	if polarity == nil {
		polarity = NewLexiconPolarity(cfg.NegationWords, nil)
	}
	return &FieldAnalyzer{
		scorer:    NewScorer(cfg.BatchWeights, cfg.AcronymWhitelist, cfg.EmphaticWords),
		polarity:  polarity,
		shock:     DefaultShockWords,
		affection: DefaultAffectionateOpeners,
	}, nil
}

// Analyze scores text and assigns its field code, level and tag.
func (a *FieldAnalyzer) Analyze(ctx context.Context, text string) (FieldAnalysis, error) {
	p, err := a.polarity.Polarity(ctx, text)
	if err != nil {
		return FieldAnalysis{}, fmt.Errorf("Analyze: polarity: %w", err)
	}
	emph := a.scorer.Score(text)
	code, level, tag := a.fieldDrift(text, p, emph)

	hex := fieldUnknownColorHex
	if entry, ok := Palette[code]; ok {
		hex = entry.Hex
	}
	return FieldAnalysis{
		Text:          text,
		Polarity:      p,
		EmphasisScore: emph,
		Code:          code,
		DriftLevel:    level,
		Tag:           tag,
		ColorHex:      hex,
	}, nil
}

func (a *FieldAnalyzer) fieldDrift(text string, polarity, emphasis float64) (FieldCode, string, string) {
	lowered := lowerText(text)
	affection := containsAny(lowered, a.affection)
	shock := containsAny(lowered, a.shock)

	switch {
	case affection && shock:
		return FieldConflict, Palette[FieldConflict].Label, "Wry Sarcasm / Affective Inversion"
	case shock:
		return FieldCriticalPositive, Palette[FieldCriticalPositive].Label, "Symbolic Voltage Detected"
	case emphasis >= fieldChargedNeutralAt && math.Abs(polarity) < fieldNeutralPolarityAt:
		return FieldSymbolicEmphasis, Palette[FieldSymbolicEmphasis].Label, "Overwritten Neutrality – Emotional Charge"
	}
	code := ColorCode(polarity, emphasis)
	return code, Palette[code].Label, fieldTags[code]
}

func containsAny(lowered string, words []string) bool {
	for _, w := range words {
		if w = lowerText(strings.TrimSpace(w)); w != "" && strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}
