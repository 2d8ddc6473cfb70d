package drift

import (
	"strings"
	"unicode"
)

// TokenScore is the salience of one token in an utterance.
type TokenScore struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
}

// HeatmapProvider scores each token of text. It is presentation only; the engine
// never consults it.
type HeatmapProvider interface {
	Heatmap(text string) []TokenScore
}

// Heatmap score bands.
const (
	HeatCharged = 1.0
	HeatShouted = 0.7
	HeatBase    = 0.3
)

// DefaultChargedWords are the tokens the lexicon heatmap marks hottest.
var DefaultChargedWords = []string{"disgusting", "outrageous", "horrible"}

// LexiconHeatmap marks charged words hottest and shouted tokens warm.
type LexiconHeatmap struct {
	charged  map[string]struct{}
	acronyms map[string]struct{}
}

func NewLexiconHeatmap(charged, acronyms []string) *LexiconHeatmap {
	h := &LexiconHeatmap{
		charged:  make(map[string]struct{}, len(charged)),
		acronyms: make(map[string]struct{}, len(acronyms)),
	}
	for _, w := range charged {
		h.charged[lowerText(strings.TrimSpace(w))] = struct{}{}
	}
	for _, a := range acronyms {
		h.acronyms[strings.TrimSpace(a)] = struct{}{}
	}
	return h
}

func (h *LexiconHeatmap) Heatmap(text string) []TokenScore {
	fields := strings.Fields(text)
	out := make([]TokenScore, 0, len(fields))
	for _, tok := range fields {
		core := trimToWord(tok)
		score := HeatBase
		if _, ok := h.charged[lowerText(core)]; ok {
			score = HeatCharged
		} else if h.shouted(core) {
			score = HeatShouted
		}
		out = append(out, TokenScore{Token: tok, Score: score})
	}
	return out
}

func (h *LexiconHeatmap) shouted(core string) bool {
	if _, ok := h.acronyms[core]; ok {
		return false
	}
	letters := 0
	for _, r := range core {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}
