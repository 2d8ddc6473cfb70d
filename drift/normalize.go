package drift

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_']+`)

// CoerceText turns an arbitrary value into the text the engine scores. Nil is "".
func CoerceText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// foldApostrophes maps typographic apostrophes to ASCII so word lists match
// "don’t" and "don't" alike.
func foldApostrophes(s string) string {
	return strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'").Replace(s)
}

// lowerText folds case and typographic apostrophes; it is the form every
// phrase list is matched against.
func lowerText(s string) string {
	return cases.Fold().String(foldApostrophes(s))
}

// stripAccents removes combining marks after canonical decomposition.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeText produces the comparison form used for mirror detection:
// case-folded, accent-free, punctuation-free, letter runs capped at two and
// immediately repeated words collapsed.
func normalizeText(s string) string {
	s = stripAccents(lowerText(s))

	var b strings.Builder
	var prev rune
	run := 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
		case unicode.IsSpace(r):
			r = ' '
		default:
			continue
		}
		if r == prev && unicode.IsLetter(r) {
			run++
		} else {
			run = 1
		}
		prev = r
		if run > 2 {
			continue
		}
		b.WriteRune(r)
	}

	words := strings.Fields(b.String())
	out := words[:0]
	for i, w := range words {
		if i > 0 && w == words[i-1] {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// wordSet returns the lowercase word tokens of s, without apostrophe splits.
func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(lowerText(s), -1) {
		for _, part := range strings.Split(w, "'") {
			if part != "" {
				out[part] = struct{}{}
			}
		}
	}
	return out
}

// similarity is the difflib ratio of a and b compared rune by rune.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// countEmoji counts grapheme clusters that contain an emoji, so a flag or a
// skin-toned or ZWJ-joined emoji counts once.
func countEmoji(s string) int {
	n := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		for _, r := range g.Runes() {
			if isEmojiRune(r) {
				n++
				break
			}
		}
	}
	return n
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0x2B50 || r == 0x2B55 || r == 0x2B1B || r == 0x2B1C:
		return true
	case r == 0x203C || r == 0x2049 || r == 0x3030 || r == 0x303D || r == 0x3297 || r == 0x3299:
		return true
	}
	return false
}

// phraseSet matches word sequences such as "i think" against tokenized text.
type phraseSet [][]string

func newPhraseSet(phrases []string) phraseSet {
	var out phraseSet
	for _, p := range phrases {
		if toks := tokens(p); len(toks) > 0 {
			out = append(out, toks)
		}
	}
	return out
}

// tokens splits s into case-folded word tokens; apostrophes stay inside words.
func tokens(s string) []string {
	return wordPattern.FindAllString(lowerText(s), -1)
}

// count returns how many phrase occurrences appear in text.
func (ps phraseSet) count(text string) int {
	if len(ps) == 0 || text == "" {
		return 0
	}
	toks := tokens(text)
	n := 0
	for _, p := range ps {
		for i := 0; i+len(p) <= len(toks); i++ {
			if equalTokens(toks[i:i+len(p)], p) {
				n++
			}
		}
	}
	return n
}

func equalTokens(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// markerCount counts occurrences of marker in text, case-folded. A marker edge
// that is a word rune must sit on a word boundary, so "sure." does not match
// "measure.".
func markerCount(text, marker string) int {
	text, marker = lowerText(text), lowerText(marker)
	if marker == "" || text == "" {
		return 0
	}
	n := 0
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], marker)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(marker)
		if boundaryOK(text, start, end, marker) {
			n++
		}
		from = start + 1
	}
	return n
}

func boundaryOK(text string, start, end int, marker string) bool {
	if isWordRune(firstRune(marker)) && start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if isWordRune(lastRune(marker)) && end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
