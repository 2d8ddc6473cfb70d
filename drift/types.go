package drift

// Label is the single classification chosen for a (baseline, incoming) pair.
type Label string

// Override labels, highest priority first.
const (
	LabelSymbolicOverride      Label = "symbolic_override"
	LabelMockedEcho            Label = "mocked_echo"
	LabelRhetoricalDrift       Label = "rhetorical_drift"
	LabelSarcasmHint           Label = "sarcasm_hint"
	LabelNegationAmplified     Label = "negation_amplified"
	LabelEmphasisOverride      Label = "emphasis_override"
	LabelStableRationale       Label = "stable_rationale"
	LabelEmojiEmphasisOverride Label = "emoji_emphasis_override"
)

// Fallback labels used when no override fires.
const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelStable   Label = "stable"
)

// Responsiveness describes who drove the tone change.
type Responsiveness string

const (
	Reactive  Responsiveness = "reactive"
	Proactive Responsiveness = "proactive"
	Neutral   Responsiveness = "neutral"
)

// DriftWeight is the minimum override weight that counts as drift.
const DriftWeight = 70

// overridePriority is the total order over override labels. Ties in weight are
// broken by position in this slice, earliest first.
var overridePriority = []struct {
	Label   Label
	Weight  int
	Message string
}{
	{LabelSymbolicOverride, 100, ""},
	{LabelMockedEcho, 90, "Incoming mirrors baseline with elevated emphasis."},
	{LabelRhetoricalDrift, 85, "Incoming uses rhetorical question form as a tone shift."},
	{LabelSarcasmHint, 80, "Trailing or embedded sarcasm marker detected."},
	{LabelNegationAmplified, 75, "Negation with shared root detected; drift amplified beyond polarity shift."},
	{LabelEmphasisOverride, 70, "Excessive emphasis detected (e.g., ALL CAPS or punctuation)."},
	{LabelStableRationale, 65, "Hedging phrase detected and drift within threshold."},
	{LabelEmojiEmphasisOverride, 60, "Emoji count triggered emphasis override; not considered drift."},
}

// Weight returns the priority weight of an override label, or 0 for fallback labels.
func Weight(l Label) int {
	for _, p := range overridePriority {
		if p.Label == l {
			return p.Weight
		}
	}
	return 0
}

// IsOverride reports whether l is one of the detector-driven labels.
func IsOverride(l Label) bool {
	return Weight(l) > 0
}

// Labels returns every label the engine can produce, overrides first.
func Labels() []Label {
	out := make([]Label, 0, len(overridePriority)+3)
	for _, p := range overridePriority {
		out = append(out, p.Label)
	}
	return append(out, LabelPositive, LabelNegative, LabelStable)
}

func overrideMessage(l Label) string {
	for _, p := range overridePriority {
		if p.Label == l {
			return p.Message
		}
	}
	return ""
}

// Result is the outcome of one classification. It is built once per call and
// never modified afterwards.
type Result struct {
	Drift               bool           `json:"drift"`
	Label               Label          `json:"label"`
	Rationale           string         `json:"rationale"`
	DriftScore          float64        `json:"drift_score"`
	FieldResponsiveness Responsiveness `json:"field_responsiveness"`

	// Raw signal flags, recorded whether or not their label won.
	EmphasisOverride bool `json:"emphasis_override"`
	SymbolicOverride bool `json:"symbolic_override"`
	MirrorMatch      bool `json:"mirror_match"`
}

// candidate is an override competing for the final label during one Classify call.
type candidate struct {
	label     Label
	weight    int
	rationale string
}
