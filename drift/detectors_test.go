package drift

import "testing"

func TestDetectors_SymbolicTag(t *testing.T) {
	t.Parallel()

	d := newDetectors(DefaultConfig())
	tag, ok := d.symbolicTag("A moment of AWE.")
	if !ok || tag != "symbolic_awe" {
		t.Fatalf("tag=%q ok=%v", tag, ok)
	}
	if _, ok := d.symbolicTag(""); ok {
		t.Fatalf("empty text matched")
	}
}

func TestDetectors_Mirrored(t *testing.T) {
	t.Parallel()

	d := newDetectors(DefaultConfig())
	if !d.mirrored("I'm fine.", "I SAID I'M FINE!!!") {
		t.Fatalf("containment not treated as mirror")
	}
	if !d.mirrored("I like it.", "I don't like it.") {
		t.Fatalf("similar texts not treated as mirror")
	}
	if d.mirrored("", "anything") || d.mirrored("...", "!!!") {
		t.Fatalf("empty normalized text treated as mirror")
	}
	if !d.mirrored("!!!!!!", "!!!!!!") || !d.mirrored("😂😂😂", " 😂😂😂 ") {
		t.Fatalf("equal symbol-only texts not treated as mirror")
	}
	if d.mirrored("Ignore that.", "PLEASE LISTEN!!!") {
		t.Fatalf("unrelated texts treated as mirror")
	}
}

func TestDetectors_RhetoricalDrift(t *testing.T) {
	t.Parallel()

	d := newDetectors(DefaultConfig())
	if !d.rhetoricalDrift("You helped a lot.", "You helped a lot?") {
		t.Fatalf("statement to question not detected")
	}
	if !d.rhetoricalDrift("you helped a lot!", "You helped a lot??") {
		t.Fatalf("case and punctuation differences not ignored")
	}
	if d.rhetoricalDrift("You helped.", "Did you help?") {
		t.Fatalf("different question detected as rhetorical")
	}
	if d.rhetoricalDrift(".", "?") {
		t.Fatalf("punctuation-only pair detected")
	}
}

func TestDetectors_SarcasmIsRelativeToBaseline(t *testing.T) {
	t.Parallel()

	d := newDetectors(DefaultConfig())
	if !d.sarcasmHint("Great job.", "Great job...") {
		t.Fatalf("trailing ellipsis not detected")
	}
	if !d.sarcasmHint("Great.", "Great 🙃") {
		t.Fatalf("marker not detected")
	}
	if d.sarcasmHint("Sure. /s", "Sure. /s") {
		t.Fatalf("identical pair detected as sarcasm")
	}
	if d.sarcasmHint("Take the measure.", "Take the measure. Now.") {
		t.Fatalf("marker matched inside a word")
	}
}

func TestDetectors_HedgeNegationEmoji(t *testing.T) {
	t.Parallel()

	d := newDetectors(DefaultConfig())
	if !d.hedged("It works.", "Maybe it works.") {
		t.Fatalf("hedge not detected")
	}
	if d.hedged("Maybe.", "Maybe.") {
		t.Fatalf("identical hedge detected")
	}
	if !d.newNegation("I like it.", "I don't like it.") {
		t.Fatalf("new negation not detected")
	}
	if !d.newNegation("I like it.", "I don’t like it.") {
		t.Fatalf("typographic apostrophe negation not detected")
	}
	if d.newNegation("not now", "not now") {
		t.Fatalf("identical negation detected")
	}
	if !d.emojiOverride("Ok", "Ok 😂😂") {
		t.Fatalf("emoji override not detected")
	}
	if d.emojiOverride("😂😂", "😂😂") || d.emojiOverride("Ok", "Ok 😂") {
		t.Fatalf("emoji override fired without new emoji above the count")
	}
}

func TestDetectors_EmphasisAndEcho(t *testing.T) {
	t.Parallel()

	d := newDetectors(DefaultConfig())
	if !d.emphasisOverride(1.0, false) {
		t.Fatalf("emphasis at threshold not detected")
	}
	if d.emphasisOverride(2.0, true) {
		t.Fatalf("mirrored emphasis detected as override")
	}
	if !d.mockedEcho(true, 0.61) || d.mockedEcho(true, 0.6) || d.mockedEcho(false, 2) {
		t.Fatalf("mocked echo margin not respected")
	}
}

func TestSharedRoot(t *testing.T) {
	t.Parallel()

	if !sharedRoot("I like it.", "I don't like it.") {
		t.Fatalf("shared words not found")
	}
	if sharedRoot("I'm doing fine.", "Maybe not.") {
		t.Fatalf("disjoint texts share a root")
	}
}

func TestResponsiveness(t *testing.T) {
	t.Parallel()

	if got := responsiveness(LabelMockedEcho, "x", true); got != Reactive {
		t.Fatalf("mocked echo=%q", got)
	}
	if got := responsiveness(LabelEmphasisOverride, "LOUD", false); got != Proactive {
		t.Fatalf("emphasis override=%q", got)
	}
	if got := responsiveness(LabelEmojiEmphasisOverride, "Ok 😂😂", true); got != Neutral {
		t.Fatalf("mirrored emoji=%q", got)
	}
	if got := responsiveness(LabelSarcasmHint, "LOUD", false); got != Neutral {
		t.Fatalf("sarcasm=%q", got)
	}
}
