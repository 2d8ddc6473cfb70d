package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/theimaginaryfoundation/tonal-drift/drift"
)

var (
	negativeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	positiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	stableStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	overrideStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))

	hotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	coolStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type renderer struct {
	color bool
}

// label renders "[LABEL] rationale".
func (r renderer) label(res drift.Result) string {
	tag := "[" + strings.ToUpper(string(res.Label)) + "]"
	if !r.color {
		return tag + " " + res.Rationale
	}
	style := overrideStyle
	switch res.Label {
	case drift.LabelNegative:
		style = negativeStyle
	case drift.LabelPositive:
		style = positiveStyle
	case drift.LabelStable, drift.LabelStableRationale:
		style = stableStyle
	}
	return style.Render(tag) + " " + res.Rationale
}

// heatmap renders tokens as a colored bar, or as indented JSON without color.
func (r renderer) heatmap(tokens []drift.TokenScore) (string, error) {
	if !r.color {
		b, err := json.MarshalIndent(tokens, "", "  ")
		if err != nil {
			return "", fmt.Errorf("render heatmap: %w", err)
		}
		return string(b), nil
	}
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		style := coolStyle
		switch {
		case t.Score > 0.66:
			style = hotStyle
		case t.Score > 0.33:
			style = warmStyle
		}
		parts = append(parts, style.Render(t.Token))
	}
	return strings.Join(parts, " "), nil
}
