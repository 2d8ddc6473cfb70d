package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theimaginaryfoundation/tonal-drift/drift"
)

const (
	modeField = "field"
	modePairs = "pairs"

	polarityLexicon = "lexicon"
	polarityOpenAI  = "openai"
)

type Config struct {
	InputPath      string
	Mode           string
	TextColumn     string
	BaselineColumn string
	IncomingColumn string
	NeutralOnly    bool

	OutJSONL    string
	OutJSON     string
	OutCSV      string
	OutMarkdown string
	PreviewRows int
	Pretty      bool
	JournalPath string

	ConfigPath string
	Polarity   string
	Model      string
	APIKey     string
	LogLevel   string
	LogFormat  string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return errors.New("missing -in")
	}
	switch c.Mode {
	case modeField:
		if c.TextColumn == "" {
			return errors.New("missing -text-col")
		}
	case modePairs:
		if c.BaselineColumn == "" || c.IncomingColumn == "" {
			return errors.New("missing -baseline-col or -incoming-col")
		}
		if c.NeutralOnly {
			return errors.New("-neutral-only applies to -mode field")
		}
	default:
		return fmt.Errorf("unknown -mode %q (want field or pairs)", c.Mode)
	}
	if c.PreviewRows < 0 {
		return errors.New("preview-rows must be >= 0")
	}
	switch c.Polarity {
	case polarityLexicon:
	case polarityOpenAI:
		if c.Model == "" {
			return errors.New("missing -model for -polarity openai")
		}
	default:
		return fmt.Errorf("unknown -polarity %q (want lexicon or openai)", c.Polarity)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Mode:           modeField,
		TextColumn:     "text",
		BaselineColumn: "baseline",
		IncomingColumn: "incoming",
		PreviewRows:    15,
		ConfigPath:     drift.DefaultConfigPath,
		Polarity:       polarityLexicon,
		Model:          "gpt-5-mini",
		LogLevel:       "warn",
		LogFormat:      "text",
	}
}
