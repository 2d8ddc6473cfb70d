package main

import (
	"errors"
	"fmt"

	"github.com/theimaginaryfoundation/tonal-drift/drift"
)

const (
	polarityLexicon = "lexicon"
	polarityOpenAI  = "openai"
)

type Config struct {
	ConfigPath  string
	Threshold   float64
	MemorySize  int
	JournalPath string
	ExportPath  string
	NoColor     bool
	Polarity    string
	Model       string
	APIKey      string
	LogLevel    string
	LogFormat   string
}

func (c Config) Validate() error {
	if c.Threshold < 0 {
		return errors.New("threshold must be >= 0")
	}
	if c.MemorySize < 0 {
		return errors.New("memory-size must be >= 0")
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
		ConfigPath: drift.DefaultConfigPath,
		Polarity:   polarityLexicon,
		Model:      "gpt-5-mini",
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}
