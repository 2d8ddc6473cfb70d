package drift

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/theimaginaryfoundation/tonal-drift/drift/fileutils"
	"go-simpler.org/env"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a Config violates the engine's contract.
var ErrInvalidConfig = errors.New("invalid drift config")

// Negation detection modes.
const (
	NegationSharedRoot = "shared_root"
	NegationPolarity   = "polarity"
	NegationEither     = "either"
)

// DefaultConfigPath is the config file the commands look for when -config is not set.
const DefaultConfigPath = "drift_config.yaml"

// Config holds every tunable of the drift engine. Zero values are not meaningful;
// start from DefaultConfig.
type Config struct {
	// DriftThreshold is the |emphasis delta| at or above which the fallback path
	// reports positive/negative drift.
	DriftThreshold float64 `yaml:"polarity_threshold"`

	// EmphasisOverride is the absolute incoming emphasis that triggers emphasis_override.
	EmphasisOverride float64 `yaml:"emphasis_override"`

	// EchoMargin is the emphasis increase a mirrored reply needs to count as mocked_echo.
	EchoMargin float64 `yaml:"echo_margin"`

	// MirrorSimilarity is the minimum similarity ratio of the normalized texts for a mirror.
	MirrorSimilarity float64 `yaml:"mirror_similarity"`

	EmojiOverrideCount int `yaml:"emoji_override_count"`

	// HedgeMaxPolarityShift, when > 0, drops a hedge whose polarity moved by at
	// least this much. 0 disables the bound.
	HedgeMaxPolarityShift float64 `yaml:"hedge_max_polarity_shift"`
	NegationMode          string  `yaml:"negation_mode"`

	RareTags         []string `yaml:"rare_tags"`
	NegationWords    []string `yaml:"negation_words"`
	HedgePhrases     []string `yaml:"hedge_phrases"`
	SarcasmMarkers   []string `yaml:"sarcasm_markers"`
	AcronymWhitelist []string `yaml:"acronym_whitelist"`
	EmphaticWords    []string `yaml:"emphatic_words"`

	MemorySize         int     `yaml:"memory_size"`
	AgitationThreshold float64 `yaml:"agitation_threshold"`
	AgitationWindow    int     `yaml:"agitation_window"`

	Weights      EmphasisWeights `yaml:"emphasis_weights"`
	BatchWeights EmphasisWeights `yaml:"batch_emphasis_weights"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		DriftThreshold:        0.5,
		EmphasisOverride:      1.0,
		EchoMargin:            0.6,
		MirrorSimilarity:      0.65,
		EmojiOverrideCount:    2,
		HedgeMaxPolarityShift: 0,
		NegationMode:          NegationSharedRoot,
		RareTags:              []string{"lament", "awe", "reverence", "resignation"},
		NegationWords: []string{
			"not", "no", "never", "nothing", "don't", "doesn't", "didn't", "isn't",
			"wasn't", "aren't", "can't", "cannot", "won't", "wouldn't", "nobody", "none",
		},
		HedgePhrases:     []string{"maybe", "perhaps", "i guess", "i think", "kind of", "sort of"},
		SarcasmMarkers:   []string{"/s", "🙃", "sure."},
		AcronymWhitelist: []string{"AI", "LLM", "GPT", "NASA", "CPU", "GPU", "URL", "PDF", "API", "SQL"},
		EmphaticWords: []string{
			"gross", "disgusting", "insane", "horrible", "god", "wtf", "what", "wow",
			"damn", "jesus", "holy",
		},
		MemorySize:         DefaultMemorySize,
		AgitationThreshold: -0.5,
		AgitationWindow:    3,
		Weights:            InteractiveWeights(),
		BatchWeights:       BatchWeights(),
	}
}

// Validate reports the first contract violation in c.
func (c Config) Validate() error {
	switch {
	case !positive(c.DriftThreshold):
		return fmt.Errorf("%w: polarity_threshold must be > 0", ErrInvalidConfig)
	case !positive(c.EmphasisOverride):
		return fmt.Errorf("%w: emphasis_override must be > 0", ErrInvalidConfig)
	case !finite(c.EchoMargin) || c.EchoMargin < 0:
		return fmt.Errorf("%w: echo_margin must be >= 0", ErrInvalidConfig)
	case !positive(c.MirrorSimilarity) || c.MirrorSimilarity > 1:
		return fmt.Errorf("%w: mirror_similarity must be in (0,1]", ErrInvalidConfig)
	case c.EmojiOverrideCount < 1:
		return fmt.Errorf("%w: emoji_override_count must be >= 1", ErrInvalidConfig)
	case !finite(c.HedgeMaxPolarityShift) || c.HedgeMaxPolarityShift < 0:
		return fmt.Errorf("%w: hedge_max_polarity_shift must be >= 0", ErrInvalidConfig)
	case !validNegationMode(c.NegationMode):
		return fmt.Errorf("%w: negation_mode %q", ErrInvalidConfig, c.NegationMode)
	case c.MemorySize < 1:
		return fmt.Errorf("%w: memory_size must be >= 1", ErrInvalidConfig)
	case !finite(c.AgitationThreshold):
		return fmt.Errorf("%w: agitation_threshold must be finite", ErrInvalidConfig)
	case c.AgitationWindow < 1:
		return fmt.Errorf("%w: agitation_window must be >= 1", ErrInvalidConfig)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("emphasis_weights: %w", err)
	}
	if err := c.BatchWeights.Validate(); err != nil {
		return fmt.Errorf("batch_emphasis_weights: %w", err)
	}
	return nil
}

func positive(f float64) bool { return finite(f) && f > 0 }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func validNegationMode(m string) bool {
	switch m {
	case NegationSharedRoot, NegationPolarity, NegationEither:
		return true
	}
	return false
}

// LoadConfig builds a Config from defaults, the YAML (or JSON) file at path, a .env
// file in the working directory and the process environment, in that order.
// It never fails: unreadable files and bad keys are logged and replaced by defaults.
func LoadConfig(path string, logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := DefaultConfig()

	if path != "" {
		cfg = overlayFile(cfg, path, logger)
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}
	cfg = applyEnv(cfg, nil, logger)

	return sanitize(cfg, logger)
}

func overlayFile(cfg Config, path string, logger *slog.Logger) Config {
	if !fileutils.FileExists(path) {
		logger.Info("no drift config file, using defaults", "path", path)
		return cfg
	}
	b, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read drift config, using defaults", "path", path, "err", err)
		return cfg
	}
	next := cfg
	if err := yaml.Unmarshal(b, &next); err != nil {
		logger.Warn("parse drift config, using defaults", "path", path, "err", err)
		return cfg
	}
	return next
}

// envOverrides lists the keys that may be set from the environment.
type envOverrides struct {
	DriftThreshold     float64  `env:"POLARITY_THRESHOLD"`
	EmphasisOverride   float64  `env:"EMPHASIS_OVERRIDE"`
	EchoMargin         float64  `env:"ECHO_MARGIN"`
	MirrorSimilarity   float64  `env:"MIRROR_SIMILARITY"`
	EmojiOverrideCount int      `env:"EMOJI_OVERRIDE_COUNT"`
	NegationMode       string   `env:"NEGATION_MODE"`
	RareTags           []string `env:"RARE_TAGS"`
	HedgePhrases       []string `env:"HEDGE_PHRASES"`
	SarcasmMarkers     []string `env:"SARCASM_MARKERS"`
	NegationWords      []string `env:"NEGATION_WORDS"`
	MemorySize         int      `env:"DRIFT_MEMORY_SIZE"`
}

// applyEnv overlays environment values onto cfg. A nil source reads the process
// environment.
func applyEnv(cfg Config, source env.Source, logger *slog.Logger) Config {
	o := envOverrides{
		DriftThreshold:     cfg.DriftThreshold,
		EmphasisOverride:   cfg.EmphasisOverride,
		EchoMargin:         cfg.EchoMargin,
		MirrorSimilarity:   cfg.MirrorSimilarity,
		EmojiOverrideCount: cfg.EmojiOverrideCount,
		NegationMode:       cfg.NegationMode,
		RareTags:           cfg.RareTags,
		HedgePhrases:       cfg.HedgePhrases,
		SarcasmMarkers:     cfg.SarcasmMarkers,
		NegationWords:      cfg.NegationWords,
		MemorySize:         cfg.MemorySize,
	}
	opts := &env.Options{SliceSep: ","}
	if source != nil {
		opts.Source = source
	}
	if err := env.Load(&o, opts); err != nil {
		logger.Warn("ignoring drift environment overrides", "err", err)
		return cfg
	}

	cfg.DriftThreshold = o.DriftThreshold
	cfg.EmphasisOverride = o.EmphasisOverride
	cfg.EchoMargin = o.EchoMargin
	cfg.MirrorSimilarity = o.MirrorSimilarity
	cfg.EmojiOverrideCount = o.EmojiOverrideCount
	cfg.NegationMode = strings.ToLower(strings.TrimSpace(o.NegationMode))
	cfg.RareTags = trimList(o.RareTags)
	cfg.HedgePhrases = trimList(o.HedgePhrases)
	cfg.SarcasmMarkers = trimList(o.SarcasmMarkers)
	cfg.NegationWords = trimList(o.NegationWords)
	cfg.MemorySize = o.MemorySize
	return cfg
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sanitize resets each out-of-range key to its default.
func sanitize(cfg Config, logger *slog.Logger) Config {
	def := DefaultConfig()
	reset := func(key string, got any) {
		logger.Warn("drift config value out of range, using default", "key", key, "value", got)
	}

	if !positive(cfg.DriftThreshold) {
		reset("polarity_threshold", cfg.DriftThreshold)
		cfg.DriftThreshold = def.DriftThreshold
	}
	if !positive(cfg.EmphasisOverride) {
		reset("emphasis_override", cfg.EmphasisOverride)
		cfg.EmphasisOverride = def.EmphasisOverride
	}
	if !finite(cfg.EchoMargin) || cfg.EchoMargin < 0 {
		reset("echo_margin", cfg.EchoMargin)
		cfg.EchoMargin = def.EchoMargin
	}
	if !positive(cfg.MirrorSimilarity) || cfg.MirrorSimilarity > 1 {
		reset("mirror_similarity", cfg.MirrorSimilarity)
		cfg.MirrorSimilarity = def.MirrorSimilarity
	}
	if cfg.EmojiOverrideCount < 1 {
		reset("emoji_override_count", cfg.EmojiOverrideCount)
		cfg.EmojiOverrideCount = def.EmojiOverrideCount
	}
	if !finite(cfg.HedgeMaxPolarityShift) || cfg.HedgeMaxPolarityShift < 0 {
		reset("hedge_max_polarity_shift", cfg.HedgeMaxPolarityShift)
		cfg.HedgeMaxPolarityShift = def.HedgeMaxPolarityShift
	}
	if !validNegationMode(cfg.NegationMode) {
		reset("negation_mode", cfg.NegationMode)
		cfg.NegationMode = def.NegationMode
	}
	if cfg.MemorySize < 1 {
		reset("memory_size", cfg.MemorySize)
		cfg.MemorySize = def.MemorySize
	}
	if !finite(cfg.AgitationThreshold) {
		reset("agitation_threshold", cfg.AgitationThreshold)
		cfg.AgitationThreshold = def.AgitationThreshold
	}
	if cfg.AgitationWindow < 1 {
		reset("agitation_window", cfg.AgitationWindow)
		cfg.AgitationWindow = def.AgitationWindow
	}
	if err := cfg.Weights.Validate(); err != nil {
		reset("emphasis_weights", err.Error())
		cfg.Weights = def.Weights
	}
	if err := cfg.BatchWeights.Validate(); err != nil {
		reset("batch_emphasis_weights", err.Error())
		cfg.BatchWeights = def.BatchWeights
	}
	return cfg
}
