package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/theimaginaryfoundation/tonal-drift/drift"
	"github.com/theimaginaryfoundation/tonal-drift/drift/fileutils"
	"github.com/theimaginaryfoundation/tonal-drift/drift/logging"
	"github.com/theimaginaryfoundation/tonal-drift/drift/provider"
)

const progressEvery = 100

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	driftCfg := drift.LoadConfig(cfg.ConfigPath, logger)

	polarity, err := polarityProvider(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	rows, err := readRows(cfg.InputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case modeField:
		analyzer, err := drift.NewFieldAnalyzer(driftCfg, polarity)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		results, err := runField(ctx, analyzer, rows, cfg, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "field analysis failed: %s\n", err.Error())
			os.Exit(1)
		}
		if err := writeOutputs(cfg, results, fieldHeader, fieldTable(results), os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	case modePairs:
		engine, err := drift.NewEngine(driftCfg, drift.EngineOptions{Polarity: polarity, Logger: logger})
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		p := pairRunner{
			engine:  engine,
			memory:  drift.NewMemory(driftCfg.MemorySize),
			journal: drift.NewJournal(cfg.JournalPath, nil),
			heatmap: drift.NewLexiconHeatmap(drift.DefaultChargedWords, driftCfg.AcronymWhitelist),
		}
		results, err := p.run(ctx, rows, cfg, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pair classification failed: %s\n", err.Error())
			os.Exit(1)
		}
		if err := writeOutputs(cfg, results, pairHeader, pairTable(results), os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Input .csv (with header), .jsonl or .json array file")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "field: classify single texts; pairs: classify baseline/incoming rows")
	fs.StringVar(&cfg.TextColumn, "text-col", cfg.TextColumn, "Text column for -mode field")
	fs.StringVar(&cfg.BaselineColumn, "baseline-col", cfg.BaselineColumn, "Baseline column for -mode pairs")
	fs.StringVar(&cfg.IncomingColumn, "incoming-col", cfg.IncomingColumn, "Incoming column for -mode pairs")
	fs.BoolVar(&cfg.NeutralOnly, "neutral-only", false, "Only analyze rows whose neutral column is 1")
	fs.StringVar(&cfg.OutJSONL, "out-jsonl", "", "Write results as JSONL")
	fs.StringVar(&cfg.OutJSON, "out-json", "", "Write results as a JSON array")
	fs.StringVar(&cfg.OutCSV, "out-csv", "", "Write results as CSV")
	fs.StringVar(&cfg.OutMarkdown, "out-md", "", "Write a Markdown preview table of the first rows")
	fs.IntVar(&cfg.PreviewRows, "preview-rows", cfg.PreviewRows, "Rows in the Markdown preview")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print -out-json")
	fs.StringVar(&cfg.JournalPath, "journal", "", "Append pair classifications to this JSONL journal")
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to the YAML drift config (missing file uses defaults)")
	fs.StringVar(&cfg.Polarity, "polarity", cfg.Polarity, "Polarity provider: lexicon or openai")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for -polarity openai")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/drift-batch -in tweets.csv -neutral-only -out-csv field.csv -out-md field.md")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/drift-batch -mode pairs -in pairs.jsonl -out-jsonl drift.jsonl")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	cfg.Polarity = strings.ToLower(strings.TrimSpace(cfg.Polarity))
	if cfg.InputPath != "" {
		cfg.InputPath = filepath.Clean(cfg.InputPath)
	}
	return cfg, nil
}

func polarityProvider(cfg Config) (drift.PolarityProvider, error) {
	if cfg.Polarity != polarityOpenAI {
		return nil, nil
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY (or pass -api-key)")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return provider.NewOpenAIPolarity(&client, cfg.Model), nil
}

var fieldHeader = []string{"text", "polarity", "emphasis_score", "drift_code", "drift_level", "spanda_tag", "color_hex"}

func runField(ctx context.Context, analyzer *drift.FieldAnalyzer, rows []row, cfg Config, progress io.Writer) ([]drift.FieldAnalysis, error) {
	if len(rows) > 0 && !hasColumn(rows, cfg.TextColumn) {
		return nil, fmt.Errorf("input has no %q column", cfg.TextColumn)
	}
	if cfg.NeutralOnly && len(rows) > 0 && !hasColumn(rows, "neutral") {
		return nil, errors.New(`-neutral-only: input has no "neutral" column`)
	}

	start := time.Now()
	results := make([]drift.FieldAnalysis, 0, len(rows))
	for i, r := range rows {
		if cfg.NeutralOnly && !truthy(r["neutral"]) {
			continue
		}
		a, err := analyzer.Analyze(ctx, r[cfg.TextColumn])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		results = append(results, a)
		if len(results)%progressEvery == 0 {
			fmt.Fprintf(progress, "progress drift-batch: %d/%d rows analyzed (elapsed=%s)\n",
				i+1, len(rows), time.Since(start).Round(time.Second))
		}
	}
	return results, nil
}

func fieldTable(results []drift.FieldAnalysis) [][]string {
	table := make([][]string, 0, len(results))
	for _, a := range results {
		table = append(table, []string{
			a.Text,
			formatFloat(a.Polarity),
			formatFloat(a.EmphasisScore),
			strconv.Itoa(int(a.Code)),
			a.DriftLevel,
			a.Tag,
			a.ColorHex,
		})
	}
	return table
}

// PairResult is one classified row of -mode pairs.
type PairResult struct {
	Row      int    `json:"row"`
	Baseline string `json:"baseline"`
	Incoming string `json:"incoming"`
	drift.Result
}

var pairHeader = []string{"row", "baseline", "incoming", "label", "drift", "drift_score", "field_responsiveness", "rationale"}

// pairRunner classifies rows in order against one shared session memory, so
// earlier rows inform agitation on later ones.
type pairRunner struct {
	engine  *drift.Engine
	memory  *drift.Memory
	journal *drift.Journal
	heatmap drift.HeatmapProvider
}

func (p pairRunner) run(ctx context.Context, rows []row, cfg Config, progress io.Writer) ([]PairResult, error) {
	if len(rows) > 0 && (!hasColumn(rows, cfg.BaselineColumn) || !hasColumn(rows, cfg.IncomingColumn)) {
		return nil, fmt.Errorf("input needs %q and %q columns", cfg.BaselineColumn, cfg.IncomingColumn)
	}

	start := time.Now()
	results := make([]PairResult, 0, len(rows))
	for i, r := range rows {
		baseline, incoming := r[cfg.BaselineColumn], r[cfg.IncomingColumn]
		res, err := p.engine.Classify(ctx, baseline, incoming, p.memory)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := p.journal.Record(baseline, incoming, res, p.heatmap.Heatmap(incoming)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		results = append(results, PairResult{Row: i + 1, Baseline: baseline, Incoming: incoming, Result: res})
		if (i+1)%progressEvery == 0 {
			fmt.Fprintf(progress, "progress drift-batch: %d/%d pairs classified (elapsed=%s)\n",
				i+1, len(rows), time.Since(start).Round(time.Second))
		}
	}
	return results, nil
}

func pairTable(results []PairResult) [][]string {
	table := make([][]string, 0, len(results))
	for _, r := range results {
		table = append(table, []string{
			strconv.Itoa(r.Row),
			r.Baseline,
			r.Incoming,
			string(r.Label),
			strconv.FormatBool(r.Drift),
			formatFloat(r.DriftScore),
			string(r.FieldResponsiveness),
			r.Rationale,
		})
	}
	return table
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// writeOutputs writes every requested format. With none requested, JSONL goes to stdout.
func writeOutputs[T any](cfg Config, results []T, header []string, table [][]string, stdout io.Writer) error {
	wrote := false
	if cfg.OutJSONL != "" {
		if err := fileutils.WriteJSONLinesAtomic(cfg.OutJSONL, results); err != nil {
			return fmt.Errorf("write -out-jsonl: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s (%d rows)\n", cfg.OutJSONL, len(results))
		wrote = true
	}
	if cfg.OutJSON != "" {
		if err := fileutils.WriteJSONFileAtomic(cfg.OutJSON, results, cfg.Pretty); err != nil {
			return fmt.Errorf("write -out-json: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s (%d rows)\n", cfg.OutJSON, len(results))
		wrote = true
	}
	if cfg.OutCSV != "" {
		if err := writeCSVFile(cfg.OutCSV, header, table); err != nil {
			return fmt.Errorf("write -out-csv: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s (%d rows)\n", cfg.OutCSV, len(results))
		wrote = true
	}
	if cfg.OutMarkdown != "" {
		md := markdownPreview(header, table, cfg.PreviewRows)
		if err := fileutils.WriteFileAtomicSameDir(cfg.OutMarkdown, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write -out-md: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s (%d preview rows)\n", cfg.OutMarkdown, min(cfg.PreviewRows, len(table)))
		wrote = true
	}
	if wrote {
		return nil
	}

	enc := newLineEncoder(stdout)
	for i, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write result %d: %w", i+1, err)
		}
	}
	return nil
}
