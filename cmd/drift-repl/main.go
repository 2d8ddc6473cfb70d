package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/theimaginaryfoundation/tonal-drift/drift"
	"github.com/theimaginaryfoundation/tonal-drift/drift/logging"
	"github.com/theimaginaryfoundation/tonal-drift/drift/provider"
)

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
	if cfg.Threshold > 0 {
		driftCfg.DriftThreshold = cfg.Threshold
	}
	if cfg.MemorySize > 0 {
		driftCfg.MemorySize = cfg.MemorySize
	}

	polarity, err := polarityProvider(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	engine, err := drift.NewEngine(driftCfg, drift.EngineOptions{Polarity: polarity, Logger: logger})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{
		engine:  engine,
		memory:  drift.NewMemory(driftCfg.MemorySize),
		journal: drift.NewJournal(cfg.JournalPath, nil),
		heatmap: drift.NewLexiconHeatmap(drift.DefaultChargedWords, driftCfg.AcronymWhitelist),
		render:  renderer{color: !cfg.NoColor},
		logger:  logger,
	}

	fmt.Fprintln(os.Stdout, "Tonal drift REPL. Ctrl-D or Ctrl-C to exit.")
	records, err := s.run(ctx, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session failed: %s\n", err.Error())
		os.Exit(1)
	}

	if cfg.ExportPath != "" {
		if err := drift.ExportSession(cfg.ExportPath, records); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "\nsession exported: records=%d path=%s\n", len(records), cfg.ExportPath)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Path to the YAML drift config (missing file uses defaults)")
	fs.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "Emphasis delta threshold (0 keeps the configured value)")
	fs.IntVar(&cfg.MemorySize, "memory-size", cfg.MemorySize, "Session memory capacity (0 keeps the configured value)")
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "Append every classification to this JSONL journal")
	fs.StringVar(&cfg.ExportPath, "export", cfg.ExportPath, "Write the session's records to this JSONL file on exit")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Plain output; heatmaps are printed as JSON")
	fs.StringVar(&cfg.Polarity, "polarity", cfg.Polarity, "Polarity provider: lexicon or openai")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model for -polarity openai")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExample:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/drift-repl -journal drift_journal.jsonl -export session.jsonl")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Polarity = strings.ToLower(strings.TrimSpace(cfg.Polarity))
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

type session struct {
	engine  *drift.Engine
	memory  *drift.Memory
	journal *drift.Journal
	heatmap drift.HeatmapProvider
	render  renderer
	logger  *slog.Logger
}

// readLines streams lines from in until it is exhausted or ctx is done. The
// channel is closed when the reader stops.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// run prompts for baseline/incoming pairs until in is exhausted or ctx is done.
// Interruption is a normal exit; the records gathered so far are returned.
func (s *session) run(ctx context.Context, in io.Reader, out io.Writer) ([]drift.JournalRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, in)

	next := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		select {
		case <-ctx.Done():
			return "", false
		case line, ok := <-lines:
			return line, ok
		}
	}

	var records []drift.JournalRecord
	for {
		baseline, ok := next("\nBaseline: ")
		if !ok {
			break
		}
		incoming, ok := next("Incoming: ")
		if !ok {
			break
		}

		res, err := s.engine.Classify(ctx, baseline, incoming, s.memory)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(out, "error: %s\n", err.Error())
			continue
		}
		fmt.Fprintln(out, s.render.label(res))

		tokens := s.heatmap.Heatmap(incoming)
		heat, err := s.render.heatmap(tokens)
		if err != nil {
			return records, err
		}
		fmt.Fprintln(out, heat)

		rec, err := s.journal.Record(baseline, incoming, res, tokens)
		if err != nil {
			s.logger.Warn("journal write failed", "path", s.journal.Path(), "err", err)
		}
		records = append(records, rec)
	}
	fmt.Fprintln(out)
	return records, nil
}
