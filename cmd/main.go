package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/amankumarsingh77/region_tfidf/config"
	"github.com/amankumarsingh77/region_tfidf/internal/corpus"
	"github.com/amankumarsingh77/region_tfidf/internal/logging"
	"github.com/amankumarsingh77/region_tfidf/internal/store"
	"github.com/amankumarsingh77/region_tfidf/internal/tfidf"
	"github.com/amankumarsingh77/region_tfidf/internal/tokenizer"
)

const usage = "Usage: region-tfidf [flags] <gtok_folder> <universe> <output_folder>"

var errUsage = errors.New("missing arguments")

type options struct {
	mode     string
	logLevel string
	cfg      *config.Config
	args     []string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Warn("received shutdown signal, stopping after in-flight documents")
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			slog.Error("run failed", "error", err)
		}
		os.Exit(1)
	}
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("region-tfidf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		configFile = fs.String("config", "tfidf.yaml", "Path to configuration file")
		mode       = fs.String("mode", "tfidf", "Mode: tfidf or score (reuse an existing idf.json)")
		smooth     = fs.Bool("smooth", true, "Use smoothed IDF ln((N+1)/(DF+1))+1 instead of ln(N/DF)")
		workers    = fs.Int("workers", 1, "Number of documents processed concurrently")
		ongoing    = fs.Bool("ongoing", false, "Skip documents whose result file already exists")
		recursive  = fs.Bool("recursive", false, "Scan the token folder recursively")
		logLevel   = fs.String("loglevel", "info", "Log level: debug, info, warn or error")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return nil, errUsage
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Info("using default configuration", "config", *configFile, "error", err)
		cfg = config.GetDefaultConfig()
	}

	// Flags given on the command line win over the config file.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "smooth":
			cfg.TFIDF.Smoothing = *smooth
		case "workers":
			if *workers < 1 {
				flagErr = fmt.Errorf("number of workers must be a natural number")
			}
			cfg.TFIDF.Workers = *workers
		case "ongoing":
			cfg.TFIDF.Ongoing = *ongoing
		case "recursive":
			cfg.TFIDF.Recursive = *recursive
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	return &options{
		mode:     *mode,
		logLevel: *logLevel,
		cfg:      cfg,
		args:     fs.Args(),
	}, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	mode, err := tfidf.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	cfg := opts.cfg
	corpusDir, universe, outDir := opts.args[0], opts.args[1], opts.args[2]

	logger := logging.NewLogger(stderr, logging.ParseLevel(opts.logLevel))
	slog.SetDefault(logger)
	ctx = logging.WithRunID(ctx, uuid.NewString())
	runLogger := logging.WithContext(logger, ctx)

	tok, err := tokenizer.Load(ctx, universe, &cfg.Tokenizer)
	if err != nil {
		return fmt.Errorf("failed to load tokenizer %s: %w", universe, err)
	}
	specials := tokenizer.ResolveSpecialTokens(tok, tok.SpecialTokensMap())
	runLogger.Info("tokenizer loaded", "universe", universe, "vocab_size", tok.VocabSize(), "special_ids", specials.IDs())

	sinks, err := store.NewSinks(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect result sinks: %w", err)
	}
	defer func() {
		if err := store.CloseAll(sinks); err != nil {
			runLogger.Warn("failed to close sinks", "error", err)
		}
	}()

	pipeline := tfidf.NewPipeline(specials, tfidf.Options{
		Mode:          mode,
		Policy:        tfidf.PolicyFor(cfg.TFIDF.Smoothing),
		Workers:       cfg.TFIDF.Workers,
		Ongoing:       cfg.TFIDF.Ongoing,
		ProgressEvery: cfg.TFIDF.ProgressEvery,
		Scan: corpus.ScanOptions{
			Extension: cfg.TFIDF.Extension,
			Recursive: cfg.TFIDF.Recursive,
		},
	}, logger, sinks...)

	summary, err := pipeline.Run(ctx, corpusDir, outDir)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		runLogger.Warn("some documents failed", "failed", summary.Failed)
	}
	return nil
}
