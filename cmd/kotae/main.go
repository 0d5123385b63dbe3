// Package main is the kotae CLI entry point.
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
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/apperr"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kotae/config.yaml"
	defaultQuery      = "Who and why the Eiffel Tower was built"
)

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if it exists, and a missing default file means built-in
// defaults. Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[2:]
	var err error
	switch command := os.Args[1]; command {
	case "ask":
		err = runAsk(ctx, args, os.Stdout)
	case "retrieve":
		err = runRetrieve(ctx, args, os.Stdout)
	case "documents":
		err = runDocuments(ctx, args, os.Stdout)
	case "server":
		err = runServer(ctx, args)
	case "config":
		err = runConfig(args, os.Stdout)
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage(os.Stdout)
		os.Exit(1)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode gives credential and quota problems their own codes so scripts can tell them apart.
func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindMissingCredential:
		return 3
	case apperr.KindGenerationQuota:
		return 4
	default:
		return 1
	}
}

// argsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildQuery joins positional args so multi-word queries work with or without quotes.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// setup loads config and creates the logger. Commands that print results keep
// the logger at warn unless debug or log_level asks for more.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger, error) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	var logger *zap.Logger
	switch {
	case cfg.Debug || debug:
		logger, err = utils.NewLogger(true)
	case cfg.LogLevel != "":
		logger, err = utils.NewLoggerWithLevel(cfg.LogLevel)
	default:
		logger, err = utils.NewLoggerWithLevel("warn")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved))
	return cfg, logger, nil
}

func newFlagSet(name string, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { usage(fs.Output()); fs.PrintDefaults() }
	return fs
}

func runAsk(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("ask", func(w io.Writer) {
		fmt.Fprintf(w, "Usage: kotae ask [flags] [query]\n\nWith no query, asks %q.\n\n", defaultQuery)
	})
	configPath := fs.String("config", defaultConfigPath, "config file path")
	pure := fs.Bool("pure", false, "ask the model without retrieved context")
	k := fs.Int("k", 0, "number of documents to retrieve (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(argsReorder(args)); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	query := buildQuery(fs.Args())
	if query == "" {
		query = defaultQuery
	}

	cfg, logger, err := setup(*configPath, *debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var components *Components
	if *pure {
		components, err = initializeGenerationOnly(ctx, cfg, logger)
	} else {
		components, err = initializeComponents(ctx, cfg, logger, true)
	}
	if err != nil {
		return err
	}
	defer components.Close()

	var ans *models.Answer
	if *pure {
		ans, err = components.Pipeline.AnswerPure(ctx, query)
	} else {
		ans, err = components.Pipeline.AnswerRAG(ctx, query, *k)
	}
	if err != nil {
		return err
	}
	return cli.WriteAnswer(out, ans, format)
}

func runRetrieve(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("retrieve", func(w io.Writer) {
		fmt.Fprintf(w, "Usage: kotae retrieve [flags] <query>\n\n")
	})
	configPath := fs.String("config", defaultConfigPath, "config file path")
	k := fs.Int("k", 0, "number of documents to return (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(argsReorder(args)); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	query := buildQuery(fs.Args())
	if query == "" {
		fs.Usage()
		return errors.New("query is required")
	}

	cfg, logger, err := setup(*configPath, *debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer components.Close()

	start := time.Now()
	hits, err := components.Pipeline.Retrieve(ctx, query, *k)
	if err != nil {
		return err
	}
	return cli.WriteHits(out, &models.RetrieveResponse{
		Query:     query,
		Hits:      hits,
		ElapsedMs: time.Since(start).Milliseconds(),
	}, format)
}

func runDocuments(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("documents", func(w io.Writer) {
		fmt.Fprintf(w, "Usage: kotae documents [flags]\n\n")
	})
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	cfg, logger, err := setup(*configPath, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	components, err := initializeComponents(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer components.Close()
	return cli.WriteDocuments(out, components.Corpus.Documents(), format)
}

func runServer(ctx context.Context, args []string) error {
	fs := newFlagSet("server", func(w io.Writer) {
		fmt.Fprintf(w, "Usage: kotae server [flags]\n\n")
	})
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *debug
	var logger *zap.Logger
	if debugMode || cfg.LogLevel == "" {
		logger, err = utils.NewLogger(debugMode)
	} else {
		logger, err = utils.NewLoggerWithLevel(cfg.LogLevel)
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer components.Close()

	srv := server.NewServer(components.Pipeline, components.Corpus.Documents(), components.Info(), &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func runConfig(args []string, out io.Writer) error {
	if len(args) < 1 || args[0] != "init" {
		return errors.New("usage: kotae config init [--force] <path>")
	}
	fs := newFlagSet("config init", func(w io.Writer) {
		fmt.Fprintf(w, "Usage: kotae config init [--force] <path>\n\n")
	})
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(argsReorder(args[1:])); err != nil {
		return err
	}
	path := defaultConfigPath
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote default config to %s\n", path)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `kotae - question answering with and without retrieved context

Usage:
  kotae ask [flags] [query]        Answer a question (retrieval-augmented by default)
  kotae retrieve [flags] <query>   Show the nearest documents without generating
  kotae documents [flags]          List the loaded documents
  kotae server [flags]             Start the HTTP server
  kotae config init [path]         Write a default config file
  kotae version                    Show version
  kotae help                       Show this help

Ask Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --pure             Ask without retrieved context
  --k int            Documents to retrieve (default: retrieval.top_k, 1)
  --output string    Output format: text or json (default: text)
  --debug            Enable debug logging

Retrieve Flags:
  --config string    Config file path
  --k int            Documents to return
  --output string    Output format: text or json

Server Flags:
  --config string    Config file path
  --debug            Enable debug logging

Environment:
  OPENAI_API_KEY     Key for the openai provider (also read from .env)
  GEMINI_API_KEY     Key for the gemini provider

Examples:
  kotae ask "Where is the Eiffel Tower?"
  kotae ask --pure "Who and why the Eiffel Tower was built"
  kotae ask "When did the Moon landing happen?" --k 2 --output json
  kotae retrieve "boiling point of water"
  kotae config init ./config.yaml`)
}
