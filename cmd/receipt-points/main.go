package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-points/internal/points"
	"github.com/zombor/receipt-points/internal/scanning"
	"github.com/zombor/receipt-points/internal/session"
	"github.com/zombor/receipt-points/internal/shell"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	os.Exit(run())
}

// run returns the exit code once deferred cleanup has run
func run() int {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			return 0
		}
	}

	// A .env file is optional; real environment variables take precedence
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	fs := ff.NewFlagSet("receipt-points")
	var (
		serverURL   = fs.StringLong("server", "http://localhost:8080", "Receipt scoring service base URL")
		timeout     = fs.DurationLong("timeout", 30*time.Second, "Request timeout for the scoring service")
		scannerType = fs.StringLong("scanner", "none", "Receipt scanner for the scan command: 'none', 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		logLevel    = fs.StringLong("log-level", "warn", "Log level: debug, info, warn or error")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_POINTS"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if *showVersion {
		fmt.Println(version)
		return 0
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	opts := []session.Option{session.WithLogger(logger)}

	// Initialize scanner based on type
	var scanner scanning.Scanner
	var err error
	switch *scannerType {
	case "none", "":
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			return 1
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			return 1
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			return 1
		}
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "none, gemini or ollama")
		return 1
	}
	if scanner != nil {
		defer scanner.Close()
		opts = append(opts, session.WithScanner(scanner))
	}

	client := points.NewClient(*serverURL, points.WithTimeout(*timeout))
	sess := session.New(client, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Session started", "server", *serverURL, "version", version)
	fmt.Printf("receipt-points %s, scoring service at %s. Type help for commands.\n", version, *serverURL)

	if err := shell.New(sess, os.Stdout).Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		slog.Error("Shell error", "error", err)
		return 1
	}
	slog.Info("Session ended")
	return 0
}
