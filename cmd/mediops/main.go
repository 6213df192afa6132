package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"mediops/internal/adapter/llm"
	"mediops/internal/adapter/tool"
	"mediops/internal/domain"
	"mediops/internal/infra/config"
	"mediops/internal/infra/logger"
	"mediops/internal/infra/tracer"
	"mediops/internal/security"
	"mediops/internal/usecase"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`mediops - hospital operations assistant

USAGE:
    mediops [FLAGS]

Reads requests from stdin, one per line. Each request is triaged to a
specialist agent (admission, scheduling, pharmacy, billing) which answers
it, optionally producing a structured document.

FLAGS:
    -h, --help       Show this help message
    --config PATH    Config file path (default: ./config.yaml)
    --model NAME     Backend model (e.g. gemini-2.5-flash)
    --key KEY        API key for the backend

CONFIGURATION:
    Config file: ./config.yaml
    Environment: MEDIOPS_* variables override config

EXAMPLES:
    mediops                                  # Run with config.yaml
    mediops --config /path/to/config.yaml
    mediops --model gemini-2.5-flash --key AIza...`)
}

type cliFlags struct {
	ConfigPath string
	Model      string
	APIKey     string
}

func parseFlags() cliFlags {
	var flags cliFlags
	for i := 1; i < len(os.Args); i++ {
		switch {
		case os.Args[i] == "--config" && i+1 < len(os.Args):
			flags.ConfigPath = os.Args[i+1]
			i++
		case strings.HasPrefix(os.Args[i], "--config="):
			flags.ConfigPath = strings.TrimPrefix(os.Args[i], "--config=")
		case os.Args[i] == "--model" && i+1 < len(os.Args):
			flags.Model = os.Args[i+1]
			i++
		case strings.HasPrefix(os.Args[i], "--model="):
			flags.Model = strings.TrimPrefix(os.Args[i], "--model=")
		case os.Args[i] == "--key" && i+1 < len(os.Args):
			flags.APIKey = os.Args[i+1]
			i++
		case strings.HasPrefix(os.Args[i], "--key="):
			flags.APIKey = strings.TrimPrefix(os.Args[i], "--key=")
		}
	}
	return flags
}

func loadConfig(flags cliFlags) (*config.Config, error) {
	path := flags.ConfigPath
	if path == "" {
		path = "config.yaml"
	}

	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) && flags.ConfigPath == "" {
		// No config file: flags and env are enough for a quick start.
		cfg = config.Defaults()
		config.ApplyEnvOverrides(cfg)
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Model != "" {
		cfg.Provider.Model = flags.Model
	}
	if flags.APIKey != "" {
		cfg.Provider.APIKey = flags.APIKey
	}
	if cfg.Provider.APIKey == "" {
		return nil, fmt.Errorf("no API key: set provider.api_key, MEDIOPS_API_KEY, or --key")
	}
	return cfg, config.Validate(cfg)
}

func run() error {
	// 1. Config
	cfg, err := loadConfig(parseFlags())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	// 3. Audit sink
	sink, err := buildAuditSink(cfg.Audit)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if sink != nil {
		defer sink.Close()
	}

	// 4. Backend provider chain
	provider, err := buildProvider(cfg, log)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	// 5. Tools
	tools := tool.NewRegistry()
	if err := tools.Register(tool.DocumentTool()); err != nil {
		return fmt.Errorf("tools: %w", err)
	}

	// 6. Turn pipeline
	counter := buildCounter(cfg.History, log)
	controller := usecase.NewController(usecase.ControllerDeps{
		Classifier:       usecase.NewClassifier(provider, cfg.Router, cfg.Provider.Model, log),
		Executor:         usecase.NewExecutor(provider, tools, cfg.Executor, cfg.Provider.Model, log),
		Counter:          counter,
		Sink:             sink,
		Logger:           log,
		MaxHistoryTokens: cfg.History.MaxTokens,
	})

	// 7. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("session started", "session_id", controller.SessionID(), "model", cfg.Provider.Model)
	return repl(ctx, controller, log)
}

// buildProvider assembles the backend call chain: the wire adapter wrapped
// by the circuit breaker, wrapped by the rate limiter.
func buildProvider(cfg *config.Config, log *slog.Logger) (domain.LLMProvider, error) {
	if cfg.Provider.Name != "gemini" {
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider.Name)
	}

	registry := llm.NewRegistry()
	if err := registry.Register(llm.NewGeminiProvider(cfg.Provider, log)); err != nil {
		return nil, err
	}
	inner, err := registry.Get(cfg.Provider.Name)
	if err != nil {
		return nil, err
	}

	breaker := llm.NewCircuitBreakerProvider(inner, cfg.Resilience, log)
	return llm.NewRateLimitedProvider(breaker, cfg.Resilience), nil
}

func buildAuditSink(cfg config.AuditConfig) (domain.AuditSink, error) {
	switch cfg.Sink {
	case "", "none":
		return nil, nil
	case "file":
		return security.NewFileAuditSink(cfg.Path)
	case "sqlite":
		return security.NewSQLiteAuditSink(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Sink)
	}
}

// buildCounter prefers exact token counting; if the encoding cannot be
// loaded the transcript budget degrades to the heuristic.
func buildCounter(cfg config.HistoryConfig, log *slog.Logger) usecase.TokenCounter {
	if cfg.MaxTokens <= 0 {
		return nil
	}
	counter, err := usecase.NewTiktokenCounter(cfg.Encoding)
	if err != nil {
		log.Warn("token encoding unavailable, using heuristic", "encoding", cfg.Encoding, "error", err)
		return usecase.HeuristicCounter{}
	}
	return counter
}

func repl(ctx context.Context, controller *usecase.Controller, log *slog.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Println("mediops ready. Type a request, or Ctrl-C to quit.")
	printPrompt(controller)

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			log.Info("session ended", "session_id", controller.SessionID())
			return nil
		case line, ok := <-lines:
			if !ok {
				log.Info("session ended", "session_id", controller.SessionID())
				return scanner.Err()
			}
			handleLine(ctx, controller, line)
			printPrompt(controller)
		}
	}
}

func handleLine(ctx context.Context, controller *usecase.Controller, line string) {
	msg, err := controller.Handle(ctx, line)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return
	case errors.Is(err, domain.ErrBusy):
		fmt.Println("(a request is already in flight, please wait)")
		return
	case err != nil:
		fmt.Printf("(error: %v)\n", err)
		return
	}

	fmt.Printf("[%s] %s\n", msg.Sender, msg.Text)
	if msg.Document != nil {
		printDocument(msg.Document)
	}
	if len(msg.Citations) > 0 {
		fmt.Println("sources:")
		for _, c := range msg.Citations {
			fmt.Printf("  - %s (%s)\n", c.Title, c.URI)
		}
	}
}

func printDocument(doc *domain.Document) {
	fmt.Printf("--- %s: %s ---\n", doc.Type, doc.Title)
	keys := make([]string, 0, len(doc.Fields))
	for k := range doc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, doc.Fields[k])
	}
	fmt.Printf("--- %s ---\n", doc.ComplianceFooter)
}

func printPrompt(controller *usecase.Controller) {
	fmt.Printf("%s> ", controller.ActiveAgent())
}
