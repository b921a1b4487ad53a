// PromptForge - prompt optimizer backend.
// Serves the prompt form and JSON API over HTTP, or the same features as MCP tools over stdio.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/promptforge/internal/api"
	"github.com/matiasleandrokruk/promptforge/internal/api/web"
	"github.com/matiasleandrokruk/promptforge/internal/domain/chat"
	"github.com/matiasleandrokruk/promptforge/internal/domain/promptgen"
	"github.com/matiasleandrokruk/promptforge/internal/domain/transcript"
	"github.com/matiasleandrokruk/promptforge/internal/infra/config"
	"github.com/matiasleandrokruk/promptforge/internal/infra/eventbus"
	"github.com/matiasleandrokruk/promptforge/internal/infra/llm"
	"github.com/matiasleandrokruk/promptforge/internal/infra/logging"
	"github.com/matiasleandrokruk/promptforge/internal/infra/metrics"
	"github.com/matiasleandrokruk/promptforge/internal/infra/sqlite"
	"github.com/matiasleandrokruk/promptforge/internal/infra/tokens"
	"github.com/matiasleandrokruk/promptforge/internal/mcpserver"
	"github.com/matiasleandrokruk/promptforge/internal/server"
	"github.com/matiasleandrokruk/promptforge/internal/version"
)

const (
	cmdServe = "serve"
	cmdMCP   = "mcp"

	shutdownTimeout = 10 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet(version.Name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	command := cmdServe
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}
	if command != cmdServe && command != cmdMCP {
		fmt.Fprintf(out, "unknown command %q\n\n", command) //nolint:errcheck
		printHelp(out)
		return 2
	}

	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the MCP protocol, so the chat log mirrors to stderr there.
	console := out
	if command == cmdMCP {
		console = os.Stderr
	}

	a, err := newApp(ctx, cfg, logger, console)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown cleanup", "error", err)
		}
	}()

	if command == cmdMCP {
		err = mcpserver.Serve(ctx, a.mcpServer())
	} else {
		err = a.serveHTTP(ctx)
	}
	if err != nil {
		logger.Error(command+" failed", "error", err)
		return 1
	}
	return 0
}

// app is the object graph shared by both commands.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	profiles  llm.ProfileTable
	recorder  *metrics.PrometheusRecorder
	exposer   http.Handler
	generator *promptgen.Generator
	chat      *chat.Router
	estimator tokens.Estimator
	bus       *eventbus.Bus
	chatLog   *logging.ChatLog
	store     *transcript.Store
	closeDB   func() error
	recording *sync.WaitGroup
	closeOnce sync.Once
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, console io.Writer) (*app, error) {
	profiles, err := llm.LoadProfiles(cfg.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf("load provider profiles: %w", err)
	}

	registry := metrics.NewRegistry()
	recorder, err := metrics.NewPrometheusRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	if cfg.TogetherAPIKey == "" {
		logger.Warn("TOGETHER_API_KEY is not set; upstream calls will fail")
	}
	sdk := llm.NewSDKClient(llm.SDKConfig{APIKey: cfg.TogetherAPIKey, BaseURL: cfg.TogetherBaseURL, Timeout: cfg.UpstreamTimeout})
	raw := llm.NewRawHTTPClient(llm.RawHTTPConfig{APIKey: cfg.TogetherAPIKey, URL: cfg.TogetherChatURL, Timeout: cfg.UpstreamTimeout})
	dispatcher := llm.NewDispatcher(profiles, sdk, raw, recorder)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		profiles:  profiles,
		recorder:  recorder,
		exposer:   metrics.Handler(registry),
		estimator: tokens.New(tokens.DefaultEncoding),
		bus:       eventbus.New(),
	}

	if cfg.ChatDBPath != "" {
		if err := a.startTranscript(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	chatLog, err := logging.NewChatLog(cfg.ChatLogPath, console)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("chat log: %w", err)
	}
	a.chatLog = chatLog

	a.generator = promptgen.NewGenerator(profiles, dispatcher,
		promptgen.WithEstimator(a.estimator),
		promptgen.WithPublisher(a.bus),
		promptgen.WithLogger(logger),
	)
	a.chat = chat.NewRouter(dispatcher,
		chat.WithChatLog(chatLog.Logger),
		chat.WithRecorder(recorder),
		chat.WithPublisher(a.bus),
	)
	return a, nil
}

// startTranscript opens the SQLite transcript and records bus events into it.
func (a *app) startTranscript(ctx context.Context) error {
	db, err := sqlite.NewDB(a.cfg.ChatDBPath)
	if err != nil {
		return fmt.Errorf("open transcript db: %w", err)
	}
	if err := sqlite.MigrateUp(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate transcript db: %w", err)
	}
	a.closeDB = db.Close
	a.store = transcript.NewStore(db)
	rec := transcript.NewRecorder(a.store, a.logger)
	a.recording = rec.Start(ctx, a.bus)
	a.logger.Info("transcript recording enabled", "path", a.cfg.ChatDBPath)
	return nil
}

func (a *app) handler() (http.Handler, error) {
	deps := api.Deps{
		Generator:      a.generator,
		Chat:           a.chat,
		Recorder:       a.recorder,
		Metrics:        a.exposer,
		Page:           web.PageData{Title: "PromptForge", Version: version.Version, Providers: a.profiles.IDs()},
		AllowedOrigins: a.cfg.AllowedOrigins,
		Logger:         a.logger,
	}
	if a.store != nil {
		deps.Transcript = a.store
	}
	return api.NewRouter(deps)
}

func (a *app) mcpServer() *mcp.Server {
	return mcpserver.New(mcpserver.Deps{
		Generator: a.generator,
		Chat:      a.chat,
		Estimator: a.estimator,
		Logger:    a.logger,
	})
}

func (a *app) serveHTTP(ctx context.Context) error {
	h, err := a.handler()
	if err != nil {
		return err
	}
	cfg := server.DefaultConfig()
	cfg.Host, cfg.Port = a.cfg.Host, a.cfg.Port
	srv := server.NewServer(h, cfg, a.logger, a)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return errors.Join(srv.Shutdown(shutdownCtx), <-errCh)
}

// Close drains the event bus into the transcript, then releases files.
// Only the first call does any work; later calls return nil.
func (a *app) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if a.bus != nil {
			a.bus.Close()
		}
		if a.recording != nil {
			a.recording.Wait()
		}
		if a.closeDB != nil {
			if dbErr := a.closeDB(); dbErr != nil {
				err = fmt.Errorf("close transcript db: %w", dbErr)
			}
		}
		if logErr := a.chatLog.Close(); logErr != nil {
			err = errors.Join(err, fmt.Errorf("close chat log: %w", logErr))
		}
	})
	return err
}

func printHelp(out io.Writer) {
	helpText := `PromptForge - prompt optimizer backend

Usage:
  promptforge [options] [command]

Options:
  --version    Show version information
  --help       Show this help message

Commands:
  serve        Start the HTTP server (default)
  mcp          Serve the prompt tools over MCP on stdio

Environment:
  TOGETHER_API_KEY   Upstream credential (required for generation)
  PORT, HOST         Listen address (default 0.0.0.0:8080)
  PROVIDERS_FILE     YAML provider profile overrides
  CHAT_DB_PATH       SQLite transcript of chats and generations (off when empty)
  CHAT_LOG_PATH      Chat log file (default chatbot_handler.log)

Examples:
  promptforge --version
  PORT=9090 promptforge serve
  promptforge mcp`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
