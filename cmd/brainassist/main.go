package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/config"
	ctxengine "github.com/user/brainassist/internal/context"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/state"
	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm"
	"github.com/user/brainassist/pkg/llm/gemini"
	"github.com/user/brainassist/pkg/llm/openai"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "brainassist",
	Short:         "Multi-mode study assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newProvider returns nil when no credential is configured so the shell
// can still start and report a configuration error on the first turn.
func newProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	if cfg.LLM.APIKey == "" {
		slog.Warn("no API key configured, chat turns will fail", "provider", cfg.LLM.Provider)
		return nil, nil
	}
	lc := &llm.Config{APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model}
	switch cfg.LLM.Provider {
	case "openai":
		lc.BaseURL = cfg.LLM.BaseURL
		return openai.New(lc), nil
	case "gemini", "":
		client, err := gemini.New(ctx, lc)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// openKV returns the prefixed store for the configured backend and a
// release func.
func openKV(ctx context.Context, cfg *config.Config) (types.KV, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		kv, err := state.DialRedis(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return state.WithPrefix(kv, cfg.Storage.Prefix), func() { kv.Close() }, nil
	case "file", "":
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		kv := state.NewFileKV(filepath.Join(cfg.DataDir, "state"))
		return state.WithPrefix(kv, cfg.Storage.Prefix), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// buildShell wires config into a started shell. mode overrides the
// configured default when non-empty.
func buildShell(ctx context.Context, cfg *config.Config, mode string) (*app.Shell, func(), error) {
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	model := cfg.LLM.Model
	if model == "" {
		model = modes.ModelFlash
	}
	engine, err := ctxengine.New(model, cfg.LLM.MaxContextTokens, cfg.LLM.OutputReserve)
	if err != nil {
		return nil, nil, fmt.Errorf("create context engine: %w", err)
	}

	kv, release, err := openKV(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if mode == "" {
		mode = cfg.Chat.DefaultMode
	}
	start, err := modes.Parse(mode)
	if err != nil {
		release()
		return nil, nil, err
	}

	shell := app.New(provider, kv,
		app.WithEngine(engine),
		app.WithPersonalization(cfg.Chat.Personalize),
		app.WithMode(start),
	)
	if err := shell.Start(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("start shell: %w", err)
	}

	slog.Debug("shell ready",
		"mode", start,
		"llm_provider", cfg.LLM.Provider,
		"storage", cfg.Storage.Backend,
	)
	return shell, func() {
		shell.Close()
		release()
	}, nil
}

// withShell runs fn against a shell that is closed afterwards.
func withShell(cmd *cobra.Command, fn func(ctx context.Context, shell *app.Shell) error) error {
	cfg := loadConfig()
	setupLogging(cfg)
	ctx := cmd.Context()
	shell, closeFn, err := buildShell(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, shell)
}
