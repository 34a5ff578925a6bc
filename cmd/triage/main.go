package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"basegraph.app/triage/common/id"
	"basegraph.app/triage/common/llm"
	"basegraph.app/triage/common/logger"
	"basegraph.app/triage/common/otel"
	"basegraph.app/triage/core/config"
	"basegraph.app/triage/internal/brain"
	"basegraph.app/triage/internal/hints"
	"basegraph.app/triage/internal/http/middleware"
	httprouter "basegraph.app/triage/internal/http/router"
	"basegraph.app/triage/internal/incident"
	"basegraph.app/triage/internal/intake"
	"basegraph.app/triage/internal/poller"
	"basegraph.app/triage/internal/repo"
	"basegraph.app/triage/internal/runner"
	"basegraph.app/triage/internal/service"
	"basegraph.app/triage/internal/sourcegraph"
	"basegraph.app/triage/internal/thread"
	"basegraph.app/triage/internal/worker"
	"basegraph.app/triage/internal/zulip"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "triage bot starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.Triage.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmdRunner := runner.ExecCommandRunner{}
	registry := repo.NewRegistry(
		localRepos(ctx, cfg.Repos, cmdRunner),
		repo.WithRemote(sourcegraph.New(cfg.Sourcegraph)),
		repo.WithCacheSize(cfg.Triage.SearchCacheSize),
	)

	orchestrator := brain.NewOrchestrator(brain.OrchestratorConfig{
		IncludeCommits: cfg.Triage.IncludeCommits,
		KeywordLimit:   cfg.Triage.KeywordLimit,
	}, registry, hints.NewResolver(hints.MustDefault()))

	triage := brain.NewTriageService(
		orchestrator,
		newAgent(ctx, cfg, cmdRunner),
		brain.NewAnalyzer(registry.Repos()),
		time.Duration(cfg.LLM.Timeout())*time.Second,
	)

	pool := worker.New(worker.Config{Workers: cfg.Triage.Workers, QueueSize: cfg.Triage.QueueSize})
	pool.Start(ctx)

	chat := zulip.NewClient(cfg.Zulip)
	handler := service.NewMessageHandler(
		intake.NewIdentity(chat.BotEmail(), cfg.Zulip.BotAliases),
		chat,
		thread.NewResolver(chat, cfg.Triage.ThreadFetchLimit),
		incident.NewStore(),
		triage,
		pool,
		brain.NewProductSearch(registry),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, chat),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poller.New(chat, handler, poller.DefaultConfig()).Run(gctx)
	})
	g.Go(func() error {
		slog.InfoContext(gctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.InfoContext(ctx, "shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
		}
		return nil
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "triage bot stopped with error", "error", err)
		exitCode = 1
	}

	pool.Stop()

	if telemetry != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
		cancel()
	}

	slog.InfoContext(context.Background(), "shutdown complete")
	os.Exit(exitCode)
}

func localRepos(ctx context.Context, cfg config.RepoConfig, r runner.CommandRunner) []repo.Repo {
	repos := make([]repo.Repo, 0, len(cfg.Names))
	for _, name := range cfg.Names {
		local := repo.NewLocalRepo(name, cfg.Paths[name], r)
		if !local.Exists() {
			slog.WarnContext(ctx, "repository checkout not found, skipping", "repo", name, "path", cfg.Paths[name])
			continue
		}
		repos = append(repos, local)
	}
	slog.InfoContext(ctx, "repositories registered", "count", len(repos))
	return repos
}

func newAgent(ctx context.Context, cfg config.Config, r runner.CommandRunner) brain.Agent {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		client, err := llm.New(llm.Config{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.Model})
		if err != nil {
			slog.WarnContext(ctx, "openai client unavailable; LLM triage disabled", "error", err)
			return brain.NewOpenAIAgent(nil, cfg.LLM.MaxTokens)
		}
		return brain.NewOpenAIAgent(client, cfg.LLM.MaxTokens)
	case config.ProviderCodex:
		return brain.NewCodexAgent(ctx, cfg.Codex, cfg.LLM.Model, r)
	default:
		slog.WarnContext(ctx, "unknown LLM provider; LLM triage disabled", "provider", cfg.LLM.Provider)
		return nil
	}
}

func setupRouter(cfg config.Config, sender *zulip.Client) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, sender)
	return router
}

const banner = `
  _        _                    _           _
 | |_ _ _(_)__ _ __ _ ___   ___| |__  ___ | |_
 |  _| '_| / _' / _' / -_) |___| '_ \/ _ \|  _|
  \__|_| |_\__,_\__, \___|     |_.__/\___/ \__|
                |___/
`
