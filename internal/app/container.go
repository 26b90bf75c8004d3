package app

import (
	"context"

	"github.com/doeshing/sdkassist/internal/application/analyze"
	"github.com/doeshing/sdkassist/internal/application/session"
	"github.com/doeshing/sdkassist/internal/application/tutorial"
	"github.com/doeshing/sdkassist/internal/infrastructure/ai"
	"github.com/doeshing/sdkassist/internal/infrastructure/cache"
	"github.com/doeshing/sdkassist/internal/infrastructure/classify"
	"github.com/doeshing/sdkassist/internal/infrastructure/config"
	"github.com/doeshing/sdkassist/internal/infrastructure/executor"
	"github.com/doeshing/sdkassist/internal/infrastructure/github"
	"github.com/doeshing/sdkassist/internal/infrastructure/history"
	"github.com/doeshing/sdkassist/internal/infrastructure/ratelimit"
	"github.com/doeshing/sdkassist/internal/infrastructure/registry"
	"github.com/doeshing/sdkassist/internal/pkg/logger"
	"github.com/doeshing/sdkassist/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	SessionService *session.Service
	AnalyzeService *analyze.Service
	Gatherer       ports.IntelGatherer
	Classifier     ports.ErrorClassifier
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	HistoryStore   ports.HistoryRepository
	CacheStore     ports.CacheRepository
	Config         ConfigSnapshot
	Logger         ports.Logger
}

// ConfigSnapshot carries the resolved config values commands need without
// reloading the file.
type ConfigSnapshot struct {
	TimeoutSeconds int
	TutorialDir    string
	GitHubEnabled  bool
	GitHubRepo     string
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	historyStore := history.NewSQLiteStore()
	cacheStore := cache.NewFileCache(cfg.Cache)
	limiter := ratelimit.New(cfg.RateLimits)

	classifier, err := classify.New(cfg.Classifier.RulesFile)
	if err != nil {
		classifier, err = classify.New("")
		if err != nil {
			return nil, err
		}
	}

	httpClient := registry.NewHTTPClient()
	gatherer := &registry.Fetcher{
		Cache:   cacheStore,
		Limiter: limiter,
		Sources: []ports.SourceClient{
			registry.NewPyPIClient(httpClient),
			registry.NewGitHubClient(httpClient),
			registry.NewReadTheDocsClient(httpClient),
		},
		Logger: log,
	}

	analyzeService := &analyze.Service{
		ProviderFactory: ai.NewFactory(),
		Models:          cfg.Models,
		Logger:          log,
	}

	sessionService := &session.Service{
		Executor:   executor.NewLocalExecutor(cfg.Preferences.Shell),
		Classifier: classifier,
		Gatherer:   gatherer,
		Analyzer:   analyzeService,
		History:    historyStore,
		Tutorial:   tutorial.NewGenerator(cfg.Preferences.TutorialDir),
		Logger:     log,
	}

	// Issue filing is opt-in; when enabled, missing credentials abort
	// startup rather than surfacing at session close.
	if cfg.GitHub.Enabled {
		issues, err := github.NewIssueClient(httpClient, cfg.GitHub)
		if err != nil {
			return nil, err
		}
		sessionService.Issues = issues
	}

	return &Container{
		SessionService: sessionService,
		AnalyzeService: analyzeService,
		Gatherer:       gatherer,
		Classifier:     classifier,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		HistoryStore:   historyStore,
		CacheStore:     cacheStore,
		Config: ConfigSnapshot{
			TimeoutSeconds: cfg.Preferences.TimeoutSeconds,
			TutorialDir:    cfg.Preferences.TutorialDir,
			GitHubEnabled:  cfg.GitHub.Enabled,
			GitHubRepo:     cfg.GitHub.Repo,
		},
		Logger: log,
	}, nil
}
