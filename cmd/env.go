package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/chat"
	"github.com/datachat-io/datachat/internal/importer"
	"github.com/datachat-io/datachat/internal/osint"
	"github.com/datachat-io/datachat/internal/query"
	"github.com/datachat-io/datachat/internal/registry"
	"github.com/datachat-io/datachat/internal/report"
	"github.com/datachat-io/datachat/internal/store"
	anthropicpkg "github.com/datachat-io/datachat/pkg/anthropic"
	"github.com/datachat-io/datachat/pkg/ollama"
	"github.com/datachat-io/datachat/pkg/pagesblanches"
	"github.com/datachat-io/datachat/pkg/profilecheck"
	"github.com/datachat-io/datachat/pkg/websearch"
	"github.com/datachat-io/datachat/pkg/xposedornot"
)

// appEnv holds the initialized store and services shared by the serve,
// chat, and import commands.
type appEnv struct {
	Store    store.Store
	Executor *query.Executor
	Chat     *chat.Service
	Importer *importer.Importer
}

// Close releases resources held by the environment.
func (ae *appEnv) Close() {
	if ae.Store != nil {
		_ = ae.Store.Close()
	}
}

// initEnv sets up the store, compiles the query pipeline, and wires the
// enrichment engine and report synthesizer. Callers should defer
// env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	classes, err := loadColumnClasses()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	compiler := query.NewCompiler(classes)
	executor := query.NewExecutor(cfg.Query.DefaultLimit)
	engine := initEngine()
	synth := report.NewSynthesizer(initGenerator())

	return &appEnv{
		Store:    st,
		Executor: executor,
		Chat:     chat.NewService(st, compiler, executor, engine, synth),
		Importer: importer.New(st, cfg.Datasets.Dir, cfg.Datasets.ChunkSize),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func loadColumnClasses() (registry.ColumnClasses, error) {
	if cfg.Registry.ClassesFile == "" {
		return registry.DefaultColumnClasses(), nil
	}
	classes, err := registry.LoadColumnClasses(cfg.Registry.ClassesFile)
	if err != nil {
		return nil, eris.Wrap(err, "load column classes")
	}
	return classes, nil
}

// initEngine wires the four enrichment providers. All of them run
// against public endpoints, so no credentials gate the engine.
func initEngine() *osint.Engine {
	searchClient := websearch.NewClient(
		websearch.WithBaseURL(cfg.Search.BaseURL),
		websearch.WithHTTPClient(httpClient(cfg.Search.TimeoutSecs)),
		websearch.WithRateLimit(cfg.Search.RatePerSec, cfg.Search.Burst),
	)
	socialClient := profilecheck.NewClient(
		profilecheck.WithHTTPClient(httpClient(cfg.Social.TimeoutSecs)),
	)
	directoryClient := pagesblanches.NewClient(
		pagesblanches.WithBaseURL(cfg.Directory.BaseURL),
		pagesblanches.WithHTTPClient(httpClient(cfg.Directory.TimeoutSecs)),
	)
	breachClient := xposedornot.NewClient(
		xposedornot.WithBaseURL(cfg.Breach.BaseURL),
		xposedornot.WithHTTPClient(httpClient(cfg.Breach.TimeoutSecs)),
	)

	return osint.NewEngine(searchClient, socialClient, directoryClient, breachClient, cfg.Enrich)
}

// initGenerator picks the report backend. A nil generator is valid; the
// synthesizer then always renders the deterministic fallback report.
func initGenerator() report.Generator {
	switch cfg.Report.Generator {
	case "ollama":
		client := ollama.NewClient(
			ollama.WithBaseURL(cfg.Ollama.BaseURL),
			ollama.WithHTTPClient(httpClient(cfg.Ollama.TimeoutSecs)),
		)
		return report.NewOllamaGenerator(client, cfg.Ollama.Model)
	case "anthropic":
		if cfg.Anthropic.Key == "" {
			zap.L().Warn("anthropic generator selected but DATACHAT_ANTHROPIC_KEY not set, using fallback reports")
			return nil
		}
		return report.NewAnthropicGenerator(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	case "none", "":
		return nil
	default:
		zap.L().Warn("unknown report generator, using fallback reports",
			zap.String("generator", cfg.Report.Generator),
		)
		return nil
	}
}

func httpClient(timeoutSecs int) *http.Client {
	return &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second}
}
