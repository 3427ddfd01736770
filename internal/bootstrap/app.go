package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/account"
	"github.com/sourabhsahu334/newsUserBackend/internal/batch"
	"github.com/sourabhsahu334/newsUserBackend/internal/credits"
	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/history"
	"github.com/sourabhsahu334/newsUserBackend/internal/inbox"
	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
	"github.com/sourabhsahu334/newsUserBackend/internal/oracle/gemini"
	"github.com/sourabhsahu334/newsUserBackend/internal/oracle/openai"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/config"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/storage/db"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/workpool"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Credits  *credits.Service
	Folders  *folders.Service
	History  *history.Service
	Accounts *account.Service
	Oracle   oracle.Extractor
	Batches  *batch.Orchestrator
	Inbox    *inbox.Service

	closers []io.Closer
}

// Build prepares every service and the HTTP router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := OpenDB(ctx, cfg, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	app, err := Assemble(ctx, cfg, sqlDB)
	if err != nil {
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Health:  &server.Health{DB: pinger(sqlDB)},
		Onboard: account.Onboard(app.Accounts),
		Handlers: []server.RouteRegistrar{
			account.NewHandler(app.Accounts),
			credits.NewHandler(app.Credits, cfg.PaymentWebhookSecret),
			folders.NewHandler(app.Folders),
			history.NewHandler(app.History),
			batch.NewHandler(app.Batches, cfg.MaxUploadBytes),
			inbox.NewHandler(app.Inbox, inbox.NewGmailMailbox),
		},
	})
	return app, nil
}

// Assemble builds the services over sqlDB, or over in-memory repositories
// when sqlDB is nil. The router is not built.
func Assemble(ctx context.Context, cfg config.Config, sqlDB *sql.DB) (*App, error) {
	app := &App{Config: cfg, DB: sqlDB}
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB)
	}

	model, name, err := BuildModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := model.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	app.Oracle = BuildExtractor(cfg, model, name)
	app.buildServices()
	return app, nil
}

// Close releases the database pool and oracle client.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("bootstrap: close: %v", err)
		}
	}
	a.closers = nil
}

func (a *App) buildServices() {
	var (
		folderRepo  folders.Repo
		historyRepo history.Repo
		accountRepo account.Repo
	)
	if a.DB != nil {
		folderRepo = &folders.PGRepo{DB: a.DB}
		historyRepo = &history.PGRepo{DB: a.DB}
		accountRepo = &account.PGRepo{DB: a.DB}
	} else {
		folderRepo = folders.NewMemoryRepo()
		historyRepo = history.NewMemoryRepo()
		accountRepo = account.NewMemoryRepo()
	}

	a.Credits = Ledger(a.DB)
	a.Folders = folders.NewService(folderRepo)
	a.History = history.NewService(historyRepo, a.Folders)
	a.Accounts = account.NewService(accountRepo, a.Credits, a.Folders)
	a.Batches = &batch.Orchestrator{
		Ledger:         a.Credits,
		Oracle:         a.Oracle,
		Folders:        a.Folders,
		History:        a.History,
		Pool:           workpool.New(a.Config.BatchConcurrency),
		RecordFailures: a.Config.HistoryRecordFailures,
		MaxDocuments:   a.Config.MaxBatchDocuments,
	}
	a.Inbox = inbox.NewService(a.Batches)
}

// OpenDB connects to Postgres. Dev-like environments fall back to in-memory
// repositories (nil DB) when DATABASE_URL is empty or unreachable.
func OpenDB(ctx context.Context, cfg config.Config, opts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// Ledger returns the Postgres-backed ledger, or the in-memory one when sqlDB is nil.
func Ledger(sqlDB *sql.DB) *credits.Service {
	if sqlDB == nil {
		return credits.NewService()
	}
	return credits.NewPostgresService(credits.NewPGStore(sqlDB))
}

// BuildExtractor wraps a model with the adapter and the result cache.
func BuildExtractor(cfg config.Config, model oracle.Model, name string) oracle.Extractor {
	adapter := oracle.NewAdapter(model, name, cfg.OracleTimeout)
	return oracle.NewCachedExtractor(adapter, cfg.OracleCacheSize, cfg.OracleCacheTTL)
}

// BuildModel selects the oracle provider from config.
func BuildModel(ctx context.Context, cfg config.Config) (oracle.Model, string, error) {
	switch cfg.OracleProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GoogleCloudProject) == "" {
			if cfg.IsDevLike() {
				log.Printf("bootstrap: GOOGLE_CLOUD_PROJECT empty; oracle disabled")
				return oracle.PlaceholderModel{}, "placeholder", nil
			}
			return nil, "", fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the gemini provider")
		}
		client, err := gemini.NewClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation, cfg.OracleModel)
		if err != nil {
			return nil, "", err
		}
		return client, client.Name(), nil
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OracleModel, cfg.OracleTimeout)
		if err != nil {
			return nil, "", err
		}
		return client, client.Name(), nil
	default:
		return oracle.PlaceholderModel{}, "placeholder", nil
	}
}

func pinger(sqlDB *sql.DB) server.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}
