package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/dispatcher"
	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/application/service"
	"github.com/garyjia/hr-assistant/internal/extractor"
	"github.com/garyjia/hr-assistant/internal/infrastructure/external/gemini"
	"github.com/garyjia/hr-assistant/internal/infrastructure/external/openai"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/repository"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hr-assistant/internal/ingest"
	"github.com/garyjia/hr-assistant/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
	Store          *repository.Store
}

// ProvideDatabase opens the database, applies pending migrations and builds the entity store.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
		Store:          repository.NewStore(db.DB, logger),
	}, nil
}

// ProvideCompleter creates the language model client for the configured provider.
func ProvideCompleter(ctx context.Context, cfg *LLMConfig, system string, logger *zap.Logger) (port.Completer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm config is required")
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return openai.NewCompleter(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			System:      system,
		}, logger), nil
	case ProviderGemini:
		return gemini.NewCompleter(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			System:      system,
		}, logger)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// ProvideExtractor loads the prompt file and creates the intent extractor.
func ProvideExtractor(ctx context.Context, cfg *LLMConfig, logger *zap.Logger) (*extractor.Extractor, error) {
	prompts, err := extractor.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return nil, err
	}

	completer, err := ProvideCompleter(ctx, cfg, prompts.IntentExtraction.System, logger)
	if err != nil {
		return nil, err
	}

	return extractor.New(completer, prompts, cfg.Timeout, logger), nil
}

// ProvideDispatcher creates the event dispatcher that fans mutations out to subscribers.
func ProvideDispatcher(logger *zap.Logger) dispatcher.Dispatcher {
	return dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}))
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Store     port.EntityStore
	TxManager port.TransactionManager
	Extractor port.IntentExtractor
	Events    dispatcher.Dispatcher
	Logger    *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("entity store is required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Extractor == nil {
		return nil, fmt.Errorf("intent extractor is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if deps.Events == nil {
		return nil, fmt.Errorf("event dispatcher is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	activity := service.NewActivityService(service.DefaultActivityCapacity, serviceLogger)
	deps.Events.Subscribe(dispatcher.AllEvents, "activity-feed", activity.Record)

	queries := service.NewQueryService(deps.Store, serviceLogger)
	actions := service.NewActionService(deps.Store, deps.TxManager, deps.Extractor, serviceLogger,
		service.WithPublisher(deps.Events))

	return &ServiceBundle{
		Queries:   queries,
		Actions:   actions,
		Activity:  activity,
		Assistant: service.NewAssistant(deps.Extractor, queries, actions, serviceLogger),
		Importer:  ingest.NewImporter(deps.Store, deps.TxManager, deps.Logger),
		Exporter:  ingest.NewExporter(deps.Store, deps.Logger),
	}, nil
}

// pingDB reports whether the database answers
func pingDB(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("not initialized")
	}
	return db.Ping()
}
