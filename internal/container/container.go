package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/dispatcher"
	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/application/service"
	"github.com/garyjia/hr-assistant/internal/extractor"
	"github.com/garyjia/hr-assistant/internal/infrastructure/worker"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/repository"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hr-assistant/internal/ingest"
	"github.com/garyjia/hr-assistant/internal/storage"
	"github.com/garyjia/hr-assistant/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	db        *database.DB
	txManager *sqlite.DB
	store     *repository.Store
	files     storage.FileStorage

	// Infrastructure - External
	extractor *extractor.Extractor

	// Application
	events   dispatcher.Dispatcher
	services *ServiceBundle

	// Workers
	snapshots *worker.SnapshotWorker
	workers   *worker.Manager

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Queries   service.QueryService
	Actions   service.ActionService
	Activity  service.ActivityService
	Assistant *service.Assistant
	Importer  *ingest.Importer
	Exporter  *ingest.Exporter
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() or StartStorage().
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes every component:
// 1. Database, migrations and entity store
// 2. Language model client and intent extractor
// 3. Event dispatcher and application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkStartable(); err != nil {
		return err
	}
	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initExtractor(ctx); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize intent extractor: %w", err)
	}
	c.logger.Info("Intent extractor initialized",
		zap.String("provider", c.config.LLM.Provider),
		zap.String("model", c.config.LLM.Model))

	if err := c.initServices(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.initSnapshots()
	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// StartStorage initializes only the database and the seed import/export services.
// Commands that never talk to a language model use it so they need no API key.
func (c *Container) StartStorage(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkStartable(); err != nil {
		return err
	}
	if c.config.Database.Path == "" {
		return fmt.Errorf("invalid config: database.path is required")
	}
	if c.config.Export.Dir == "" {
		return fmt.Errorf("invalid config: export.dir is required")
	}

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	c.services = &ServiceBundle{
		Importer: ingest.NewImporter(c.store, c.txManager, c.logger),
		Exporter: ingest.NewExporter(c.store, c.logger),
	}

	c.initSnapshots()
	c.ready.Store(true)
	c.logger.Info("Container started in storage-only mode")
	return nil
}

// StartWorkers starts the background workers enabled by configuration.
// Only long-running commands call it; Close stops them.
func (c *Container) StartWorkers(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready.Load() {
		return fmt.Errorf("container not started")
	}
	if c.workers != nil {
		return fmt.Errorf("workers already started")
	}

	c.workers = worker.NewManager(c.logger)
	if c.config.Export.SnapshotInterval > 0 {
		c.workers.Register(c.snapshots)
	} else {
		c.logger.Info("Leave balance snapshots disabled")
	}
	return c.workers.StartAll(ctx)
}

func (c *Container) checkStartable() error {
	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
		}
	}

	// Drain in-flight event handlers before the store goes away
	if c.events != nil {
		if err := c.events.Close(); err != nil {
			c.logger.Error("Failed to close event dispatcher", zap.Error(err))
		}
	}

	var err error
	if c.db != nil {
		if err = c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			err = fmt.Errorf("close database: %w", err)
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if err == nil {
		c.logger.Info("Container closed successfully")
	}
	return err
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	var dbErr error
	if c.db == nil {
		dbErr = pingDB(nil)
	} else {
		dbErr = pingDB(c.db.DB)
	}
	if dbErr != nil {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: dbErr.Error()}
		status.Overall = false
	} else {
		status.Components["database"] = ComponentHealth{Healthy: true}
	}

	if c.workers != nil {
		status.Components["workers"] = ComponentHealth{
			Healthy: c.workers.IsRunning(),
			Message: fmt.Sprintf("worker count: %d", c.workers.Count()),
		}
	}

	if c.extractor != nil {
		status.Components["extractor"] = ComponentHealth{Healthy: true, Message: c.config.LLM.Provider}
	} else {
		status.Components["extractor"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

func (c *Container) initDatabase() error {
	bundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.db = bundle.DB
	c.txManager = bundle.TransactionMgr
	c.store = bundle.Store
	c.files = storage.NewLocalFileStorage(c.config.Export.Dir, c.logger)
	return nil
}

func (c *Container) initSnapshots() {
	c.snapshots = worker.NewSnapshotWorker(c.config.Export.SnapshotInterval, c.services.Exporter, c.files, c.logger)
}

func (c *Container) closeDatabase() {
	if c.db == nil {
		return
	}
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	}
	c.db = nil
}

func (c *Container) initExtractor(ctx context.Context) error {
	x, err := ProvideExtractor(ctx, &c.config.LLM, c.logger)
	if err != nil {
		return err
	}
	c.extractor = x
	return nil
}

func (c *Container) initServices() error {
	events := ProvideDispatcher(c.logger)
	services, err := ProvideServices(&ServiceDeps{
		Store:     c.store,
		TxManager: c.txManager,
		Extractor: c.extractor,
		Events:    events,
		Logger:    c.logger,
	})
	if err != nil {
		_ = events.Close()
		return err
	}
	c.events = events
	c.services = services
	return nil
}

// Getters for accessing container components

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.txManager
}

// Store returns the entity store.
func (c *Container) Store() port.EntityStore {
	return c.store
}

// Extractor returns the intent extractor.
func (c *Container) Extractor() port.IntentExtractor {
	if c.extractor == nil {
		return nil
	}
	return c.extractor
}

// Events returns the event dispatcher, nil in storage-only mode.
func (c *Container) Events() dispatcher.Dispatcher {
	return c.events
}

// Snapshots returns the leave balance snapshot worker.
func (c *Container) Snapshots() *worker.SnapshotWorker {
	return c.snapshots
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// ServiceLogger adapts the container's logger to the key-value Logger used by services.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
