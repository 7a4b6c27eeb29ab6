package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"graphd/config"
	"graphd/core"
	"graphd/core/catalog"
	"graphd/core/executor"
	_ "graphd/core/operator" // registers every operator into executor.DefaultRegistry
	"graphd/core/optimizer"
	"graphd/core/service"
	"graphd/core/storageclient"
	"graphd/core/storageclient/refstore"
)

// demoSpaceID, demoPersonTagID and demoFriendEdgeID identify the schema
// seeded into every in-process catalog the CLI builds, mirroring the
// teacher's runDemo seeding a fixed person/friend shape before running
// any canned queries.
const (
	demoSpaceID      int32 = 1
	demoPersonTagID  int32 = 1
	demoFriendEdgeID int32 = 1
)

// App bundles the wiring a subcommand needs to reach the query service:
// catalog, storage client, and the Service itself, plus the space every
// statement in this CLI session runs against. Grounded on the teacher's
// Database holding a single open handle subcommands share.
type App struct {
	Config  *config.Config
	Catalog *catalog.InMemory
	Store   *refstore.Store
	Service *service.Service
	Session catalog.Session
	SpaceID int32
	Log     zerolog.Logger
}

// newApp loads configuration, opens the reference storage backend at
// dbPath (empty opens an ephemeral in-memory store), seeds the demo
// schema, and wires a Service around it.
func newApp(cfgPath, dbPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg)

	store, err := refstore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	cat := catalog.NewInMemory()
	seedDemoSchema(cat)

	client := storageclient.NewClient(store, cat, cfg.RetryPolicy())

	cache, err := optimizer.NewPlanCache(cfg.Planner.CacheCapacity, cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("build plan cache: %w", err)
	}

	hooks := executor.NewZerologContext(log)
	svc := service.New(cat, client, nil, cache, nil, cfg.Executor.MemoryLimitBytes, hooks)
	svc.Options = cfg.OptimizerOptions()

	return &App{
		Config:  cfg,
		Catalog: cat,
		Store:   store,
		Service: svc,
		Session: catalog.Session{User: "cli", Role: "admin"},
		SpaceID: demoSpaceID,
		Log:     log,
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// newLogger builds a zerolog.Logger honoring cfg.Logging, pretty-printed
// to stderr in "pretty" mode the way cobra/zerolog CLIs commonly run
// interactively versus structured JSON in production.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w = os.Stderr
	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if cfg.Logging.Pretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	}
	return logger
}

// seedDemoSchema registers the fixed space/tag/edge shape the demo and
// fetch commands run against: a "person" tag (name/age/city) and a
// "friend" edge type, under a single-partition "demo" space.
func seedDemoSchema(cat *catalog.InMemory) {
	cat.AddSpace(catalog.SpaceInfo{ID: demoSpaceID, Name: "demo", PartsCount: 1}, nil)
	cat.AddTag(catalog.TagInfo{
		ID:      demoPersonTagID,
		SpaceID: demoSpaceID,
		Name:    "person",
		Columns: []catalog.ColumnInfo{
			{Name: "name", Type: core.KindString},
			{Name: "age", Type: core.KindInt},
			{Name: "city", Type: core.KindString},
		},
	})
	cat.AddEdge(catalog.EdgeInfo{
		ID:      demoFriendEdgeID,
		SpaceID: demoSpaceID,
		Name:    "friend",
	})
}
