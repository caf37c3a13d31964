// Package talus is a session shell for 2D slope stability analysis. It
// keeps the inputs of an analysis session (slope geometry, material
// layers, applied loads), drives an external Bishop's-method engine,
// and retains the resulting factor of safety and plot artifacts.
//
// The library surface is pkg/session (the Shell and the Manager) over
// pkg/ports interfaces; this package provides factories that assemble
// those pieces from a Config.
package talus

import (
	"fmt"
	"log/slog"

	"github.com/nambucca-eng/talus/internal/adapters/engine/process"
	"github.com/nambucca-eng/talus/internal/adapters/engine/stub"
	fileStore "github.com/nambucca-eng/talus/internal/adapters/file"
	redisAdapter "github.com/nambucca-eng/talus/internal/adapters/redis"
	"github.com/nambucca-eng/talus/internal/config"
	"github.com/nambucca-eng/talus/internal/logging"
	"github.com/nambucca-eng/talus/pkg/adapters/memory"
	"github.com/nambucca-eng/talus/pkg/ports"
	"github.com/nambucca-eng/talus/pkg/session"
)

// Version is the release version, stamped into the banner and the
// version command.
const Version = "0.3.1"

// NewEngine builds the analysis engine selected by cfg.Engine.
func NewEngine(cfg *config.Config, logger *slog.Logger) (ports.AnalysisEngine, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	switch cfg.Engine.Kind {
	case "process":
		return process.NewEngine(cfg.Engine.Command, cfg.Engine.Args,
			process.WithLogger(logger),
		), nil
	case "stub":
		return stub.NewEngine(), nil
	default:
		return nil, fmt.Errorf("unknown engine kind %q", cfg.Engine.Kind)
	}
}

// NewManager builds the session manager over the store selected by
// cfg.Store. For the redis store the returned manager also holds a
// distributed lock, so concurrent processes sharing the store serialize
// per session. The cleanup func closes any owned connections.
func NewManager(cfg *config.Config) (*session.Manager, func(), error) {
	noop := func() {}

	switch cfg.Store.Kind {
	case "memory":
		return session.NewManager(memory.NewStore()), noop, nil

	case "file":
		return session.NewManager(fileStore.New(cfg.Store.Dir)), noop, nil

	case "redis":
		store := redisAdapter.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB,
			redisAdapter.WithTTL(cfg.Store.RedisTTL),
		)
		locker := redisAdapter.NewLocker(store.Client(), "talus:")
		manager := session.NewManager(store, session.WithLocker(locker))
		return manager, func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

// NewShell builds a standalone Shell from cfg, without persistence.
// Useful for embedding and one-shot runs.
func NewShell(cfg *config.Config, logger *slog.Logger, opts ...session.Option) (*session.Shell, error) {
	engine, err := NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	all := []session.Option{
		session.WithTimeout(cfg.Engine.Timeout),
		session.WithMaxFOS(cfg.MaxFOS),
	}
	if logger != nil {
		all = append(all, session.WithLogger(logger))
	}
	all = append(all, opts...)

	return session.NewShell(engine, all...), nil
}
