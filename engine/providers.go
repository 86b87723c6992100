package engine

import (
	"context"

	"github.com/slotmachine/fairness-engine/domain/session"
	"github.com/slotmachine/fairness-engine/internal/cache"
	"github.com/slotmachine/fairness-engine/internal/config"
	"github.com/slotmachine/fairness-engine/internal/logger"
	"github.com/slotmachine/fairness-engine/internal/pool"
)

// Application holds every long-lived collaborator the engine needs,
// assembled once at process start.
type Application struct {
	Config   *config.Config
	Logger   *logger.Logger
	Cache    cache.Cache
	Pool     *pool.Pool
	Sessions session.Service
	Engine   *Engine
}

// ProvidePool constructs and starts the commitment pool (C7), selecting
// the minting strategy named by cfg.ProvablyFair.HouseSeedStrategy. The
// returned Pool is already filling in the background; callers shut it
// down with Pool.Close at process exit.
func ProvidePool(cfg *config.Config, log *logger.Logger) *pool.Pool {
	var mint pool.MintFunc
	switch cfg.ProvablyFair.HouseSeedStrategy {
	case "physics":
		mint = NewPhysicsMint(cfg.Physics.G, cfg.Physics.Softening, cfg.Physics.MintDuration, cfg.Physics.Timestep)
	default:
		mint = CryptoMint
	}

	p := pool.New(cfg.Pool.TargetSize, mint, log)
	p.Start(context.Background())
	return p
}

// ProvideEngine assembles the Engine from its already-constructed
// collaborators.
func ProvideEngine(cfg *config.Config, log *logger.Logger, c cache.Cache, p *pool.Pool, sessions session.Service) *Engine {
	return New(cfg, log, c, p, sessions)
}
