//go:build wireinject
// +build wireinject

package engine

import (
	"github.com/google/wire"

	"github.com/slotmachine/fairness-engine/domain/session"
	"github.com/slotmachine/fairness-engine/internal/cache"
	"github.com/slotmachine/fairness-engine/internal/config"
	"github.com/slotmachine/fairness-engine/internal/logger"
	"github.com/slotmachine/fairness-engine/internal/sessionfsm"
)

// InitializeApplication wires the full dependency graph: config, logger,
// cache, commitment pool (minting strategy selected by configuration),
// session store/state machine, and the Engine itself.
func InitializeApplication() (*Application, error) {
	wire.Build(
		config.ProviderSet,
		logger.ProviderSet,
		cache.ProviderSet,
		session.ProviderSet,
		sessionfsm.ProviderSet,
		ProvidePool,
		ProvideEngine,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
