package sessionfsm

import (
	"github.com/google/wire"

	"github.com/slotmachine/fairness-engine/domain/session"
	"github.com/slotmachine/fairness-engine/internal/config"
	"github.com/slotmachine/fairness-engine/internal/logger"
)

// ProviderSet is the Wire provider set for the session state machine (C8),
// bound to the domain session.Service interface so callers never depend
// on the concrete Machine type.
var ProviderSet = wire.NewSet(
	ProvideMachine,
	wire.Bind(new(session.Service), new(*Machine)),
)

// ProvideMachine constructs the Machine over an injected Store, bounding
// history to the configured size.
func ProvideMachine(store session.Store, cfg *config.Config, log *logger.Logger) *Machine {
	return New(store, cfg.Session.MaxHistorySize, log)
}
