package engine

import (
	"context"
	"time"

	"github.com/slotmachine/fairness-engine/domain/provablyfair"
	"github.com/slotmachine/fairness-engine/internal/commitment"
	"github.com/slotmachine/fairness-engine/internal/physics"
	"github.com/slotmachine/fairness-engine/internal/pool"
)

// CryptoMint draws a house seed straight from crypto/rand and commits to
// it. This is the default minting strategy (§9 Open Questions).
func CryptoMint(ctx context.Context) (provablyfair.Commitment, error) {
	seed, err := commitment.NewHouseSeed()
	if err != nil {
		return provablyfair.Commitment{}, err
	}
	return commitment.Commit(seed)
}

// NewPhysicsMint returns a pool.MintFunc that derives a house seed from the
// digest of a fresh three-body run: a random configuration is drawn, run
// forward for duration at the given timestep, and the resulting final
// state's digest stands in for the house seed. The chaos is unpredictable
// to anyone who hasn't solved the three-body problem in their head, but
// §9's "it is not essential that the chaos come from gravity" means this
// is one of two equally valid strategies, not the required one.
func NewPhysicsMint(g, softening float64, duration, timestep time.Duration) pool.MintFunc {
	durSeconds := duration.Seconds()
	stepSeconds := timestep.Seconds()

	return func(ctx context.Context) (provablyfair.Commitment, error) {
		cfg, err := physics.RandomConfiguration()
		if err != nil {
			return provablyfair.Commitment{}, err
		}
		cfg.G = g
		cfg.Softening = softening

		simID, err := physics.NewSimulationID()
		if err != nil {
			return provablyfair.Commitment{}, err
		}

		finalState := physics.Simulate(cfg, durSeconds, stepSeconds)
		digest := physics.Digest(finalState, simID)
		return commitment.Commit(digest[:])
	}
}
