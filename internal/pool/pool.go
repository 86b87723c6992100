// Package pool implements the Commitment Pool (C7, §4.7): a bounded,
// in-memory ready queue of Commitments kept topped up by a background
// refill task, so the reveal path can pop a pre-minted commitment instead
// of paying the physics integrator's multi-millisecond cost synchronously.
package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/slotmachine/fairness-engine/domain/provablyfair"
	"github.com/slotmachine/fairness-engine/internal/logger"
)

// MintFunc mints a fresh Commitment, typically via a cryptographic draw or
// a physics integrator run (§9 Open Questions — the pool is agnostic to
// which).
type MintFunc func(ctx context.Context) (provablyfair.Commitment, error)

// Pool is a single-producer/multi-consumer queue in effect: any number of
// callers may Take concurrently, but exactly one background goroutine
// refills (§5 Shared resources).
type Pool struct {
	mu         sync.Mutex
	ready      []provablyfair.Commitment
	targetSize int
	mint       MintFunc
	log        *logger.Logger

	sf       singleflight.Group
	refillCh chan struct{}
	closeCh  chan struct{}
	closeOnce sync.Once
}

// New constructs a Pool with the given target size and minting strategy.
// Call Start to launch the background refill task.
func New(targetSize int, mint MintFunc, log *logger.Logger) *Pool {
	if targetSize <= 0 {
		targetSize = 1
	}
	return &Pool{
		targetSize: targetSize,
		mint:       mint,
		log:        log,
		refillCh:   make(chan struct{}, 1),
		closeCh:    make(chan struct{}),
	}
}

// Start launches the background refill loop and kicks off an initial fill.
// It returns immediately; refilling happens asynchronously.
func (p *Pool) Start(ctx context.Context) {
	go p.refillLoop(ctx)
	p.triggerRefill()
}

// Close stops the background refill task. Pool contents are ephemeral and
// are simply discarded — nothing here survives a restart (§4.7).
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.closeCh) })
}

// Len reports how many ready commitments are currently queued.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ready)
}

// Take pops one ready commitment. If the pool is empty it synchronously
// mints one on the caller's path; concurrent misses collapse into a single
// mint via singleflight so a burst of empty-pool callers doesn't thunder
// the physics integrator.
func (p *Pool) Take(ctx context.Context) (provablyfair.Commitment, error) {
	p.mu.Lock()
	if len(p.ready) > 0 {
		c := p.ready[0]
		p.ready = p.ready[1:]
		belowHalf := len(p.ready) < p.targetSize/2
		p.mu.Unlock()
		if belowHalf {
			p.triggerRefill()
		}
		return c, nil
	}
	p.mu.Unlock()

	v, err, _ := p.sf.Do("mint", func() (interface{}, error) {
		return p.mint(ctx)
	})
	if err != nil {
		return provablyfair.Commitment{}, err
	}

	p.triggerRefill()
	return v.(provablyfair.Commitment), nil
}

func (p *Pool) triggerRefill() {
	select {
	case p.refillCh <- struct{}{}:
	default:
	}
}

func (p *Pool) refillLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.closeCh:
			return
		case <-p.refillCh:
			p.refillUntilFull(ctx)
		}
	}
}

// refillUntilFull mints commitments one at a time until the queue reaches
// its target size, logging (not failing) a mint error and giving up for
// this trigger — the next Take below half-capacity retriggers it.
func (p *Pool) refillUntilFull(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.closeCh:
			return
		default:
		}

		p.mu.Lock()
		n := len(p.ready)
		target := p.targetSize
		p.mu.Unlock()
		if n >= target {
			return
		}

		c, err := p.mint(ctx)
		if err != nil {
			if p.log != nil {
				p.log.Error().Err(err).Msg("commitment pool refill failed")
			}
			return
		}

		p.mu.Lock()
		p.ready = append(p.ready, c)
		p.mu.Unlock()
	}
}
