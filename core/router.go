package core

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/digitbot/feeds"
	"github.com/web3guy0/digitbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ROUTER - Routes ticks to engines based on symbol subscriptions
// ═══════════════════════════════════════════════════════════════════════════════

// TickHandler consumes ticks (Engine)
type TickHandler interface {
	OnTick(tick feeds.Tick) (*types.Settlement, error)
	Halted() bool
}

const allSymbols = "*"

type Router struct {
	mu            sync.RWMutex
	subscriptions map[string][]TickHandler // symbol -> handlers
}

// NewRouter creates a new tick router
func NewRouter() *Router {
	return &Router{
		subscriptions: make(map[string][]TickHandler),
	}
}

// Subscribe registers a handler for a symbol
func (r *Router) Subscribe(symbol string, h TickHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions[symbol] = append(r.subscriptions[symbol], h)
}

// SubscribeAll subscribes a handler to every symbol
func (r *Router) SubscribeAll(h TickHandler) {
	r.Subscribe(allSymbols, h)
}

func (r *Router) handlers(symbol string) []TickHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TickHandler, 0, len(r.subscriptions[symbol])+len(r.subscriptions[allSymbols]))
	out = append(out, r.subscriptions[symbol]...)
	if symbol != allSymbols {
		out = append(out, r.subscriptions[allSymbols]...)
	}
	return out
}

// Route sends a tick to all subscribed, still running handlers
func (r *Router) Route(tick feeds.Tick) []*types.Settlement {
	var settlements []*types.Settlement

	for _, h := range r.handlers(tick.Symbol) {
		if h.Halted() {
			continue
		}
		s, err := h.OnTick(tick)
		if err != nil && !errors.Is(err, ErrHalted) {
			log.Error().Err(err).Str("symbol", tick.Symbol).Msg("Tick handling failed")
		}
		if s != nil {
			settlements = append(settlements, s)
		}
	}
	return settlements
}

// Active reports whether any subscribed handler is still trading
func (r *Router) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, hs := range r.subscriptions {
		for _, h := range hs {
			if !h.Halted() {
				return true
			}
		}
	}
	return false
}

// Run routes ticks until the channel closes, the context is cancelled or
// every handler has halted
func (r *Router) Run(ctx context.Context, ticks <-chan feeds.Tick) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tick, ok := <-ticks:
			if !ok {
				return nil
			}
			r.Route(tick)
			if !r.Active() {
				log.Info().Msg("All engines halted")
				return nil
			}
		}
	}
}
