package core

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SYMBOLS - Tradable symbol metadata
// ═══════════════════════════════════════════════════════════════════════════════

// DefaultSymbol is used when none is configured
const DefaultSymbol = "R_100"

// Symbol describes a tradable underlying
type Symbol struct {
	Code          string
	Name          string
	Category      string
	MinStake      decimal.Decimal
	SupportsTicks bool // Digit contracts need tick durations
}

// SymbolManager manages symbol metadata
type SymbolManager struct {
	mu      sync.RWMutex
	symbols map[string]*Symbol
}

// NewSymbolManager creates an empty symbol manager
func NewSymbolManager() *SymbolManager {
	return &SymbolManager{
		symbols: make(map[string]*Symbol),
	}
}

// DefaultSymbols returns a manager loaded with the supported synthetic indices
func DefaultSymbols() *SymbolManager {
	sm := NewSymbolManager()
	minStake := decimal.NewFromFloat(0.50)

	for _, s := range []struct{ code, name string }{
		{"R_100", "Volatility 100 Index"},
		{"R_75", "Volatility 75 Index"},
		{"R_50", "Volatility 50 Index"},
		{"R_25", "Volatility 25 Index"},
		{"R_10", "Volatility 10 Index"},
		{"1HZ100V", "Volatility 100 (1s) Index"},
		{"1HZ75V", "Volatility 75 (1s) Index"},
		{"1HZ50V", "Volatility 50 (1s) Index"},
	} {
		sm.Add(&Symbol{Code: s.code, Name: s.name, Category: "Synthetic", MinStake: minStake, SupportsTicks: true})
	}

	// daily durations only
	sm.Add(&Symbol{Code: "frxXAUUSD", Name: "Gold/USD", Category: "Commodities", MinStake: minStake})
	return sm
}

// Add adds or updates a symbol
func (sm *SymbolManager) Add(s *Symbol) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.symbols[s.Code] = s
}

// Get retrieves a symbol by code
func (sm *SymbolManager) Get(code string) *Symbol {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.symbols[code]
}

// SupportsDigits reports whether digit contracts can be traded on the symbol
func (sm *SymbolManager) SupportsDigits(code string) bool {
	s := sm.Get(code)
	return s != nil && s.SupportsTicks
}

// TickSymbols returns the codes of all tick-tradable symbols, sorted
func (sm *SymbolManager) TickSymbols() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var codes []string
	for code, s := range sm.symbols {
		if s.SupportsTicks {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// Count returns total number of symbols
func (sm *SymbolManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.symbols)
}
