package strategy

import (
	"sort"

	"github.com/web3guy0/digitbot/feeds"
)

// ═══════════════════════════════════════════════════════════════════════════════
// DIGITPAD STRATEGY - Digit frequency analysis
// ═══════════════════════════════════════════════════════════════════════════════
//
// Tracks the last digit of every tick (price quoted to 2 decimals) and derives:
//   - per-digit frequency and hot/cold digits
//   - even/odd balance
//   - same-digit streaks
//   - low (0-4) vs high (5-9) zone balance over the last 20 digits
//
// Every detector emits mean-reversion contracts. Best signal ranking:
//   score = confidence * (1 + payout/10), minimum confidence 60%
//
// Counters are all-time since the last Reset; only the histories are bounded.
//
// ═══════════════════════════════════════════════════════════════════════════════

const (
	MinTicksRequired = 50
	MaxTickHistory   = 500
	RecentWindow     = 50

	HotThreshold  = 0.15
	ColdThreshold = 0.05

	MinConfidence  = 0.60
	HighConfidence = 0.75

	StreakThreshold           = 3
	EvenOddImbalanceThreshold = 0.25
	ParityDominance           = 0.60

	ZoneWindow             = 20
	ZoneImbalanceThreshold = 0.30
)

const digitPadName = "digitpad"

// DigitPad is the digit frequency signal generator
type DigitPad struct {
	prices *feeds.Ring[float64]
	digits *feeds.Ring[int]
	recent *feeds.Ring[int]

	counts     [10]int
	totalTicks int

	lastDigit     int
	currentStreak int
	streakDigit   int

	evenCount int
	oddCount  int

	observer Observer
}

// NewDigitPad creates an empty DigitPad strategy
func NewDigitPad(opts ...Option) *DigitPad {
	dp := &DigitPad{
		prices:      feeds.NewRing[float64](MaxTickHistory),
		digits:      feeds.NewRing[int](MaxTickHistory),
		recent:      feeds.NewRing[int](RecentWindow),
		lastDigit:   -1,
		streakDigit: -1,
	}
	for _, opt := range opts {
		opt(dp)
	}
	dp.emit(Event{Kind: EventCreated})
	return dp
}

// Name returns the strategy identifier
func (dp *DigitPad) Name() string {
	return digitPadName
}

// AddTick ingests a price. Invalid prices (NaN, Inf, <= 0) are rejected
// without touching any state and return (-1, false).
func (dp *DigitPad) AddTick(price float64) (int, bool) {
	if !feeds.ValidPrice(price) {
		dp.emit(Event{Kind: EventRejected, Price: price, Digit: -1})
		return -1, false
	}

	digit := feeds.LastDigit(price)

	dp.prices.Push(price)
	dp.digits.Push(digit)
	dp.recent.Push(digit)
	dp.totalTicks++
	dp.counts[digit]++

	if feeds.IsEven(digit) {
		dp.evenCount++
	} else {
		dp.oddCount++
	}

	dp.updateStreak(digit)

	dp.emit(Event{Kind: EventTick, Price: price, Digit: digit})
	return digit, true
}

func (dp *DigitPad) updateStreak(digit int) {
	if digit == dp.lastDigit {
		dp.currentStreak++
	} else {
		dp.currentStreak = 1
		dp.streakDigit = digit
	}
	dp.lastDigit = digit
}

// Analyze runs the full analysis. It returns false until MinTicksRequired
// ticks have been accepted.
func (dp *DigitPad) Analyze() (*AnalysisResult, bool) {
	if dp.totalTicks < MinTicksRequired {
		return nil, false
	}

	freq := dp.frequencies()
	p := dp.detectPatterns(freq)
	signals := dp.generateSignals(freq, p)

	result := &AnalysisResult{
		Signals:       signals,
		Best:          selectBest(signals),
		Frequencies:   freq,
		EvenRatio:     p.evenRatio,
		OddRatio:      p.oddRatio,
		Pattern:       p.pattern,
		HotDigits:     p.hot,
		ColdDigits:    p.cold,
		TickCount:     dp.totalTicks,
		CurrentStreak: dp.currentStreak,
		StreakDigit:   dp.streakDigit,
	}

	dp.emit(Event{Kind: EventAnalysis, Result: result})
	return result, true
}

// selectBest ranks by score and returns the top signal meeting MinConfidence
func selectBest(signals []Signal) *Signal {
	if len(signals) == 0 {
		return nil
	}

	ranked := make([]Signal, len(signals))
	copy(ranked, signals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	for _, s := range ranked {
		if s.Confidence >= MinConfidence {
			best := s
			return &best
		}
	}
	return nil
}

// BestSignal returns the signal to trade, if any
func (dp *DigitPad) BestSignal() (*Signal, bool) {
	result, ok := dp.Analyze()
	if !ok || result.Best == nil {
		return nil, false
	}
	return result.Best, true
}

// Heatmap returns the per-digit frequency
func (dp *DigitPad) Heatmap() [10]float64 {
	return dp.frequencies()
}

// HotDigits returns digits at or above HotThreshold
func (dp *DigitPad) HotDigits() []int {
	return hotDigits(dp.frequencies())
}

// ColdDigits returns digits at or below ColdThreshold
func (dp *DigitPad) ColdDigits() []int {
	return coldDigits(dp.frequencies())
}

// Stats returns the current strategy statistics
func (dp *DigitPad) Stats() Stats {
	freq := dp.frequencies()
	p := dp.detectPatterns(freq)

	return Stats{
		TickCount:     dp.totalTicks,
		Frequencies:   freq,
		EvenRatio:     p.evenRatio,
		OddRatio:      p.oddRatio,
		HotDigits:     p.hot,
		ColdDigits:    p.cold,
		CurrentStreak: dp.currentStreak,
		StreakDigit:   dp.streakDigit,
		LastDigit:     dp.lastDigit,
		Pattern:       p.pattern,
		Ready:         dp.totalTicks >= MinTicksRequired,
	}
}

// TotalTicks returns the number of accepted ticks since the last reset
func (dp *DigitPad) TotalTicks() int {
	return dp.totalTicks
}

// Counts returns the all-time per-digit counts
func (dp *DigitPad) Counts() [10]int {
	return dp.counts
}

// Digits returns the retained digit history, oldest first
func (dp *DigitPad) Digits() []int {
	return dp.digits.Values()
}

// Prices returns the retained price history, oldest first
func (dp *DigitPad) Prices() []float64 {
	return dp.prices.Values()
}

// Reset clears all state back to a freshly constructed strategy
func (dp *DigitPad) Reset() {
	dp.prices.Clear()
	dp.digits.Clear()
	dp.recent.Clear()

	dp.counts = [10]int{}
	dp.totalTicks = 0

	dp.lastDigit = -1
	dp.currentStreak = 0
	dp.streakDigit = -1

	dp.evenCount = 0
	dp.oddCount = 0

	dp.emit(Event{Kind: EventReset})
}
