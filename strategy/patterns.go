package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/web3guy0/digitbot/feeds"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PATTERNS & SIGNAL GENERATION
// ═══════════════════════════════════════════════════════════════════════════════

type patterns struct {
	hot       []int
	cold      []int
	evenRatio float64
	oddRatio  float64
	pattern   string
}

// frequencies returns count/total per digit, uniform 0.1 before any tick
func (dp *DigitPad) frequencies() [10]float64 {
	var freq [10]float64
	if dp.totalTicks == 0 {
		for d := range freq {
			freq[d] = 0.1
		}
		return freq
	}

	total := float64(dp.totalTicks)
	for d, count := range dp.counts {
		freq[d] = float64(count) / total
	}
	return freq
}

// evenOddRatio returns (even, odd), 50/50 before any tick
func (dp *DigitPad) evenOddRatio() (float64, float64) {
	total := dp.evenCount + dp.oddCount
	if total == 0 {
		return 0.5, 0.5
	}
	return float64(dp.evenCount) / float64(total), float64(dp.oddCount) / float64(total)
}

func hotDigits(freq [10]float64) []int {
	hot := []int{}
	for d, f := range freq {
		if f >= HotThreshold {
			hot = append(hot, d)
		}
	}
	return hot
}

func coldDigits(freq [10]float64) []int {
	cold := []int{}
	for d, f := range freq {
		if f <= ColdThreshold {
			cold = append(cold, d)
		}
	}
	return cold
}

func joinDigits(digits []int) string {
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, ",")
}

func (dp *DigitPad) detectPatterns(freq [10]float64) patterns {
	p := patterns{
		hot:  hotDigits(freq),
		cold: coldDigits(freq),
	}
	p.evenRatio, p.oddRatio = dp.evenOddRatio()

	var tags []string
	if len(p.hot) > 0 {
		tags = append(tags, "HOT:"+joinDigits(p.hot))
	}
	if len(p.cold) > 0 {
		tags = append(tags, "COLD:"+joinDigits(p.cold))
	}
	if dp.currentStreak >= StreakThreshold {
		tags = append(tags, fmt.Sprintf("STREAK:%dx%d", dp.streakDigit, dp.currentStreak))
	}
	if p.evenRatio >= ParityDominance {
		tags = append(tags, "EVEN_DOMINANT")
	} else if p.oddRatio >= ParityDominance {
		tags = append(tags, "ODD_DOMINANT")
	}

	p.pattern = "BALANCED"
	if len(tags) > 0 {
		p.pattern = strings.Join(tags, "|")
	}
	return p
}

// generateSignals runs every detector; each one is independent
func (dp *DigitPad) generateSignals(freq [10]float64, p patterns) []Signal {
	signals := []Signal{}
	signals = append(signals, dp.coldSignals(freq, p.cold)...)
	signals = append(signals, dp.hotSignals(freq, p.hot)...)
	signals = append(signals, dp.paritySignals(p.evenRatio, p.oddRatio)...)
	signals = append(signals, dp.streakSignals()...)
	signals = append(signals, dp.zoneSignals()...)
	return signals
}

// coldSignals: a rarely seen digit is unlikely to be the exit digit
func (dp *DigitPad) coldSignals(freq [10]float64, cold []int) []Signal {
	var signals []Signal
	for _, d := range cold {
		conf := math.Min(0.90-freq[d]*5, 0.85)
		if conf < MinConfidence {
			continue
		}
		signals = append(signals, NewSignal(ContractDiffer).
			Prediction(d).
			Confidence(conf).
			Reason("Digit %d cold (%.1f%%), unlikely to appear", d, freq[d]*100).
			Strategy(digitPadName).
			Build())
	}
	return signals
}

// hotSignals: MATCH on frequent digits. Confidence tops out at 0.20, so these
// are listed but never selected as best.
func (dp *DigitPad) hotSignals(freq [10]float64, hot []int) []Signal {
	var signals []Signal
	for _, d := range hot {
		if freq[d] < HotThreshold {
			continue
		}
		conf := math.Min(0.10+(freq[d]-0.10)*2, 0.20)
		signals = append(signals, NewSignal(ContractMatch).
			Prediction(d).
			Confidence(conf).
			Reason("Digit %d hot (%.1f%%), higher match chance", d, freq[d]*100).
			Strategy(digitPadName).
			Build())
	}
	return signals
}

// paritySignals bets on the minority parity
func (dp *DigitPad) paritySignals(evenRatio, oddRatio float64) []Signal {
	imbalance := math.Abs(evenRatio - oddRatio)
	if imbalance < EvenOddImbalanceThreshold {
		return nil
	}

	conf := math.Min(0.55+imbalance/2, 0.70)
	if conf < MinConfidence {
		return nil
	}

	if evenRatio > oddRatio {
		return []Signal{NewSignal(ContractOdd).
			Prediction(1).
			Confidence(conf).
			Reason("Even dominant (%.1f%%), expecting odd reversion", evenRatio*100).
			Strategy(digitPadName).
			Build()}
	}
	return []Signal{NewSignal(ContractEven).
		Prediction(0).
		Confidence(conf).
		Reason("Odd dominant (%.1f%%), expecting even reversion", oddRatio*100).
		Strategy(digitPadName).
		Build()}
}

// streakSignals bets that a repeating digit's zone flips
func (dp *DigitPad) streakSignals() []Signal {
	if dp.currentStreak < StreakThreshold || dp.recent.Len() < 5 {
		return nil
	}

	conf := math.Min(0.55+float64(dp.currentStreak-StreakThreshold)*0.05, 0.70)
	if conf < MinConfidence {
		return nil
	}

	if feeds.IsLow(dp.streakDigit) {
		return []Signal{NewSignal(ContractOver).
			Prediction(4).
			Confidence(conf).
			Reason("Streak %dx low digit (%d), expect high", dp.currentStreak, dp.streakDigit).
			Strategy(digitPadName).
			Build()}
	}
	return []Signal{NewSignal(ContractUnder).
		Prediction(5).
		Confidence(conf).
		Reason("Streak %dx high digit (%d), expect low", dp.currentStreak, dp.streakDigit).
		Strategy(digitPadName).
		Build()}
}

// zoneSignals compares low (0-4) and high (5-9) digits over the last 20
func (dp *DigitPad) zoneSignals() []Signal {
	if dp.recent.Len() < ZoneWindow {
		return nil
	}

	low := 0
	for _, d := range dp.recent.Last(ZoneWindow) {
		if feeds.IsLow(d) {
			low++
		}
	}
	lowRatio := float64(low) / ZoneWindow
	highRatio := float64(ZoneWindow-low) / ZoneWindow

	imbalance := math.Abs(lowRatio - highRatio)
	if imbalance < ZoneImbalanceThreshold {
		return nil
	}

	conf := math.Min(0.55+imbalance/2, 0.70)
	if conf < MinConfidence {
		return nil
	}

	if lowRatio > highRatio {
		return []Signal{NewSignal(ContractOver).
			Prediction(4).
			Confidence(conf).
			Reason("Low zone dominant (%.1f%%), expecting high reversion", lowRatio*100).
			Strategy(digitPadName).
			Build()}
	}
	return []Signal{NewSignal(ContractUnder).
		Prediction(5).
		Confidence(conf).
		Reason("High zone dominant (%.1f%%), expecting low reversion", highRatio*100).
		Strategy(digitPadName).
		Build()}
}
