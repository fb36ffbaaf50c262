package strategy

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CONTRACTS - Digit contract types and their payout table
// ═══════════════════════════════════════════════════════════════════════════════

// ContractType is a digit contract the strategy can predict
type ContractType int

const (
	ContractOver ContractType = iota + 1
	ContractUnder
	ContractMatch
	ContractDiffer
	ContractEven
	ContractOdd
)

// Estimated payout multipliers (profit per unit staked on a win)
const (
	PayoutOverUnder = 0.95
	PayoutEvenOdd   = 0.95
	PayoutDiffers   = 0.10
	PayoutMatches   = 9.0
)

// PredictionType groups contracts by what is being predicted
type PredictionType int

const (
	PredictionSingleDigit PredictionType = iota + 1
	PredictionEvenOdd
	PredictionOverUnder
)

type contractInfo struct {
	name       string
	short      string
	payout     float64
	prediction PredictionType
}

var contracts = map[ContractType]contractInfo{
	ContractOver:   {name: "DIGITOVER", short: "OVER", payout: PayoutOverUnder, prediction: PredictionOverUnder},
	ContractUnder:  {name: "DIGITUNDER", short: "UNDER", payout: PayoutOverUnder, prediction: PredictionOverUnder},
	ContractMatch:  {name: "DIGITMATCH", short: "MATCH", payout: PayoutMatches, prediction: PredictionSingleDigit},
	ContractDiffer: {name: "DIGITDIFF", short: "DIFFER", payout: PayoutDiffers, prediction: PredictionSingleDigit},
	ContractEven:   {name: "DIGITEVEN", short: "EVEN", payout: PayoutEvenOdd, prediction: PredictionEvenOdd},
	ContractOdd:    {name: "DIGITODD", short: "ODD", payout: PayoutEvenOdd, prediction: PredictionEvenOdd},
}

// String returns the broker contract name, e.g. DIGITOVER
func (c ContractType) String() string {
	if info, ok := contracts[c]; ok {
		return info.name
	}
	return fmt.Sprintf("CONTRACT(%d)", int(c))
}

// Valid reports whether c is one of the known contract types
func (c ContractType) Valid() bool {
	_, ok := contracts[c]
	return ok
}

// Payout returns the estimated payout multiplier
func (c ContractType) Payout() float64 {
	return contracts[c].payout
}

// PredictionType returns the prediction category of the contract
func (c ContractType) PredictionType() PredictionType {
	return contracts[c].prediction
}

// Wins settles the contract: does the exit digit win for this prediction?
func (c ContractType) Wins(prediction, digit int) bool {
	switch c {
	case ContractOver:
		return digit > prediction
	case ContractUnder:
		return digit < prediction
	case ContractMatch:
		return digit == prediction
	case ContractDiffer:
		return digit != prediction
	case ContractEven:
		return digit%2 == 0
	case ContractOdd:
		return digit%2 == 1
	}
	return false
}

// ParseContractType accepts both DIGITOVER and OVER style names
func ParseContractType(s string) (ContractType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for c, info := range contracts {
		if name == info.name || name == info.short {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown contract type %q", s)
}

func (p PredictionType) String() string {
	switch p {
	case PredictionSingleDigit:
		return "SINGLE_DIGIT"
	case PredictionEvenOdd:
		return "EVEN_ODD"
	case PredictionOverUnder:
		return "OVER_UNDER"
	}
	return fmt.Sprintf("PREDICTION(%d)", int(p))
}
