package risk

import (
	"fmt"
	"strings"
)

// Level is the risk preset controlling recovery aggressiveness
type Level int

const (
	LevelLow Level = iota + 1
	LevelMedium
	LevelHigh
	LevelVeryHigh
)

type levelInfo struct {
	name       string
	multiplier float64
	maxLevels  int
}

var levels = map[Level]levelInfo{
	LevelLow:      {name: "LOW", multiplier: 1.5, maxLevels: 6},
	LevelMedium:   {name: "MEDIUM", multiplier: 1.8, maxLevels: 5},
	LevelHigh:     {name: "HIGH", multiplier: 2.1, maxLevels: 4},
	LevelVeryHigh: {name: "VERY_HIGH", multiplier: 2.5, maxLevels: 3},
}

func (l Level) String() string {
	if info, ok := levels[l]; ok {
		return info.name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Valid reports whether l is a known risk level
func (l Level) Valid() bool {
	_, ok := levels[l]
	return ok
}

// Multiplier returns the recovery stake multiplier
func (l Level) Multiplier() float64 {
	return levels[l].multiplier
}

// MaxRecoveryLevels returns how deep recovery may escalate before stopping
func (l Level) MaxRecoveryLevels() int {
	return levels[l].maxLevels
}

// ParseLevel accepts LOW, MEDIUM, HIGH, VERY_HIGH (case-insensitive, '-' or ' ' for '_')
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.NewReplacer("-", "_", " ", "_").Replace(name)
	for l, info := range levels {
		if info.name == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown risk level %q", s)
}
