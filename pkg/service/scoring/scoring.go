package scoring

import "github.com/secmon-lab/riskregister/pkg/domain/types"

// Probability and impact are confined to a 5x5 matrix, so scores live in
// [1,25].
const (
	MinLevel = 1
	MaxLevel = 5
	MaxScore = MaxLevel * MaxLevel
)

// Clamp bounds a probability or impact level to [MinLevel, MaxLevel].
// Rounding of non-integer input is the caller's responsibility.
func Clamp(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Score returns the risk score: the product of the independently clamped
// probability and impact. Pure and total; there is no failure mode.
func Score(probability, impact int) int {
	return Clamp(probability) * Clamp(impact)
}

// SeverityOf maps a risk score to its severity tier. Thresholds are
// low <=5, medium 6-12, high >12. All derived stats depend on this single
// mapping; do not introduce a second threshold set elsewhere.
func SeverityOf(score int) types.Severity {
	switch {
	case score <= 5:
		return types.SeverityLow
	case score <= 12:
		return types.SeverityMedium
	default:
		return types.SeverityHigh
	}
}
