package utils

// GoalAttainmentPercent returns min(100, 100*actual/goal) using integer
// division. A zero goal disables the metric and contributes 0.
func GoalAttainmentPercent(actual, goal int) int {
	if goal <= 0 {
		return 0
	}
	percent := 100 * actual / goal
	if percent > 100 {
		percent = 100
	}
	return percent
}

// AveragePercent averages the three attainment percentages with truncating
// division.
func AveragePercent(sleep, water, meditation int) int {
	return (sleep + water + meditation) / 3
}

// NextWellnessScore applies the smoothing recurrence:
//
//	new = old/10 + (avg/100)*90
//
// All divisions truncate toward zero, matching the ledger's historical
// arithmetic bit for bit. Note the ordering: avg/100 is 0 for any average
// below 100, so the 90-weighted term only fires at full attainment. A
// multiply-before-divide variant (avg*90/100) would behave very differently;
// changing it is a product decision, not a refactor.
func NextWellnessScore(oldScore, averagePercent int) int {
	return oldScore/10 + averagePercent/100*90
}

// DecayedScore subtracts the flat missed-logging penalty, floored at zero.
func DecayedScore(oldScore int) int {
	next := oldScore - 5
	if next < 0 {
		next = 0
	}
	return next
}
