package ownership

import (
	"log"
	"math"
	"time"
)

// DefaultVestingPeriod is the number of days it takes for a member to fully
// vest.
const DefaultVestingPeriod = 730

// Vesting returns the fraction of its claim that an entity who joined on
// joinDate has vested by now. The result is clamped to [0, 1]; a date before
// the join date vests nothing.
func Vesting(joinDate, now time.Time, period int) float64 {
	if period <= 0 {
		log.Panicf("vesting period must be positive, got %d", period)
	}

	elapsed := max(0, elapsedDays(joinDate, now))

	return math.Min(1, float64(elapsed)/float64(period))
}

// elapsedDays returns the number of whole days from `from` to `to`, rounded
// towards negative infinity.
func elapsedDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
