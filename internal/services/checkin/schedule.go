package checkin

import "time"

const (
	baseReward     = 20
	decayStep      = 5
	minReward      = 5
	rewardedPerDay = 3
)

// RewardForIndex returns the points for the nth check-in of a calendar
// day (1-indexed, across all events). The first three decay 20, 15, 10;
// later check-ins still record attendance but earn nothing.
func RewardForIndex(n int) int64 {
	if n < 1 || n > rewardedPerDay {
		return 0
	}

	reward := int64(baseReward - (n-1)*decayStep)
	if reward < minReward {
		reward = minReward
	}

	return reward
}

// DayBounds returns the [start, end) interval of now's calendar date.
// Day boundaries are UTC everywhere; the decay schedule and the stored
// checked_in_at timestamps must agree on the same clock.
func DayBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return start, start.Add(24 * time.Hour)
}
