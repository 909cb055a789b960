package cache

import (
	"time"
)

// UntilNextHour は loc における次の hour 時ちょうどまでの期間を返します。
// 価格プロバイダの日次更新に合わせてキャッシュを失効させるために使います。
func UntilNextHour(now time.Time, hour int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)

	// 今日の指定時刻を過ぎている場合は翌日
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// DailyRefreshTTL は毎日 hour 時に失効する TTLFunc を返します。
func DailyRefreshTTL(hour int, loc *time.Location) TTLFunc {
	return func() time.Duration { return UntilNextHour(time.Now(), hour, loc) }
}
