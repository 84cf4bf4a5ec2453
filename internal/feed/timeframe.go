package feed

import "time"

// Timeframe bounds the trending window.
type Timeframe string

const (
	TimeframeHour    Timeframe = "1h"
	TimeframeSixHour Timeframe = "6h"
	TimeframeDay     Timeframe = "24h"
	TimeframeWeek    Timeframe = "7d"
)

var timeframeDurations = map[Timeframe]time.Duration{
	TimeframeHour:    time.Hour,
	TimeframeSixHour: 6 * time.Hour,
	TimeframeDay:     24 * time.Hour,
	TimeframeWeek:    7 * 24 * time.Hour,
}

// ParseTimeframe falls back to 24h for unknown values.
func ParseTimeframe(s string) Timeframe {
	if _, ok := timeframeDurations[Timeframe(s)]; ok {
		return Timeframe(s)
	}
	return TimeframeDay
}

func (t Timeframe) Duration() time.Duration {
	if d, ok := timeframeDurations[t]; ok {
		return d
	}
	return timeframeDurations[TimeframeDay]
}

func (t Timeframe) Since(now time.Time) time.Time {
	return now.Add(-t.Duration())
}

const (
	// RecentOrder is the feed order.
	RecentOrder = "posts.created_at DESC"

	// TrendingOrder ranks by engagement, most recent first on ties.
	TrendingOrder = "posts.likes_count DESC, posts.comments_count DESC, posts.shares_count DESC, posts.created_at DESC"
)
