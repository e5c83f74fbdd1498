package strategies

import (
	"time"

	"gitlab.com/ghwlabs/gotradebot/metrics"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// Mood is the spread trader's hysteresis-smoothed market sentiment.
type Mood string

const (
	MoodSteady     Mood = "Steady"
	MoodCautious   Mood = "Cautious"
	MoodOptimistic Mood = "Optimistic"
	MoodWaning     Mood = "Waning"
)

// MoodTracker commits a mood change only after the same candidate has
// been observed on enough consecutive ticks and a minimum dwell has
// elapsed since the last change, so the trader cannot thrash between
// moods on noise.
type MoodTracker struct {
	confirmTicks int
	dwell        time.Duration

	current    Mood
	candidate  Mood
	streak     int
	lastChange time.Time
}

func NewMoodTracker(confirmTicks int, dwell time.Duration) *MoodTracker {
	return &MoodTracker{
		confirmTicks: confirmTicks,
		dwell:        dwell,
		current:      MoodSteady,
		candidate:    MoodSteady,
	}
}

func (mt *MoodTracker) Current() Mood {
	return mt.current
}

// Observe feeds one tick's candidate and returns the committed mood.
func (mt *MoodTracker) Observe(candidate Mood, now time.Time) Mood {
	if candidate == mt.current {
		mt.candidate = candidate
		mt.streak = 0
		return mt.current
	}

	if candidate == mt.candidate {
		mt.streak++
	} else {
		mt.candidate = candidate
		mt.streak = 1
	}

	if mt.streak >= mt.confirmTicks && now.Sub(mt.lastChange) >= mt.dwell {
		mt.current = candidate
		mt.lastChange = now
		mt.streak = 0
		metrics.MoodChanges.WithLabelValues(string(candidate)).Inc()
	}
	return mt.current
}

// Force commits a mood immediately, bypassing hysteresis. Used when a
// position had to be abandoned and optimism is no longer warranted.
func (mt *MoodTracker) Force(mood Mood, now time.Time) {
	if mt.current != mood {
		metrics.MoodChanges.WithLabelValues(string(mood)).Inc()
	}
	mt.current = mood
	mt.candidate = mood
	mt.streak = 0
	mt.lastChange = now
}

// classifyMood derives the tick's candidate mood from the trend
// windows. Broad decline outranks short-term enthusiasm.
func classifyMood(trend models.TrendSnapshot) Mood {
	if trend.Of("extended") == models.TrendWaning && trend.Of("long") == models.TrendWaning {
		return MoodWaning
	}
	if trend.Of("long") == models.TrendWaning || trend.Of("mid") == models.TrendWaning {
		return MoodCautious
	}
	if trend.Of("short") == models.TrendWaxing && trend.Of("acute") == models.TrendWaxing {
		return MoodOptimistic
	}
	return MoodSteady
}

// spacingScale widens or tightens the minimum distance between wagers
// in a tier: an optimistic trader packs them closer, a cautious one
// spreads them out.
func spacingScale(mood Mood) float64 {
	switch mood {
	case MoodOptimistic:
		return 0.5
	case MoodCautious:
		return 2.0
	default:
		return 1.0
	}
}
