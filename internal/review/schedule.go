// Package review implements the spaced-repetition scheduler and card
// seeding. The scheduler is an SM-2 variant: a pure function of card
// state and rating, so repositories can apply it inside a transaction.
package review

import (
	"math"
	"time"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

const (
	minEase = 1.3
	maxEase = 3.2
)

func clampEase(value float64) float64 {
	if value < minEase {
		return minEase
	}
	if value > maxEase {
		return maxEase
	}
	return value
}

func toQuality(rating models.ReviewRating) int {
	switch rating {
	case models.RatingAgain:
		return 1
	case models.RatingHard:
		return 3
	case models.RatingGood:
		return 4
	default:
		return 5
	}
}

// ValidRating reports whether the rating is one of the four accepted
// values.
func ValidRating(rating models.ReviewRating) bool {
	switch rating {
	case models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy:
		return true
	}
	return false
}

// ScheduleNextReview applies a rating to a card's state and returns the
// new state. "again" is a lapse: the card resets and comes back in ten
// minutes. The other ratings grow the interval, scaled by the ease
// factor, which drifts within [1.3, 3.2] based on answer quality.
func ScheduleNextReview(state models.ReviewCardState, rating models.ReviewRating, now time.Time) models.ReviewCardState {
	repetitions := state.Repetitions
	if repetitions < 0 {
		repetitions = 0
	}
	intervalDays := state.IntervalDays
	if intervalDays < 0 {
		intervalDays = 0
	}
	ease := state.EaseFactor
	if ease == 0 {
		ease = 2.5
	}
	ease = clampEase(ease)
	lapses := state.Lapses
	if lapses < 0 {
		lapses = 0
	}

	if rating == models.RatingAgain {
		return models.ReviewCardState{
			Repetitions:  0,
			IntervalDays: 0,
			EaseFactor:   clampEase(ease - 0.2),
			Lapses:       lapses + 1,
			DueAt:        now.Add(10 * time.Minute),
		}
	}

	quality := toQuality(rating)

	nextInterval := 1
	switch {
	case repetitions <= 0:
		if rating == models.RatingEasy {
			nextInterval = 2
		}
	case repetitions == 1:
		switch rating {
		case models.RatingHard:
			nextInterval = 3
		case models.RatingEasy:
			nextInterval = 8
		default:
			nextInterval = 6
		}
	default:
		base := intervalDays
		if base < 1 {
			base = 1
		}
		multiplier := 1.0
		if rating == models.RatingHard {
			multiplier = 0.8
		} else if rating == models.RatingEasy {
			multiplier = 1.3
		}
		nextInterval = int(math.Round(float64(base) * ease * multiplier))
		if nextInterval < 1 {
			nextInterval = 1
		}
	}

	adjustment := 0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02)

	return models.ReviewCardState{
		Repetitions:  repetitions + 1,
		IntervalDays: nextInterval,
		EaseFactor:   clampEase(ease + adjustment),
		Lapses:       lapses,
		DueAt:        now.Add(time.Duration(nextInterval) * 24 * time.Hour),
	}
}
