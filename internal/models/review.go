package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewRating string

const (
	RatingAgain ReviewRating = "again"
	RatingHard  ReviewRating = "hard"
	RatingGood  ReviewRating = "good"
	RatingEasy  ReviewRating = "easy"
)

// ReviewCardState is the scheduler's view of a card. The scheduler is a
// pure transform over this state so the storage layer can apply ratings
// atomically.
type ReviewCardState struct {
	Repetitions  int       `json:"repetitions"`
	IntervalDays int       `json:"intervalDays"`
	EaseFactor   float64   `json:"easeFactor"`
	Lapses       int       `json:"lapses"`
	DueAt        time.Time `json:"dueAt"`
}

// ReviewCard is one spaced-repetition card. At most one card exists per
// chunk per subject.
type ReviewCard struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"-"`
	SubjectID       uuid.UUID     `json:"-"`
	ChunkID         string        `json:"chunkId"`
	FileName        string        `json:"fileName"`
	PageOrSection   string        `json:"pageOrSection"`
	Prompt          string        `json:"prompt"`
	Answer          string        `json:"answer"`
	EvidenceSnippet string        `json:"evidenceSnippet"`
	DueAt           time.Time     `json:"dueAt"`
	Repetitions     int           `json:"repetitions"`
	IntervalDays    int           `json:"intervalDays"`
	EaseFactor      float64       `json:"easeFactor"`
	Lapses          int           `json:"lapses"`
	ReviewCount     int           `json:"reviewCount"`
	LastRating      *ReviewRating `json:"lastRating"`
	LastReviewedAt  *time.Time    `json:"-"`
}

// ReviewCardSeed is a freshly built card before persistence.
type ReviewCardSeed struct {
	ChunkID         string `json:"chunkId"`
	FileName        string `json:"fileName"`
	PageOrSection   string `json:"pageOrSection"`
	Prompt          string `json:"prompt"`
	Answer          string `json:"answer"`
	EvidenceSnippet string `json:"evidenceSnippet"`
}

type ReviewStats struct {
	TotalCards    int     `json:"totalCards"`
	DueCount      int     `json:"dueCount"`
	ReviewedToday int     `json:"reviewedToday"`
	NextDueAt     *string `json:"nextDueAt"`
}

type ReviewQueueResponse struct {
	Stats    ReviewStats  `json:"stats"`
	DueCards []ReviewCard `json:"dueCards"`
}

type ReviewSeedResponse struct {
	CreatedCards int          `json:"createdCards"`
	Stats        ReviewStats  `json:"stats"`
	DueCards     []ReviewCard `json:"dueCards"`
}

type RateCardRequest struct {
	Rating ReviewRating `json:"rating"`
}
