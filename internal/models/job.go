package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	Type         string          `json:"type"` // "file-ingestion" | "youtube-ingestion"
	ReferenceID  uuid.UUID       `json:"referenceId"`
	ConfigJSON   json.RawMessage `json:"config"`
	Status       string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	RetryCount   int             `json:"retryCount"`
	MaxRetries   int             `json:"maxRetries"`
	ErrorMessage *string         `json:"errorMessage"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt"`

	// Set by the worker while processing, not persisted.
	SectionsCount int `json:"-"`
	ChunksCount   int `json:"-"`
}

// WebSocket message types

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID    uuid.UUID `json:"jobId"`
	FileID   uuid.UUID `json:"fileId"`
	Step     int       `json:"step"`
	StepName string    `json:"stepName"`
}

type CompletedEvent struct {
	JobID         uuid.UUID `json:"jobId"`
	FileID        uuid.UUID `json:"fileId"`
	SectionsCount int       `json:"sectionsCount"`
	ChunksCount   int       `json:"chunksCount"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"jobId"`
	FileID       uuid.UUID `json:"fileId"`
	ErrorCode    string    `json:"errorCode"`
	ErrorMessage string    `json:"errorMessage"`
}

// API Error response

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
