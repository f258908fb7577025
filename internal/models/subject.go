package models

import (
	"time"

	"github.com/google/uuid"
)

// Subject is one of the user's three note collections. Slots 1-3 are
// reused when a subject is deleted.
type Subject struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Slot      int       `json:"slot"`
	FileCount int       `json:"fileCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateSubjectRequest struct {
	Name string `json:"name"`
}

// NoteFile tracks one uploaded document or imported transcript and its
// ingestion status.
type NoteFile struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"-"`
	SubjectID     uuid.UUID `json:"subjectId"`
	FileName      string    `json:"fileName"`
	FileType      string    `json:"fileType"` // "pdf" | "txt" | "md" | "docx" | "youtube"
	StoragePath   *string   `json:"-"`
	ParseStatus   string    `json:"parseStatus"` // "pending" | "parsed" | "error"
	ErrorMessage  string    `json:"errorMessage"`
	SectionsCount int       `json:"sectionsCount"`
	ChunksCount   int       `json:"chunksCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ParsedSection is a span of extracted text with its provenance label
// (a page number, a heading, or a transcript time range).
type ParsedSection struct {
	PageOrSection string `json:"pageOrSection"`
	Text          string `json:"text"`
}
