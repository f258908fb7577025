package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/middleware"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/services"
)

const maxUploadBytes = 20 * 1024 * 1024

type fileRepository interface {
	Create(ctx context.Context, f *models.NoteFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.NoteFile, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]models.NoteFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobCreator interface {
	Create(ctx context.Context, j *models.Job) error
}

type chunkDeleter interface {
	DeleteByFile(ctx context.Context, fileID uuid.UUID) error
}

type FileHandler struct {
	subjectRepo subjectRepository
	fileRepo    fileRepository
	chunkRepo   chunkDeleter
	jobRepo     jobCreator
	extract     *services.FileExtractService
	redis       *redis.Client
	storagePath string
}

func NewFileHandler(
	subjectRepo subjectRepository,
	fileRepo fileRepository,
	chunkRepo chunkDeleter,
	jobRepo jobCreator,
	extract *services.FileExtractService,
	redisClient *redis.Client,
	storagePath string,
) *FileHandler {
	return &FileHandler{
		subjectRepo: subjectRepo,
		fileRepo:    fileRepo,
		chunkRepo:   chunkRepo,
		jobRepo:     jobRepo,
		extract:     extract,
		redis:       redisClient,
		storagePath: storagePath,
	}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	if r.ContentLength > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 20MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !h.extract.SupportedExtension(ext) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "Supported formats: pdf, txt, md, docx", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	fileID := uuid.New()
	relPath := filepath.Join("users", userID.String(), fileID.String()+ext)
	absPath := filepath.Join(h.storagePath, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	dst, err := os.Create(absPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(absPath)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	dst.Close()

	noteFile := &models.NoteFile{
		ID:          fileID,
		UserID:      userID,
		SubjectID:   subject.ID,
		FileName:    header.Filename,
		FileType:    strings.TrimPrefix(ext, "."),
		StoragePath: &absPath,
	}
	if err := h.fileRepo.Create(r.Context(), noteFile); err != nil {
		os.Remove(absPath)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create file record", r))
		return
	}

	jobID, err := h.enqueueJob(r.Context(), userID, noteFile.ID, "file-ingestion", nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue ingestion", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"file":  noteFile,
		"jobId": jobID,
	})
}

func (h *FileHandler) ImportYouTube(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	videoID := services.ParseVideoID(req.URL)
	if videoID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid YouTube URL", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	noteFile := &models.NoteFile{
		UserID:    userID,
		SubjectID: subject.ID,
		FileName:  "YouTube-" + videoID,
		FileType:  "youtube",
	}
	if err := h.fileRepo.Create(r.Context(), noteFile); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create file record", r))
		return
	}

	config, _ := json.Marshal(map[string]string{"url": req.URL, "videoId": videoID})
	jobID, err := h.enqueueJob(r.Context(), userID, noteFile.ID, "youtube-ingestion", config)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue ingestion", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"file":  noteFile,
		"jobId": jobID,
	})
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	files, err := h.fileRepo.ListBySubject(r.Context(), subject.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load files", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subject, ok := resolveSubject(w, r, h.subjectRepo)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid file ID", r))
		return
	}

	noteFile, err := h.fileRepo.GetByID(r.Context(), fileID)
	if err != nil || noteFile.SubjectID != subject.ID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "File not found", r))
		return
	}

	if err := h.chunkRepo.DeleteByFile(r.Context(), noteFile.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete file", r))
		return
	}
	if err := h.fileRepo.Delete(r.Context(), noteFile.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete file", r))
		return
	}
	if noteFile.StoragePath != nil {
		os.Remove(*noteFile.StoragePath)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}

func (h *FileHandler) enqueueJob(ctx context.Context, userID, fileID uuid.UUID, jobType string, config json.RawMessage) (uuid.UUID, error) {
	job := &models.Job{
		UserID:      userID,
		Type:        jobType,
		ReferenceID: fileID,
		ConfigJSON:  config,
	}
	if err := h.jobRepo.Create(ctx, job); err != nil {
		return uuid.Nil, err
	}

	jobBytes, _ := json.Marshal(job)
	if err := h.redis.LPush(ctx, "queue:"+jobType, string(jobBytes)).Err(); err != nil {
		return uuid.Nil, err
	}
	return job.ID, nil
}
