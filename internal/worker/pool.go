package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/ingest"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/repository"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/services"
)

const maxJobRetries = 3

type Pool struct {
	redis       *redis.Client
	gemini      *services.GeminiService
	youtube     *services.YouTubeService
	fileExtract *services.FileExtractService
	jobRepo     *repository.JobRepo
	fileRepo    *repository.FileRepo
	chunkRepo   *repository.ChunkRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	gemini *services.GeminiService,
	youtube *services.YouTubeService,
	fileExtract *services.FileExtractService,
	jobRepo *repository.JobRepo,
	fileRepo *repository.FileRepo,
	chunkRepo *repository.ChunkRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		gemini:      gemini,
		youtube:     youtube,
		fileExtract: fileExtract,
		jobRepo:     jobRepo,
		fileRepo:    fileRepo,
		chunkRepo:   chunkRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{
		"queue:file-ingestion",
		"queue:youtube-ingestion",
	}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d ingestion workers", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// One worker per job
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)
		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		var processErr error
		switch job.Type {
		case "file-ingestion":
			processErr = p.processFileIngestion(ctx, &job)
		case "youtube-ingestion":
			processErr = p.processYouTubeIngestion(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processFileIngestion(ctx context.Context, job *models.Job) error {
	noteFile, err := p.fileRepo.GetByID(ctx, job.ReferenceID)
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}
	if noteFile.StoragePath == nil || *noteFile.StoragePath == "" {
		return fmt.Errorf("file %s has no storage path", noteFile.ID)
	}

	p.publishStatus(ctx, job, noteFile.ID, 1, "Parsing document")

	sections, err := p.fileExtract.ExtractSections(*noteFile.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", noteFile.FileName, err)
	}

	return p.ingestSections(ctx, job, noteFile, sections)
}

func (p *Pool) processYouTubeIngestion(ctx context.Context, job *models.Job) error {
	noteFile, err := p.fileRepo.GetByID(ctx, job.ReferenceID)
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	var config struct {
		URL string `json:"url"`
	}
	json.Unmarshal(job.ConfigJSON, &config)
	if config.URL == "" {
		return fmt.Errorf("youtube job %s has no URL", job.ID)
	}

	p.publishStatus(ctx, job, noteFile.ID, 1, "Fetching transcript")

	video, err := p.youtube.FetchVideoSections(config.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch transcript: %w", err)
	}

	return p.ingestSections(ctx, job, noteFile, video.Sections)
}

// ingestSections is the shared back half of ingestion: chunk, embed,
// store, mark parsed.
func (p *Pool) ingestSections(ctx context.Context, job *models.Job, noteFile *models.NoteFile, sections []models.ParsedSection) error {
	p.publishStatus(ctx, job, noteFile.ID, 2, "Chunking text")

	chunked := ingest.ChunkSections(sections, ingest.ChunkingOptions{
		MaxChars:     700,
		OverlapChars: 120,
		MinChars:     60,
	})
	if len(chunked) == 0 {
		return fmt.Errorf("No text content found in this file.")
	}

	p.publishStatus(ctx, job, noteFile.ID, 3, "Embedding chunks")

	texts := make([]string, len(chunked))
	for i, chunk := range chunked {
		texts[i] = chunk.Text
	}
	embeddings, err := p.gemini.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunked) {
		return fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(chunked), len(embeddings))
	}

	rows := make([]models.ChunkRow, len(chunked))
	for i, chunk := range chunked {
		rows[i] = models.ChunkRow{
			UserID:        noteFile.UserID,
			SubjectID:     noteFile.SubjectID,
			FileID:        noteFile.ID,
			FileName:      noteFile.FileName,
			PageOrSection: chunk.PageOrSection,
			ChunkID:       fmt.Sprintf("%s-%d", noteFile.ID, i+1),
			Text:          chunk.Text,
			Embedding:     embeddings[i],
		}
	}

	// A retried job may have partially inserted chunks on an earlier attempt.
	if err := p.chunkRepo.DeleteByFile(ctx, noteFile.ID); err != nil {
		return fmt.Errorf("failed to clear previous chunks: %w", err)
	}
	if err := p.chunkRepo.InsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	if err := p.fileRepo.MarkParsed(ctx, noteFile.ID, len(sections), len(rows)); err != nil {
		return fmt.Errorf("failed to mark file parsed: %w", err)
	}

	job.SectionsCount = len(sections)
	job.ChunksCount = len(rows)
	return nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")

	p.publish(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:         job.ID,
			FileID:        job.ReferenceID,
			SectionsCount: job.SectionsCount,
			ChunksCount:   job.ChunksCount,
		},
	})

	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < maxJobRetries {
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), "queue:"+job.Type, string(jobBytes))
		})
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
	p.fileRepo.MarkError(ctx, job.ReferenceID, errMsg)

	p.publish(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			FileID:       job.ReferenceID,
			ErrorCode:    "INGESTION_FAILED",
			ErrorMessage: errMsg,
		},
	})
}

func (p *Pool) publishStatus(ctx context.Context, job *models.Job, fileID uuid.UUID, step int, stepName string) {
	p.publish(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			FileID:   fileID,
			Step:     step,
			StepName: stepName,
		},
	})
}

func (p *Pool) publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	p.redis.Publish(ctx, "user_updates:"+userID.String(), string(data))
}
