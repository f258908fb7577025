package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

const (
	geminiModelName    = "gemini-3-flash-preview"
	geminiEmbedModel   = "text-embedding-004"
	embeddingBatchSize = 24
)

// GeminiService wraps the Gemini API for completions and embeddings.
// Without an API key the service runs in demo mode: completions report
// ErrLLMDisabled and embeddings come from the local hashing embedder, so
// the whole pipeline stays functional offline.
type GeminiService struct {
	client   *genai.Client
	rateChan chan struct{} // Token bucket

	// Indirection over the batch embed call so the degradation path is
	// testable without a reachable API.
	embedBatch func(ctx context.Context, texts []string) ([][]float64, error)
}

// ErrLLMDisabled is returned by Complete when no API key is configured.
var ErrLLMDisabled = fmt.Errorf("llm completions disabled: no API key configured")

func NewGeminiService(apiKey string, concurrentReqs int) (*GeminiService, error) {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	if apiKey == "" {
		return &GeminiService{rateChan: rateChan}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	s := &GeminiService{
		client:   client,
		rateChan: rateChan,
	}
	s.embedBatch = s.apiEmbedBatch
	return s, nil
}

// Enabled reports whether real LLM calls are available.
func (s *GeminiService) Enabled() bool {
	return s.client != nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Complete generates a completion for a system/user prompt pair.
func (s *GeminiService) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	if !s.Enabled() {
		return "", ErrLLMDisabled
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(geminiModelName)
	model.SetTemperature(temperature)
	model.SetTopP(0.95)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return strings.TrimSpace(stripCodeFences(extractText(resp))), nil
}

// EmbedTexts returns one vector per input text and never fails: in demo
// mode, and whenever the embedding API errors or returns a short batch,
// the affected texts get local hashing vectors instead. The retriever
// already handles mixed dimensions, so a partial outage degrades
// retrieval quality without failing ingestion.
func (s *GeminiService) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if !s.Enabled() {
		return localVectors(texts), nil
	}

	if err := s.acquireRate(ctx); err != nil {
		return localVectors(texts), nil
	}
	defer s.releaseRate()

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := texts[start:end]
		batchVectors, err := s.embedBatch(ctx, batch)
		if err != nil || len(batchVectors) != len(batch) {
			batchVectors = localVectors(batch)
		}
		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}

func (s *GeminiService) apiEmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	embedModel := s.client.EmbeddingModel(geminiEmbedModel)

	batch := embedModel.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	resp, err := embedModel.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("Gemini embedding error: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Gemini returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		vector := make([]float64, len(embedding.Values))
		for j, v := range embedding.Values {
			vector[j] = float64(v)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func localVectors(texts []string) [][]float64 {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = retrieval.LocalEmbedding(text, retrieval.LocalEmbedDim)
	}
	return vectors
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// stripCodeFences removes a surrounding markdown code fence if present.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
