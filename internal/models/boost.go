package models

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchHit struct {
	FileName      string  `json:"fileName"`
	PageOrSection string  `json:"pageOrSection"`
	ChunkID       string  `json:"chunkId"`
	Score         float64 `json:"score"`
	TextSnippet   string  `json:"textSnippet"`
}

type SearchResponse struct {
	Query     string      `json:"query"`
	TotalHits int         `json:"totalHits"`
	Hits      []SearchHit `json:"hits"`
}

type ExplainRequest struct {
	Concept string `json:"concept"`
}

type ExplainResponse struct {
	Concept    string            `json:"concept"`
	OneLiner   string            `json:"oneLiner"`
	Simple     string            `json:"simple"`
	ExamReady  string            `json:"examReady"`
	Confidence Confidence        `json:"confidence"`
	Citations  []Citation        `json:"citations"`
	Evidence   []EvidenceSnippet `json:"evidence"`
}

type PlannerRequest struct {
	GoalMinutes int    `json:"goalMinutes"`
	Focus       string `json:"focus"`
}

type PlannerItem struct {
	Title           string            `json:"title"`
	DurationMinutes int               `json:"durationMinutes"`
	Task            string            `json:"task"`
	Citations       []Citation        `json:"citations"`
	Evidence        []EvidenceSnippet `json:"evidence"`
}

type PlannerResponse struct {
	GoalMinutes  int           `json:"goalMinutes"`
	TotalMinutes int           `json:"totalMinutes"`
	Plan         []PlannerItem `json:"plan"`
	Tips         []string      `json:"tips"`
}
