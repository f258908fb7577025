package models

type AiLabConcept struct {
	Title     string            `json:"title"`
	Summary   string            `json:"summary"`
	Citations []Citation        `json:"citations"`
	Evidence  []EvidenceSnippet `json:"evidence"`
}

type AiLabFlashcard struct {
	Front     string            `json:"front"`
	Back      string            `json:"back"`
	Citations []Citation        `json:"citations"`
	Evidence  []EvidenceSnippet `json:"evidence"`
}

type AiLabRevisionTask struct {
	Day       int               `json:"day"`
	Focus     string            `json:"focus"`
	Task      string            `json:"task"`
	Citations []Citation        `json:"citations"`
	Evidence  []EvidenceSnippet `json:"evidence"`
}

type AiLabPack struct {
	KeyConcepts  []AiLabConcept      `json:"keyConcepts"`
	Flashcards   []AiLabFlashcard    `json:"flashcards"`
	RevisionPlan []AiLabRevisionTask `json:"revisionPlan"`
}

type CoachRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type CoachResponse struct {
	Score          int               `json:"score"`
	Verdict        string            `json:"verdict"` // "Excellent" | "Good" | "Needs Work"
	Feedback       string            `json:"feedback"`
	MissingPoints  []string          `json:"missingPoints"`
	ImprovedAnswer string            `json:"improvedAnswer"`
	Citations      []Citation        `json:"citations"`
	Evidence       []EvidenceSnippet `json:"evidence"`
}
