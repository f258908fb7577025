package models

type StudyMCQ struct {
	Question      string            `json:"question"`
	Options       []string          `json:"options"`
	CorrectOption int               `json:"correctOption"`
	Explanation   string            `json:"explanation"`
	Citations     []Citation        `json:"citations"`
	Evidence      []EvidenceSnippet `json:"evidence"`
}

type StudyShortAnswer struct {
	Question    string            `json:"question"`
	ModelAnswer string            `json:"modelAnswer"`
	Citations   []Citation        `json:"citations"`
	Evidence    []EvidenceSnippet `json:"evidence"`
}

type StudyFlashcard struct {
	Front     string            `json:"front"`
	Back      string            `json:"back"`
	Citations []Citation        `json:"citations"`
	Evidence  []EvidenceSnippet `json:"evidence"`
}

type StudyPack struct {
	Difficulty   string             `json:"difficulty"` // "Easy" | "Medium" | "Hard"
	MCQs         []StudyMCQ         `json:"mcqs"`
	ShortAnswers []StudyShortAnswer `json:"shortAnswers"`
	Flashcards   []StudyFlashcard   `json:"flashcards"`
}

type GradeRequest struct {
	StudyPack    StudyPack `json:"studyPack"`
	MCQAnswers   []int     `json:"mcqAnswers"`
	ShortAnswers []string  `json:"shortAnswers"`
}

type GradeBreakdownItem struct {
	Type         string  `json:"type"` // "mcq" | "short"
	Question     string  `json:"question"`
	AwardedMarks float64 `json:"awardedMarks"`
	MaxMarks     float64 `json:"maxMarks"`
	Feedback     string  `json:"feedback"`
}

type GradeMCQSummary struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Marks   int `json:"marks"`
}

type GradeShortSummary struct {
	AverageSimilarity float64 `json:"averageSimilarity"`
	Total             int     `json:"total"`
	Marks             float64 `json:"marks"`
}

type GradeResponse struct {
	TotalMarks    float64              `json:"totalMarks"`
	ObtainedMarks float64              `json:"obtainedMarks"`
	Percentage    float64              `json:"percentage"`
	MCQ           GradeMCQSummary      `json:"mcq"`
	ShortAnswers  GradeShortSummary    `json:"shortAnswers"`
	Breakdown     []GradeBreakdownItem `json:"breakdown"`
}
