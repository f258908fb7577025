// Package grading marks study pack submissions fully offline. Grading
// is deterministic: the same submission always produces the same marks.
package grading

import (
	"fmt"
	"math"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

const (
	mcqMarkPerQuestion   = 1.0
	shortMarkPerQuestion = 5.0
)

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// GradeStudySubmission scores a submitted study pack attempt. MCQs are
// one mark each on exact option match. Short answers earn up to five
// marks by token-set similarity with the model answer.
func GradeStudySubmission(payload models.GradeRequest) models.GradeResponse {
	mcqs := payload.StudyPack.MCQs
	if len(mcqs) > 5 {
		mcqs = mcqs[:5]
	}
	shorts := payload.StudyPack.ShortAnswers
	if len(shorts) > 3 {
		shorts = shorts[:3]
	}

	breakdown := make([]models.GradeBreakdownItem, 0, len(mcqs)+len(shorts))

	mcqCorrect := 0
	for index, mcq := range mcqs {
		selected := -1
		if index < len(payload.MCQAnswers) {
			selected = payload.MCQAnswers[index]
		}

		correct := selected == mcq.CorrectOption
		awarded := 0.0
		feedback := fmt.Sprintf("Incorrect. Correct option is %c.", 'A'+mcq.CorrectOption)
		if correct {
			mcqCorrect++
			awarded = mcqMarkPerQuestion
			feedback = "Correct answer selected."
		}

		breakdown = append(breakdown, models.GradeBreakdownItem{
			Type:         "mcq",
			Question:     mcq.Question,
			AwardedMarks: awarded,
			MaxMarks:     mcqMarkPerQuestion,
			Feedback:     feedback,
		})
	}

	shortMarks := 0.0
	similaritySum := 0.0
	for index, item := range shorts {
		provided := ""
		if index < len(payload.ShortAnswers) {
			provided = payload.ShortAnswers[index]
		}

		similarity := retrieval.Jaccard(provided, item.ModelAnswer)
		similaritySum += similarity

		awarded := round2(similarity * shortMarkPerQuestion)
		if awarded < 0 {
			awarded = 0
		}
		if awarded > shortMarkPerQuestion {
			awarded = shortMarkPerQuestion
		}
		shortMarks += awarded

		feedback := "Low match with expected notes-based answer."
		if similarity >= 0.55 {
			feedback = "Good coverage of the model answer."
		} else if similarity >= 0.3 {
			feedback = "Partially correct. Include more key points from notes."
		}

		breakdown = append(breakdown, models.GradeBreakdownItem{
			Type:         "short",
			Question:     item.Question,
			AwardedMarks: awarded,
			MaxMarks:     shortMarkPerQuestion,
			Feedback:     feedback,
		})
	}

	mcqMarks := float64(mcqCorrect) * mcqMarkPerQuestion
	totalMarks := float64(len(mcqs))*mcqMarkPerQuestion + float64(len(shorts))*shortMarkPerQuestion
	obtainedMarks := round2(mcqMarks + shortMarks)

	percentage := 0.0
	if totalMarks > 0 {
		percentage = math.Round(obtainedMarks/totalMarks*10000) / 100
	}

	averageSimilarity := 0.0
	if len(shorts) > 0 {
		averageSimilarity = math.Round(similaritySum/float64(len(shorts))*10000) / 100
	}

	return models.GradeResponse{
		TotalMarks:    totalMarks,
		ObtainedMarks: obtainedMarks,
		Percentage:    percentage,
		MCQ: models.GradeMCQSummary{
			Correct: mcqCorrect,
			Total:   len(mcqs),
			Marks:   int(mcqMarks),
		},
		ShortAnswers: models.GradeShortSummary{
			AverageSimilarity: averageSimilarity,
			Total:             len(shorts),
			Marks:             round2(shortMarks),
		},
		Breakdown: breakdown,
	}
}
