package grading

import (
	"reflect"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

func samplePack() models.StudyPack {
	return models.StudyPack{
		Difficulty: "Medium",
		MCQs: []models.StudyMCQ{
			{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectOption: 1},
			{Question: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectOption: 0},
			{Question: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectOption: 3},
			{Question: "Q4", Options: []string{"a", "b", "c", "d"}, CorrectOption: 2},
			{Question: "Q5", Options: []string{"a", "b", "c", "d"}, CorrectOption: 1},
		},
		ShortAnswers: []models.StudyShortAnswer{
			{Question: "S1", ModelAnswer: "Glycolysis breaks down glucose into pyruvate"},
			{Question: "S2", ModelAnswer: "The Krebs cycle releases carbon dioxide"},
			{Question: "S3", ModelAnswer: "Oxidative phosphorylation produces most ATP"},
		},
	}
}

func TestGradeStudySubmission_PerfectScore(t *testing.T) {
	pack := samplePack()
	result := GradeStudySubmission(models.GradeRequest{
		StudyPack:  pack,
		MCQAnswers: []int{1, 0, 3, 2, 1},
		ShortAnswers: []string{
			"Glycolysis breaks down glucose into pyruvate",
			"The Krebs cycle releases carbon dioxide",
			"Oxidative phosphorylation produces most ATP",
		},
	})

	if result.TotalMarks != 20 {
		t.Errorf("expected total marks 20, got %f", result.TotalMarks)
	}
	if result.ObtainedMarks != 20 {
		t.Errorf("expected obtained marks 20, got %f", result.ObtainedMarks)
	}
	if result.Percentage != 100 {
		t.Errorf("expected 100%%, got %f", result.Percentage)
	}
	if result.MCQ.Correct != 5 || result.MCQ.Marks != 5 {
		t.Errorf("unexpected MCQ summary: %+v", result.MCQ)
	}
	if result.ShortAnswers.AverageSimilarity != 100 {
		t.Errorf("expected 100 average similarity, got %f", result.ShortAnswers.AverageSimilarity)
	}
	if len(result.Breakdown) != 8 {
		t.Errorf("expected 8 breakdown items, got %d", len(result.Breakdown))
	}
}

func TestGradeStudySubmission_MCQFeedback(t *testing.T) {
	pack := samplePack()
	result := GradeStudySubmission(models.GradeRequest{
		StudyPack:  pack,
		MCQAnswers: []int{1, 1, 1, 1, 1},
	})

	if result.MCQ.Correct != 2 {
		t.Fatalf("expected 2 correct MCQs, got %d", result.MCQ.Correct)
	}
	if result.Breakdown[0].Feedback != "Correct answer selected." {
		t.Errorf("unexpected feedback: %q", result.Breakdown[0].Feedback)
	}
	if result.Breakdown[1].Feedback != "Incorrect. Correct option is A." {
		t.Errorf("unexpected feedback: %q", result.Breakdown[1].Feedback)
	}
	if result.Breakdown[2].Feedback != "Incorrect. Correct option is D." {
		t.Errorf("unexpected feedback: %q", result.Breakdown[2].Feedback)
	}
}

func TestGradeStudySubmission_MissingAnswersScoreZero(t *testing.T) {
	result := GradeStudySubmission(models.GradeRequest{StudyPack: samplePack()})

	if result.ObtainedMarks != 0 {
		t.Errorf("expected 0 marks with no answers, got %f", result.ObtainedMarks)
	}
	if result.Percentage != 0 {
		t.Errorf("expected 0%%, got %f", result.Percentage)
	}
	for _, item := range result.Breakdown {
		if item.AwardedMarks != 0 {
			t.Errorf("item %q awarded %f marks without an answer", item.Question, item.AwardedMarks)
		}
	}
}

func TestGradeStudySubmission_ShortAnswerBands(t *testing.T) {
	pack := models.StudyPack{
		ShortAnswers: []models.StudyShortAnswer{
			{Question: "S1", ModelAnswer: "Glycolysis breaks down glucose into pyruvate"},
		},
	}

	good := GradeStudySubmission(models.GradeRequest{
		StudyPack:    pack,
		ShortAnswers: []string{"Glycolysis breaks down glucose into pyruvate"},
	})
	if good.Breakdown[0].Feedback != "Good coverage of the model answer." {
		t.Errorf("unexpected feedback for full match: %q", good.Breakdown[0].Feedback)
	}

	low := GradeStudySubmission(models.GradeRequest{
		StudyPack:    pack,
		ShortAnswers: []string{"Something else entirely unrelated"},
	})
	if low.Breakdown[0].Feedback != "Low match with expected notes-based answer." {
		t.Errorf("unexpected feedback for no match: %q", low.Breakdown[0].Feedback)
	}
	if low.Breakdown[0].AwardedMarks != 0 {
		t.Errorf("expected 0 marks for no match, got %f", low.Breakdown[0].AwardedMarks)
	}
}

func TestGradeStudySubmission_Idempotent(t *testing.T) {
	request := models.GradeRequest{
		StudyPack:    samplePack(),
		MCQAnswers:   []int{1, 2, 3, 2, 0},
		ShortAnswers: []string{"glucose pyruvate", "carbon dioxide", ""},
	}

	first := GradeStudySubmission(request)
	second := GradeStudySubmission(request)
	if !reflect.DeepEqual(first, second) {
		t.Error("grading the same submission twice must produce identical results")
	}
}

func TestGradeStudySubmission_ExtraItemsIgnored(t *testing.T) {
	pack := samplePack()
	pack.MCQs = append(pack.MCQs, models.StudyMCQ{Question: "Q6", Options: []string{"a", "b", "c", "d"}, CorrectOption: 0})
	pack.ShortAnswers = append(pack.ShortAnswers, models.StudyShortAnswer{Question: "S4", ModelAnswer: "extra"})

	result := GradeStudySubmission(models.GradeRequest{StudyPack: pack})
	if result.MCQ.Total != 5 {
		t.Errorf("expected MCQs capped at 5, got %d", result.MCQ.Total)
	}
	if result.ShortAnswers.Total != 3 {
		t.Errorf("expected short answers capped at 3, got %d", result.ShortAnswers.Total)
	}
}
