package quiz

import (
	"context"
	"fmt"
	"math"

	"iwdc-quiz-service/internal/domain"
)

// Loader fetches question content from a backing store (static file, Postgres).
type Loader interface {
	Load(ctx context.Context) ([]domain.Question, error)
}

// StaticLoader adapts a fixed question slice into a Loader.
type StaticLoader []domain.Question

func (l StaticLoader) Load(context.Context) ([]domain.Question, error) {
	return l, nil
}

// Bank holds the ordered question collection. It is built once at startup and
// read-only afterwards, so it needs no locking.
type Bank struct {
	questions []domain.Question
	byID      map[int]int // question ID -> position
}

// NewBank loads and validates the bank. Every question must carry at least two
// options and an answer key inside the option range.
func NewBank(ctx context.Context, loader Loader) (*Bank, error) {
	questions, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	byID := make(map[int]int, len(questions))
	for i, q := range questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: needs at least 2 options, has %d", q.ID, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("question %d: answer index %d out of range", q.ID, q.CorrectIndex)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id", q.ID)
		}
		byID[q.ID] = i
	}
	return &Bank{questions: questions, byID: byID}, nil
}

// Len reports the bank size.
func (b *Bank) Len() int {
	return len(b.questions)
}

// List returns questions in bank order with answer keys stripped. A positive
// limit truncates to the first limit entries; anything else returns all.
func (b *Bank) List(limit int) []domain.PublicQuestion {
	n := len(b.questions)
	if limit > 0 && limit < n {
		n = limit
	}
	public := make([]domain.PublicQuestion, 0, n)
	for _, q := range b.questions[:n] {
		public = append(public, q.Public())
	}
	return public
}

// CorrectIndex returns the answer key for a question ID.
func (b *Bank) CorrectIndex(questionID int) (int, error) {
	i, ok := b.byID[questionID]
	if !ok {
		return 0, domain.ErrQuestionNotFound
	}
	return b.questions[i].CorrectIndex, nil
}

// Check grades a single answer. The chosen index is deliberately not
// range-checked: any non-matching value is simply incorrect.
func (b *Bank) Check(questionID, chosen int) (domain.AnswerCheck, error) {
	correct, err := b.CorrectIndex(questionID)
	if err != nil {
		return domain.AnswerCheck{}, err
	}
	return domain.AnswerCheck{
		QuestionID:    questionID,
		UserAnswer:    chosen,
		CorrectAnswer: correct,
		IsCorrect:     chosen == correct,
	}, nil
}

// Grade scores a full answer sheet positionally against bank order. Nil
// answers and positions beyond the bank count as incorrect.
func (b *Bank) Grade(answers []*int) domain.GradeReport {
	report := domain.GradeReport{
		Total:   len(answers),
		Results: make([]domain.GradeResult, 0, len(answers)),
	}
	for i, answer := range answers {
		result := domain.GradeResult{UserAnswer: answer, CorrectAnswer: -1}
		if i < len(b.questions) {
			q := b.questions[i]
			result.QuestionID = q.ID
			result.CorrectAnswer = q.CorrectIndex
			if answer != nil && *answer == q.CorrectIndex {
				result.IsCorrect = true
				report.Score++
			}
		}
		report.Results = append(report.Results, result)
	}
	if report.Total > 0 {
		report.Percentage = int(math.Round(float64(report.Score) / float64(report.Total) * 100))
	}
	return report
}
