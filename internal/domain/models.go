package domain

import (
	"strings"
	"time"
)

// Question is a bank entry together with its answer key. The bank is loaded
// once at startup and never mutated, so values are safe to share.
type Question struct {
	ID           int      `json:"id" yaml:"id"`
	Prompt       string   `json:"question" yaml:"question"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"-" yaml:"answer"`
}

// Public strips the answer key for delivery to clients.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
}

// PublicQuestion is the client-facing view of a question.
type PublicQuestion struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// AnswerCheck is the verdict for a single answered question.
type AnswerCheck struct {
	QuestionID    int  `json:"questionId"`
	UserAnswer    int  `json:"userAnswer"`
	CorrectAnswer int  `json:"correctAnswer"`
	IsCorrect     bool `json:"isCorrect"`
}

// GradeResult is one positional row of a bulk grade. UserAnswer is nil for
// questions that were never answered.
type GradeResult struct {
	QuestionID    int  `json:"questionId"`
	UserAnswer    *int `json:"userAnswer"`
	CorrectAnswer int  `json:"correctAnswer"`
	IsCorrect     bool `json:"isCorrect"`
}

// GradeReport summarizes a bulk grade of a full answer sheet.
type GradeReport struct {
	Score      int           `json:"score"`
	Total      int           `json:"total"`
	Percentage int           `json:"percentage"`
	Results    []GradeResult `json:"results"`
}

// LeaderboardEntry is one ranked row of the shared scoreboard. Rank is the
// 1-based position under (score desc, timestamp asc); ties do not share ranks.
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// SubmitReceipt reports the outcome of a score submission.
type SubmitReceipt struct {
	Rank         int
	IsNewBest    bool
	PreviousBest *int
	Best         int
}

// NormalizeName trims a participant name and rejects empty input.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// ValidateScore rejects negative scores.
func ValidateScore(score int) error {
	if score < 0 {
		return ErrInvalidScore
	}
	return nil
}
