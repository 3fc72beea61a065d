package app

import (
	"context"

	"iwdc-quiz-service/internal/domain"
	"iwdc-quiz-service/internal/quiz"
)

// LeaderboardStore abstracts how best scores are persisted (in-memory,
// Postgres, optionally behind a Redis cache).
type LeaderboardStore interface {
	Submit(ctx context.Context, name string, score int) (domain.SubmitReceipt, error)
	TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// DefaultLeaderboardSize bounds how many rows the board exposes.
const DefaultLeaderboardSize = 50

// QuizService contains the quiz use cases: serving the bank, checking and
// grading answers, and recording final tallies on the shared leaderboard.
type QuizService struct {
	bank      *quiz.Bank
	store     LeaderboardStore
	board     *Broadcaster
	boardSize int
}

func NewQuizService(bank *quiz.Bank, store LeaderboardStore, boardSize int) *QuizService {
	if boardSize <= 0 {
		boardSize = DefaultLeaderboardSize
	}
	return &QuizService{
		bank:      bank,
		store:     store,
		board:     NewBroadcaster(),
		boardSize: boardSize,
	}
}

// Bank exposes the loaded question bank for session runners.
func (s *QuizService) Bank() *quiz.Bank {
	return s.bank
}

// ListQuestions returns answer-stripped questions; a positive limit truncates
// in bank order. The reported total counts the returned set.
func (s *QuizService) ListQuestions(limit int) ([]domain.PublicQuestion, int) {
	questions := s.bank.List(limit)
	return questions, len(questions)
}

// CheckAnswer grades one answer against the bank's answer key.
func (s *QuizService) CheckAnswer(questionID, answer int) (domain.AnswerCheck, error) {
	return s.bank.Check(questionID, answer)
}

// GradeAnswers scores a full answer sheet positionally.
func (s *QuizService) GradeAnswers(answers []*int) domain.GradeReport {
	return s.bank.Grade(answers)
}

// Leaderboard returns the current ranked board.
func (s *QuizService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.store.TopN(ctx, s.boardSize)
}

// SubmitScore records a final tally and returns the receipt together with the
// refreshed board, which is also fanned out to live subscribers.
func (s *QuizService) SubmitScore(ctx context.Context, name string, score int) (domain.SubmitReceipt, []domain.LeaderboardEntry, error) {
	receipt, err := s.store.Submit(ctx, name, score)
	if err != nil {
		return domain.SubmitReceipt{}, nil, err
	}
	board, err := s.store.TopN(ctx, s.boardSize)
	if err != nil {
		// The write stuck; return the receipt with an empty board rather
		// than failing the submission.
		return receipt, nil, nil
	}
	s.board.Publish(board)
	return receipt, board, nil
}

// Subscribe returns a channel of board snapshots published after each
// accepted submission. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe() (<-chan []domain.LeaderboardEntry, func()) {
	return s.board.Subscribe()
}
