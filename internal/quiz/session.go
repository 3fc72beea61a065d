package quiz

import "iwdc-quiz-service/internal/domain"

// State tracks where a session is in its lifecycle.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
	GameOver
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Completed:
		return "completed"
	case GameOver:
		return "game-over"
	}
	return "unknown"
}

// Terminal reports whether no further answers are accepted.
func (s State) Terminal() bool {
	return s == Completed || s == GameOver
}

// StartingLives is the number of misses a participant can absorb.
const StartingLives = 3

// Session is one participant's quiz attempt. It is a plain value owned by the
// caller: every Runner operation takes a Session and returns the updated copy,
// so nothing is stored server-side and the machine is trivially testable.
type Session struct {
	Name    string
	Current int
	Lives   int
	Score   int
	Answers []*int
	Pending *int
	State   State
}

// Checker grades a single answer; *Bank satisfies it.
type Checker interface {
	Check(questionID, chosen int) (domain.AnswerCheck, error)
}

// Runner drives sessions over a fixed, delivered question list.
type Runner struct {
	questions []domain.PublicQuestion
	checker   Checker
}

func NewRunner(questions []domain.PublicQuestion, checker Checker) *Runner {
	return &Runner{questions: questions, checker: checker}
}

// Questions returns the delivered list, in order.
func (r *Runner) Questions() []domain.PublicQuestion {
	return r.questions
}

// Start opens a fresh session for a named participant.
func (r *Runner) Start(name string) (Session, error) {
	trimmed, err := domain.NormalizeName(name)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Name:    trimmed,
		Lives:   StartingLives,
		Answers: make([]*int, len(r.questions)),
		State:   InProgress,
	}, nil
}

// Select records a pending choice for the current question. Re-selecting
// before submission overwrites the previous choice; nothing advances.
func (r *Runner) Select(s Session, index int) (Session, error) {
	if err := requireInProgress(s); err != nil {
		return s, err
	}
	s.Pending = &index
	return s, nil
}

// Submit grades the pending choice and advances the machine. A correct answer
// scores one point; an incorrect one costs a life, and losing the last life
// ends the session immediately with the current question counted as attempted.
func (r *Runner) Submit(s Session) (Session, domain.AnswerCheck, error) {
	if err := requireInProgress(s); err != nil {
		return s, domain.AnswerCheck{}, err
	}
	if s.Pending == nil {
		return s, domain.AnswerCheck{}, domain.ErrNoSelection
	}

	check, err := r.checker.Check(r.questions[s.Current].ID, *s.Pending)
	if err != nil {
		return s, domain.AnswerCheck{}, err
	}

	s.Answers[s.Current] = s.Pending
	s.Pending = nil

	if check.IsCorrect {
		s.Score++
	} else {
		s.Lives--
		if s.Lives == 0 {
			s.State = GameOver
			return s, check, nil
		}
	}

	if s.Current == len(r.questions)-1 {
		s.State = Completed
	} else {
		s.Current++
	}
	return s, check, nil
}

// SubmitEarly finalizes the session with the standing score, regardless of
// unanswered questions. Confirmation is the caller's concern.
func (r *Runner) SubmitEarly(s Session) (Session, error) {
	if err := requireInProgress(s); err != nil {
		return s, err
	}
	s.Pending = nil
	s.State = Completed
	return s, nil
}

func requireInProgress(s Session) error {
	if s.State == NotStarted {
		return domain.ErrSessionNotStarted
	}
	if s.State.Terminal() {
		return domain.ErrSessionFinished
	}
	return nil
}
