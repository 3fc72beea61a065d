package domain

import "errors"

var (
	// ErrQuestionNotFound is returned when a question ID is not in the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidName is returned when a participant name is empty after trimming.
	ErrInvalidName = errors.New("name is required and must be a non-empty string")
	// ErrInvalidScore is returned when a submitted score is negative.
	ErrInvalidScore = errors.New("score must be a non-negative number")
	// ErrNoSelection is returned when a submission arrives with no option selected.
	ErrNoSelection = errors.New("no option selected")
	// ErrSessionNotStarted is returned when a session operation precedes Start.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrSessionFinished is returned when a terminal session receives further input.
	ErrSessionFinished = errors.New("session already finished")
	// ErrStoreUnavailable marks transient leaderboard failures; a finished quiz
	// outcome still stands when it occurs.
	ErrStoreUnavailable = errors.New("leaderboard store unavailable")
)
