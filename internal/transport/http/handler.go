package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"iwdc-quiz-service/internal/app"
	"iwdc-quiz-service/internal/domain"
)

// Handler serves the JSON API: question listing, single-answer checks, bulk
// grading, and the leaderboard.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

// Register wires the API routes onto a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/questions", h.questions)
	mux.HandleFunc("/api/check-answer", h.checkAnswer)
	mux.HandleFunc("/api/leaderboard", h.leaderboard)
}

func (h *Handler) questions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listQuestions(w, r)
	case http.MethodPost:
		h.gradeAnswers(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	questions, total := h.service.ListQuestions(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": questions,
		"total":     total,
	})
}

func (h *Handler) gradeAnswers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers *[]*int `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Answers == nil {
		writeError(w, http.StatusBadRequest, "Answers must be an array")
		return
	}
	writeJSON(w, http.StatusOK, h.service.GradeAnswers(*body.Answers))
}

func (h *Handler) checkAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		QuestionID *int `json:"questionId"`
		Answer     *int `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.QuestionID == nil || body.Answer == nil {
		writeError(w, http.StatusBadRequest, "Question ID and answer must be numbers")
		return
	}

	check, err := h.service.CheckAnswer(*body.QuestionID, *body.Answer)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to check answer")
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getLeaderboard(w, r)
	case http.MethodPost:
		h.submitScore(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Leaderboard(r.Context())
	if err != nil {
		log.Printf("fetch leaderboard: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Failed to fetch leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leaderboard": board,
		"total":       len(board),
	})
}

type submitResponse struct {
	Success           bool                      `json:"success"`
	Rank              int                       `json:"rank"`
	IsNewHighScore    bool                      `json:"isNewHighScore"`
	PreviousBestScore *int                      `json:"previousBestScore"`
	CurrentScore      int                       `json:"currentScore"`
	Leaderboard       []domain.LeaderboardEntry `json:"leaderboard"`
	Message           string                    `json:"message"`
}

func (h *Handler) submitScore(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Score *int   `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Score == nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidScore.Error())
		return
	}

	receipt, board, err := h.service.SubmitScore(r.Context(), body.Name, *body.Score)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidName), errors.Is(err, domain.ErrInvalidScore):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrStoreUnavailable):
			log.Printf("submit score: %v", err)
			writeError(w, http.StatusServiceUnavailable, "Failed to submit score")
		default:
			log.Printf("submit score: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to submit score")
		}
		return
	}

	message := fmt.Sprintf("Score submitted successfully! You ranked #%d", receipt.Rank)
	if !receipt.IsNewBest {
		message = fmt.Sprintf("Your best score of %d stands. You are ranked #%d", receipt.Best, receipt.Rank)
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success:           true,
		Rank:              receipt.Rank,
		IsNewHighScore:    receipt.IsNewBest,
		PreviousBestScore: receipt.PreviousBest,
		CurrentScore:      *body.Score,
		Leaderboard:       board,
		Message:           message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
