package dto

import "wiki-quiz/internal/domain"

// HomeResponse is the root endpoint's liveness message
type HomeResponse struct {
	Msg string `json:"msg"`
}

// GenerateQuizRequest is the request body for POST /generate_quiz
type GenerateQuizRequest struct {
	URL string `json:"url"`
}

// URLPreviewRequest is the request body for POST /url/preview
type URLPreviewRequest struct {
	URL string `json:"url"`
}

// URLPreviewResponse previews an article before quiz generation
type URLPreviewResponse struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// QuizResponse is the full generated quiz payload plus its stored
// identifier
type QuizResponse struct {
	ID int64 `json:"id"`
	domain.Quiz
}

// HistoryEntry is one row of GET /history
type HistoryEntry struct {
	ID            int64   `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	DateGenerated *string `json:"date_generated"`
}
