package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/service"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// Home godoc
// @Summary Liveness message
// @Produce json
// @Success 200 {object} dto.HomeResponse
// @Router / [get]
func (h *QuizHandler) Home(c *fiber.Ctx) error {
	return c.JSON(dto.HomeResponse{Msg: "AI Quiz Generator API running."})
}

// PreviewURL godoc
// @Summary Preview article title and summary before generating a quiz
// @Accept json
// @Produce json
// @Param request body dto.URLPreviewRequest true "Article URL"
// @Success 200 {object} dto.URLPreviewResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /url/preview [post]
func (h *QuizHandler) PreviewURL(c *fiber.Ctx) error {
	var req dto.URLPreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Provide a valid Wikipedia article URL.")
	}

	preview, err := h.service.PreviewURL(c.UserContext(), req.URL)
	if err != nil {
		return err
	}
	return c.JSON(preview)
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia URL, cached by URL
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Article URL"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /generate_quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Provide a valid Wikipedia article URL.")
	}

	quiz, err := h.service.GenerateQuiz(c.UserContext(), req.URL)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// GetHistory godoc
// @Summary List generated quizzes, newest first
// @Produce json
// @Success 200 {array} dto.HistoryEntry
// @Router /history [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	entries, err := h.service.GetHistory(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// GetQuiz godoc
// @Summary Get a stored quiz by identifier
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return domain.NewValidationError("Quiz id must be an integer.")
	}

	quiz, err := h.service.GetQuizByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}
