package service

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/validation"
)

const previewSummaryLimit = 200

// QuizService orchestrates the extract -> generate -> persist pipeline with
// a read-through cache keyed by exact URL.
type QuizService interface {
	PreviewURL(ctx context.Context, url string) (*dto.URLPreviewResponse, error)
	GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error)
	GetHistory(ctx context.Context) ([]dto.HistoryEntry, error)
	GetQuizByID(ctx context.Context, id int64) (*dto.QuizResponse, error)
}

type quizService struct {
	repo      domain.QuizRepository
	extractor domain.ArticleExtractor
	generator domain.QuizGenerationService
	validator *validation.Validator
}

// NewQuizService creates a new QuizService instance
func NewQuizService(repo domain.QuizRepository, extractor domain.ArticleExtractor, generator domain.QuizGenerationService) QuizService {
	return &quizService{
		repo:      repo,
		extractor: extractor,
		generator: generator,
		validator: validation.NewValidator(),
	}
}

// PreviewURL fetches the article title and a truncated summary without
// generating anything.
func (s *quizService) PreviewURL(ctx context.Context, url string) (*dto.URLPreviewResponse, error) {
	if err := s.validator.ValidateArticleURL(url); err != nil {
		return nil, err
	}

	article, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, domain.WrapError(err, "Could not fetch article", domain.CodeFetchFailed)
	}

	summary := article.Summary
	if utf8.RuneCountInString(summary) > previewSummaryLimit {
		summary = string([]rune(summary)[:previewSummaryLimit]) + "..."
	}

	return &dto.URLPreviewResponse{
		Title:   article.Title,
		URL:     url,
		Summary: summary,
	}, nil
}

// GenerateQuiz serves a stored quiz when one exists for the exact URL;
// otherwise it runs the full pipeline and persists the result. Nothing is
// written on extraction or generation failure.
func (s *quizService) GenerateQuiz(ctx context.Context, url string) (*dto.QuizResponse, error) {
	if err := s.validator.ValidateArticleURL(url); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByURL(ctx, url)
	if err != nil {
		return nil, domain.WrapError(err, "DB error", domain.CodeStoreFailed)
	}
	if existing != nil {
		logger.Get().Info("Serving quiz from cache",
			zap.String("url", url),
			zap.Int64("id", existing.ID),
		)
		return recordToResponse(existing)
	}

	article, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, domain.WrapError(err, "Scrape error", domain.CodeFetchFailed)
	}

	quiz, err := s.generator.GenerateQuiz(ctx, article, url)
	if err != nil {
		return nil, domain.WrapError(err, "Quiz generator error", domain.CodeGenerationFailed)
	}

	// Title comes from extraction when available, never left empty.
	if article.Title != "" {
		quiz.Title = article.Title
	} else if quiz.Title == "" {
		quiz.Title = "Wikipedia Article"
	}

	payload, err := json.Marshal(quiz)
	if err != nil {
		return nil, domain.NewInternalError("failed to serialize quiz", err)
	}

	record := &domain.QuizRecord{
		URL:            url,
		Title:          quiz.Title,
		ScrapedContent: article.RawHTML,
		FullQuizData:   string(payload),
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, domain.WrapError(err, "DB error", domain.CodeStoreFailed)
	}

	logger.Get().Info("Generated and stored quiz",
		zap.String("url", url),
		zap.Int64("id", record.ID),
		zap.Int("questions", len(quiz.Questions)),
	)

	return &dto.QuizResponse{ID: record.ID, Quiz: *quiz}, nil
}

// GetHistory lists stored quizzes newest-first.
func (s *quizService) GetHistory(ctx context.Context) ([]dto.HistoryEntry, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, domain.WrapError(err, "DB error", domain.CodeStoreFailed)
	}

	entries := make([]dto.HistoryEntry, 0, len(records))
	for _, record := range records {
		entry := dto.HistoryEntry{
			ID:    record.ID,
			URL:   record.URL,
			Title: record.Title,
		}
		if record.DateGenerated != nil {
			formatted := record.DateGenerated.Format(time.RFC3339)
			entry.DateGenerated = &formatted
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetQuizByID returns a stored quiz with its identifier injected.
func (s *quizService) GetQuizByID(ctx context.Context, id int64) (*dto.QuizResponse, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, "DB error", domain.CodeStoreFailed)
	}
	if record == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	return recordToResponse(record)
}

// recordToResponse deserializes the stored payload. A record that fails to
// deserialize breaks the "stored payload is always valid Quiz data"
// invariant, so it surfaces as an internal error.
func recordToResponse(record *domain.QuizRecord) (*dto.QuizResponse, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(record.FullQuizData), &quiz); err != nil {
		return nil, domain.NewInternalError("stored quiz payload is corrupt", err)
	}
	return &dto.QuizResponse{ID: record.ID, Quiz: quiz}, nil
}
