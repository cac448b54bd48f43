package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wiki-quiz/internal/domain"
)

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) FindByURL(ctx context.Context, url string) (*domain.QuizRecord, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizRecord), args.Error(1)
}

func (m *MockQuizRepository) Save(ctx context.Context, record *domain.QuizRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockQuizRepository) ListAll(ctx context.Context) ([]*domain.QuizRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuizRecord), args.Error(1)
}

func (m *MockQuizRepository) FindByID(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizRecord), args.Error(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, url string) (*domain.Article, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateQuiz(ctx context.Context, article *domain.Article, url string) (*domain.Quiz, error) {
	args := m.Called(ctx, article, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

const wikiURL = "https://en.wikipedia.org/wiki/Turing_Award"

func validQuiz() *domain.Quiz {
	return &domain.Quiz{
		URL:     wikiURL,
		Title:   "Turing Award",
		Summary: "An award.",
		Questions: []domain.Question{{
			Question:    "Q1",
			Options:     []string{"a", "b", "c", "d"},
			Answer:      "a",
			Difficulty:  domain.DifficultyMedium,
			Explanation: "Because the article says so.",
		}},
	}
}

func newTestService(repo *MockQuizRepository, ex *MockExtractor, gen *MockGenerator) QuizService {
	return NewQuizService(repo, ex, gen)
}

func TestGenerateQuizRejectsNonWikipediaURL(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	_, err := svc.GenerateQuiz(context.Background(), "https://example.com/not-wiki")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Message, "valid Wikipedia article URL")

	// No lookup, no fetch, no model call happens for an invalid URL.
	repo.AssertNotCalled(t, "FindByURL", mock.Anything, mock.Anything)
	ex.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	gen.AssertNotCalled(t, "GenerateQuiz", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQuizCacheHitShortCircuits(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	stored, err := json.Marshal(validQuiz())
	require.NoError(t, err)
	repo.On("FindByURL", mock.Anything, wikiURL).Return(&domain.QuizRecord{
		ID:           1,
		URL:          wikiURL,
		Title:        "Turing Award",
		FullQuizData: string(stored),
	}, nil)

	resp, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Turing Award", resp.Title)

	// A cache hit performs no extraction, no generation and no write.
	ex.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	gen.AssertNotCalled(t, "GenerateQuiz", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerateQuizRepeatCallsReturnIdenticalPayload(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	stored, err := json.Marshal(validQuiz())
	require.NoError(t, err)
	repo.On("FindByURL", mock.Anything, wikiURL).Return(&domain.QuizRecord{ID: 1, URL: wikiURL, FullQuizData: string(stored)}, nil)

	first, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.NoError(t, err)
	second, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestGenerateQuizMissRunsPipelineAndPersists(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	article := &domain.Article{
		Title:          "Turing Award",
		Summary:        "An award.",
		Sections:       []string{"History"},
		StructuredText: "Title: Turing Award",
		RawHTML:        "<html>raw</html>",
	}
	repo.On("FindByURL", mock.Anything, wikiURL).Return(nil, nil)
	ex.On("Extract", mock.Anything, wikiURL).Return(article, nil)
	gen.On("GenerateQuiz", mock.Anything, article, wikiURL).Return(validQuiz(), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.QuizRecord")).Run(func(args mock.Arguments) {
		record := args.Get(1).(*domain.QuizRecord)
		record.ID = 7
	}).Return(nil)

	resp, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)

	repo.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(record *domain.QuizRecord) bool {
		var payload domain.Quiz
		if err := json.Unmarshal([]byte(record.FullQuizData), &payload); err != nil {
			return false
		}
		return record.URL == wikiURL &&
			record.Title == "Turing Award" &&
			record.ScrapedContent == "<html>raw</html>" &&
			payload.Validate() == nil
	}))
}

func TestGenerateQuizTitleOverlayPrefersExtraction(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	article := &domain.Article{Title: "Extracted Title", Summary: "s"}
	quiz := validQuiz()
	quiz.Title = "Model Title"

	repo.On("FindByURL", mock.Anything, wikiURL).Return(nil, nil)
	ex.On("Extract", mock.Anything, wikiURL).Return(article, nil)
	gen.On("GenerateQuiz", mock.Anything, article, wikiURL).Return(quiz, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.NoError(t, err)
	assert.Equal(t, "Extracted Title", resp.Title)
}

func TestGenerateQuizScrapeFailureWrites400AndNothingPersists(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	repo.On("FindByURL", mock.Anything, wikiURL).Return(nil, nil)
	ex.On("Extract", mock.Anything, wikiURL).Return(nil, domain.NewFetchError("Unable to fetch the article.", errors.New("timeout")))

	_, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeFetchFailed, domainErr.Code)
	assert.True(t, strings.HasPrefix(domainErr.Message, "Scrape error:"), domainErr.Message)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerateQuizGeneratorFailureNothingPersists(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	repo.On("FindByURL", mock.Anything, wikiURL).Return(nil, nil)
	ex.On("Extract", mock.Anything, wikiURL).Return(&domain.Article{Title: "T"}, nil)
	gen.On("GenerateQuiz", mock.Anything, mock.Anything, wikiURL).Return(nil, domain.NewGenerationError("LLM output parse error", errors.New("bad json")))

	_, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeGenerationFailed, domainErr.Code)
	assert.True(t, strings.HasPrefix(domainErr.Message, "Quiz generator error:"), domainErr.Message)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerateQuizStoreFailure(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	repo.On("FindByURL", mock.Anything, wikiURL).Return(nil, nil)
	ex.On("Extract", mock.Anything, wikiURL).Return(&domain.Article{Title: "T"}, nil)
	gen.On("GenerateQuiz", mock.Anything, mock.Anything, wikiURL).Return(validQuiz(), nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := svc.GenerateQuiz(context.Background(), wikiURL)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeStoreFailed, domainErr.Code)
	assert.True(t, strings.HasPrefix(domainErr.Message, "DB error:"), domainErr.Message)
}

func TestPreviewURLTruncatesSummary(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	longSummary := strings.Repeat("é", 250)
	ex.On("Extract", mock.Anything, wikiURL).Return(&domain.Article{Title: "T", Summary: longSummary}, nil)

	preview, err := svc.PreviewURL(context.Background(), wikiURL)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 200)+"...", preview.Summary)
	assert.Equal(t, wikiURL, preview.URL)
}

func TestPreviewURLShortSummaryUntouched(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	ex.On("Extract", mock.Anything, wikiURL).Return(&domain.Article{Title: "T", Summary: "short"}, nil)

	preview, err := svc.PreviewURL(context.Background(), wikiURL)
	require.NoError(t, err)
	assert.Equal(t, "short", preview.Summary)
}

func TestPreviewURLRejectsInvalidURL(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	_, err := svc.PreviewURL(context.Background(), "")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeValidation, domainErr.Code)
	ex.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestGetHistoryFormatsDates(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	generated := mustParseTime(t, "2025-03-01T12:00:00Z")
	repo.On("ListAll", mock.Anything).Return([]*domain.QuizRecord{
		{ID: 2, URL: "https://en.wikipedia.org/wiki/B", Title: "B", DateGenerated: &generated},
		{ID: 1, URL: "https://en.wikipedia.org/wiki/A", Title: "A"},
	}, nil)

	entries, err := svc.GetHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].DateGenerated)
	assert.Equal(t, "2025-03-01T12:00:00Z", *entries[0].DateGenerated)
	assert.Nil(t, entries[1].DateGenerated)
}

func TestGetQuizByIDNotFound(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	repo.On("FindByID", mock.Anything, int64(999999)).Return(nil, nil)

	_, err := svc.GetQuizByID(context.Background(), 999999)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeNotFound, domainErr.Code)
}

func TestGetQuizByIDInjectsIdentifier(t *testing.T) {
	repo := new(MockQuizRepository)
	ex := new(MockExtractor)
	gen := new(MockGenerator)
	svc := newTestService(repo, ex, gen)

	stored, err := json.Marshal(validQuiz())
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, int64(3)).Return(&domain.QuizRecord{ID: 3, FullQuizData: string(stored)}, nil)

	resp, err := svc.GetQuizByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.ID)
	assert.Equal(t, "Turing Award", resp.Title)
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}
