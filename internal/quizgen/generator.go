// Package quizgen adapts a hosted generative model into the
// domain.QuizGenerationService port.
package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"wiki-quiz/internal/domain"
)

const promptTemplate = `You are an expert educational content designer. Given the structured Wikipedia article below, produce a quiz and supporting metadata grounded strictly in that source.

### Output contract
- Respond with a single JSON object and nothing else.
- Fill the "url" field exactly with: %s
- Ensure every quiz question has exactly four options, a single correct answer, a difficulty value from {"easy","medium","hard"}, and a one-sentence explanation referencing the article content.
- If specific information is unavailable, respond with "Not specified" rather than inventing facts.

Required JSON schema:
{
  "url": string,
  "title": string,
  "summary": string,
  "key_entities": {"people": [string], "organizations": [string], "locations": [string]},
  "sections": [string],
  "quiz": [{"question": string, "options": [string, string, string, string], "answer": string, "difficulty": "easy"|"medium"|"hard", "explanation": string}],
  "related_topics": [string]
}

--- ARTICLE START (STRUCTURED) ---
%s
--- ARTICLE END ---

Provide a concise summary (3-4 sentences max), list notable sections found in the article, extract key people/organizations/locations mentioned, and recommend 3-5 related Wikipedia topics for continued learning.`

// GeminiQuizGenerator calls Gemini through langchaingo and validates its
// output against the quiz schema.
type GeminiQuizGenerator struct {
	llm    llms.Model
	logger *zap.Logger
}

// New builds the generator against the hosted Gemini API. The API key is
// required here, not at process startup.
func New(apiKey, modelName string, logger *zap.Logger) (*GeminiQuizGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required to call the Gemini API")
	}
	llm, err := googleai.New(context.Background(),
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	logger.Info("Initialized Gemini quiz generator", zap.String("model", modelName))
	return NewWithModel(llm, logger), nil
}

// NewWithModel wires an already-constructed model, letting tests substitute
// a deterministic stub.
func NewWithModel(llm llms.Model, logger *zap.Logger) *GeminiQuizGenerator {
	return &GeminiQuizGenerator{llm: llm, logger: logger}
}

// GenerateQuiz prompts the model with the article's structured document and
// parses the response. After parsing, the url, summary and sections fields
// are overwritten with the extractor's values; the model's own versions of
// those fields are discarded.
func (g *GeminiQuizGenerator) GenerateQuiz(ctx context.Context, article *domain.Article, url string) (*domain.Quiz, error) {
	payload := article.StructuredText
	if payload == "" {
		payload = article.Text
	}

	prompt := fmt.Sprintf(promptTemplate, url, payload)

	response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithTemperature(0.3),
		llms.WithTopP(0.8),
	)
	if err != nil {
		return nil, domain.NewGenerationError("LLM call failed", err)
	}

	g.logger.Debug("Raw LLM response", zap.Int("length", len(response)))

	quiz, err := parseQuizResponse(response)
	if err != nil {
		g.logger.Error("Failed to parse LLM response", zap.Error(err))
		return nil, domain.NewGenerationError("LLM output parse error", err)
	}

	quiz.URL = url
	if article.Summary != "" {
		quiz.Summary = article.Summary
	}
	quiz.Sections = article.Sections
	return quiz, nil
}

// parseQuizResponse strips code fences, extracts the outermost JSON object
// and validates it against the quiz schema.
func parseQuizResponse(response string) (*domain.Quiz, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.Trim(cleaned, "`")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &quiz); err != nil {
		return nil, fmt.Errorf("unmarshal model response: %w", err)
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	return &quiz, nil
}

var _ domain.QuizGenerationService = (*GeminiQuizGenerator)(nil)
