package domain

import (
	"fmt"
	"time"
)

const optionsPerQuestion = 4

// Difficulty tiers a generated question may carry.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidDifficulty reports whether d is one of the allowed tiers.
func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// KeyEntities groups the named entities the model extracts from an article.
type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// Question is a single multiple-choice question. Every question carries
// exactly four options and one correct answer.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// Quiz is the full LLM-derived payload stored against a source URL. The
// url, summary and sections fields are always overwritten with extractor
// output before the quiz is persisted.
type Quiz struct {
	URL           string      `json:"url"`
	Title         string      `json:"title"`
	Summary       string      `json:"summary"`
	KeyEntities   KeyEntities `json:"key_entities"`
	Sections      []string    `json:"sections"`
	Questions     []Question  `json:"quiz"`
	RelatedTopics []string    `json:"related_topics"`
}

// Validate checks the schema constraints the generator promises: at least
// one question, exactly four options each, a non-empty answer and a known
// difficulty tier.
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz contains no questions")
	}
	for i, question := range q.Questions {
		if question.Question == "" {
			return fmt.Errorf("question %d has empty text", i+1)
		}
		if len(question.Options) != optionsPerQuestion {
			return fmt.Errorf("question %d has %d options, want %d", i+1, len(question.Options), optionsPerQuestion)
		}
		if question.Answer == "" {
			return fmt.Errorf("question %d has no answer", i+1)
		}
		if !ValidDifficulty(question.Difficulty) {
			return fmt.Errorf("question %d has invalid difficulty %q", i+1, question.Difficulty)
		}
	}
	return nil
}

// QuizRecord is the persisted row associating a URL with its generated quiz
// payload. UserID is vestigial, kept for schema compatibility.
type QuizRecord struct {
	ID             int64
	UserID         int64
	URL            string
	Title          string
	DateGenerated  *time.Time
	ScrapedContent string
	FullQuizData   string
}
