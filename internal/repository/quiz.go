package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/repository/models"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx over
// MySQL.
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

const quizColumns = `id, user_id, url, title, date_generated, scraped_content, full_quiz_data`

// FindByURL returns the oldest record stored for an exact URL match, or
// (nil, nil) when none exists. Duplicate rows are legal (no uniqueness
// constraint on url); ordering by id keeps cache hits deterministic.
func (a *QuizDatabaseAdapter) FindByURL(ctx context.Context, url string) (*domain.QuizRecord, error) {
	var row models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE url = ? ORDER BY id ASC LIMIT 1`

	err := a.db.GetContext(ctx, &row, query, url)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find quiz by url: %w", err)
	}
	return toDomainRecord(&row), nil
}

// Save inserts the record and assigns its identifier from the
// auto-increment column.
func (a *QuizDatabaseAdapter) Save(ctx context.Context, record *domain.QuizRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil record")
	}
	now := time.Now().UTC()
	if record.DateGenerated == nil {
		record.DateGenerated = &now
	}

	query := `INSERT INTO quizzes (user_id, url, title, date_generated, scraped_content, full_quiz_data)
	VALUES (?, ?, ?, ?, ?, ?)`

	result, err := a.db.ExecContext(ctx, query,
		record.UserID,
		record.URL,
		record.Title,
		record.DateGenerated,
		toNullString(record.ScrapedContent),
		record.FullQuizData,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted quiz id: %w", err)
	}
	record.ID = id
	return nil
}

// ListAll returns record summaries newest-first. The quiz payload and raw
// markup are left unloaded; history listings never need them.
func (a *QuizDatabaseAdapter) ListAll(ctx context.Context) ([]*domain.QuizRecord, error) {
	var rows []models.Quiz
	query := `SELECT id, user_id, url, title, date_generated, '' AS full_quiz_data
	FROM quizzes ORDER BY date_generated DESC, id DESC`

	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	records := make([]*domain.QuizRecord, 0, len(rows))
	for i := range rows {
		records = append(records, toDomainRecord(&rows[i]))
	}
	return records, nil
}

// FindByID returns (nil, nil) when no record carries the identifier.
func (a *QuizDatabaseAdapter) FindByID(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	var row models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = ?`

	err := a.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find quiz by id %d: %w", id, err)
	}
	return toDomainRecord(&row), nil
}

func toDomainRecord(row *models.Quiz) *domain.QuizRecord {
	record := &domain.QuizRecord{
		ID:           row.ID,
		UserID:       row.UserID,
		URL:          row.URL,
		Title:        row.Title,
		FullQuizData: row.FullQuizData,
	}
	if row.DateGenerated.Valid {
		t := row.DateGenerated.Time
		record.DateGenerated = &t
	}
	if row.ScrapedContent.Valid {
		record.ScrapedContent = row.ScrapedContent.String
	}
	return record
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
