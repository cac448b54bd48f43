package models

import (
	"database/sql"
)

// Quiz is the row shape of the quizzes table. user_id is never read by the
// application; it stays for database compatibility.
type Quiz struct {
	ID             int64          `db:"id"`
	UserID         int64          `db:"user_id"`
	URL            string         `db:"url"`
	Title          string         `db:"title"`
	DateGenerated  sql.NullTime   `db:"date_generated"`
	ScrapedContent sql.NullString `db:"scraped_content"`
	FullQuizData   string         `db:"full_quiz_data"`
}
