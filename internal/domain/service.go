package domain

import "context"

// ArticleExtractor fetches a page and turns its HTML into an Article.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (*Article, error)
}

// QuizGenerationService produces a quiz from an extracted article. The
// returned quiz already carries the deterministic overlay: its url, summary
// and sections come from the extractor, not the model.
type QuizGenerationService interface {
	GenerateQuiz(ctx context.Context, article *Article, url string) (*Quiz, error)
}

// QuizRepository is the single-table store keyed by source URL.
// FindByURL and FindByID return (nil, nil) when no row matches.
type QuizRepository interface {
	FindByURL(ctx context.Context, url string) (*QuizRecord, error)
	Save(ctx context.Context, record *QuizRecord) error
	ListAll(ctx context.Context) ([]*QuizRecord, error)
	FindByID(ctx context.Context, id int64) (*QuizRecord, error)
}
