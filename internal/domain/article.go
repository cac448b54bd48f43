package domain

// Article is the transient result of extracting a Wikipedia page. It is
// rebuilt on every request and never persisted directly; only RawHTML and a
// few derived fields survive in the stored QuizRecord.
type Article struct {
	Title          string
	Text           string
	Sections       []string
	Summary        string
	StructuredText string
	RawHTML        string
}
