package validation

import (
	"strings"

	"wiki-quiz/internal/domain"
)

// Validator checks request inputs before any network work happens.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateArticleURL rejects empty URLs and anything that is not a
// Wikipedia article link. The check is an exact substring match, the same
// accepted-input set as the rest of the pipeline relies on.
func (v *Validator) ValidateArticleURL(url string) error {
	if url == "" || !strings.Contains(url, "wikipedia.org/wiki/") {
		return domain.NewValidationError("Provide a valid Wikipedia article URL.")
	}
	return nil
}
