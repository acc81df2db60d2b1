package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/shramsetu/ncosearch/domain/audit"
	"github.com/shramsetu/ncosearch/domain/occupation"
	"github.com/shramsetu/ncosearch/domain/search"
	"github.com/shramsetu/ncosearch/internal/domain"
)

// maxCommentLength bounds free-text feedback comments.
const maxCommentLength = 1000

// Feedback validates and records user feedback on search results.
type Feedback struct {
	store            audit.Store
	disableUALogging bool
}

// NewFeedback creates a Feedback service.
func NewFeedback(store audit.Store, disableUALogging bool) *Feedback {
	return &Feedback{store: store, disableUALogging: disableUALogging}
}

// Submit validates the feedback and queues it on the feedback stream.
func (f *Feedback) Submit(query, selectedCode string, helpful bool, comments, userAgent string) error {
	if query == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrValidation)
	}
	if n := utf8.RuneCountInString(query); n > search.MaxQueryLength {
		return fmt.Errorf("%w: query length %d exceeds %d characters", domain.ErrValidation, n, search.MaxQueryLength)
	}
	if selectedCode != "" && !occupation.ValidCode(selectedCode) {
		return fmt.Errorf("%w: malformed occupation code %q", domain.ErrValidation, selectedCode)
	}
	if n := utf8.RuneCountInString(comments); n > maxCommentLength {
		return fmt.Errorf("%w: comments length %d exceeds %d characters", domain.ErrValidation, n, maxCommentLength)
	}

	entry := audit.NewFeedbackEntry(query, selectedCode, helpful, comments)
	if !f.disableUALogging {
		entry.UserAgent = userAgent
	}
	f.store.AppendFeedback(entry)
	return nil
}
