package model

import (
	"context"
	"time"
)

// PhraseStore is the read side of the external phrase store.
type PhraseStore interface {
	// ActivePhrases returns active phrases ordered by id.
	ActivePhrases(ctx context.Context) ([]Phrase, error)
}

// Phrase is a curated phrase of the day.
type Phrase struct {
	ID       int64
	Text     string
	Meaning  string
	Example  string
	Category string
	// CreatedBy is a weak reference: the phrase outlives its author.
	CreatedBy *int64
	Active    bool
	// DayOfYear pins the phrase to a calendar day (1..366) for the free policy.
	DayOfYear *int
	CreatedAt time.Time
}
