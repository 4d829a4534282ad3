package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dtroode/dailyphrase/internal/model"
)

// PhraseSelector loads the active phrase set once per run.
type PhraseSelector struct {
	store model.PhraseStore
}

func NewPhraseSelector(store model.PhraseStore) *PhraseSelector {
	return &PhraseSelector{store: store}
}

// Load reads the active phrases. A failure here aborts the run.
func (s *PhraseSelector) Load(ctx context.Context) (*PhraseBook, error) {
	phrases, err := s.store.ActivePhrases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active phrases: %w", err)
	}
	return NewPhraseBook(phrases), nil
}

// PhraseBook is an immutable snapshot of the active phrases.
type PhraseBook struct {
	phrases    []model.Phrase
	byCategory map[string][]model.Phrase
	pinned     map[int]model.Phrase
}

func NewPhraseBook(phrases []model.Phrase) *PhraseBook {
	active := make([]model.Phrase, 0, len(phrases))
	for _, p := range phrases {
		if p.Active {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	book := &PhraseBook{
		phrases:    active,
		byCategory: make(map[string][]model.Phrase),
		pinned:     make(map[int]model.Phrase),
	}
	for _, p := range active {
		if p.Category != "" {
			book.byCategory[p.Category] = append(book.byCategory[p.Category], p)
		}
		if p.DayOfYear != nil {
			if _, taken := book.pinned[*p.DayOfYear]; !taken {
				book.pinned[*p.DayOfYear] = p
			}
		}
	}
	return book
}

func (b *PhraseBook) Len() int { return len(b.phrases) }

// Daily is the free-tier phrase: the one pinned to the date's day of year,
// otherwise a rotation by days since the epoch. Every caller gets the same
// phrase for the same date.
func (b *PhraseBook) Daily(date time.Time) (model.Phrase, error) {
	if len(b.phrases) == 0 {
		return model.Phrase{}, model.ErrNoPhraseAvailable
	}
	if p, ok := b.pinned[date.YearDay()]; ok {
		return p, nil
	}
	return b.phrases[rotation(epochDay(date), len(b.phrases))], nil
}

// SelectFor picks the phrase of user for date.
func (b *PhraseBook) SelectFor(user model.User, date time.Time) (model.Phrase, error) {
	switch user.Tier {
	case model.TierPremium:
		if candidates := b.byCategory[user.PreferredCategory]; user.PreferredCategory != "" && len(candidates) > 0 {
			return candidates[rotation(epochDay(date)+user.ID, len(candidates))], nil
		}
		return b.Daily(date)
	case model.TierFree:
		return b.Daily(date)
	default:
		return b.Daily(date)
	}
}

func epochDay(date time.Time) int64 {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func rotation(n int64, size int) int {
	i := n % int64(size)
	if i < 0 {
		i += int64(size)
	}
	return int(i)
}
