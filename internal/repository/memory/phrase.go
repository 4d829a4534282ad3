package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.PhraseStore = (*PhraseRepository)(nil)

type PhraseRepository struct {
	mu      sync.RWMutex
	phrases map[int64]model.Phrase
	nextID  int64
}

func NewPhraseRepository() *PhraseRepository {
	return &PhraseRepository{phrases: make(map[int64]model.Phrase)}
}

func (r *PhraseRepository) Add(p model.Phrase) model.Phrase {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	} else if p.ID > r.nextID {
		r.nextID = p.ID
	}
	r.phrases[p.ID] = p
	return p
}

func (r *PhraseRepository) ActivePhrases(ctx context.Context) ([]model.Phrase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var phrases []model.Phrase
	for _, p := range r.phrases {
		if p.Active {
			phrases = append(phrases, p)
		}
	}
	sort.Slice(phrases, func(i, j int) bool { return phrases[i].ID < phrases[j].ID })
	return phrases, nil
}
