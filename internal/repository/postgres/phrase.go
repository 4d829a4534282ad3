package postgres

import (
	"context"
	"fmt"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.PhraseStore = (*PhraseRepository)(nil)

type PhraseRepository struct {
	db *Connection
}

func NewPhraseRepository(db *Connection) *PhraseRepository {
	return &PhraseRepository{db: db}
}

func (r *PhraseRepository) ActivePhrases(ctx context.Context) ([]model.Phrase, error) {
	const query = `
        SELECT id, text, meaning, example, category, created_by, active, day_of_year, created_at
        FROM phrases WHERE active ORDER BY id
    `
	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active phrases: %w", err)
	}
	defer rows.Close()

	var phrases []model.Phrase
	for rows.Next() {
		var p model.Phrase
		err := rows.Scan(&p.ID, &p.Text, &p.Meaning, &p.Example, &p.Category,
			&p.CreatedBy, &p.Active, &p.DayOfYear, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phrase: %w", err)
		}
		phrases = append(phrases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate phrases: %w", err)
	}

	return phrases, nil
}
