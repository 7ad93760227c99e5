package store

import (
	"context"
	"fmt"
	"time"
)

// AppendChoice inserts a choice and returns it with its assigned id.
func (db *DB) AppendChoice(ctx context.Context, c Choice) (Choice, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO choices (timestamp, category, question, choice, value, weight)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.Timestamp.UnixMilli(), string(c.Category), c.Question, c.Choice, c.Value, c.Weight)
	if err != nil {
		return Choice{}, fmt.Errorf("insert choice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Choice{}, fmt.Errorf("choice id: %w", err)
	}
	c.ID = id
	return c, nil
}

// LoadChoices returns the full choice log in insertion order.
func (db *DB) LoadChoices(ctx context.Context) ([]Choice, error) {
	return db.queryChoices(ctx, `
		SELECT id, timestamp, category, question, choice, value, weight
		FROM choices ORDER BY id
	`)
}

// ClearChoices removes every choice. Ids are not reused afterwards.
func (db *DB) ClearChoices(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM choices`); err != nil {
		return fmt.Errorf("clear choices: %w", err)
	}
	return nil
}

func (db *DB) queryChoices(ctx context.Context, query string, args ...any) ([]Choice, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	var choices []Choice
	for rows.Next() {
		var c Choice
		var ts int64
		var cat string
		if err := rows.Scan(&c.ID, &ts, &cat, &c.Question, &c.Choice, &c.Value, &c.Weight); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		c.Timestamp = time.UnixMilli(ts).UTC()
		c.Category = Category(cat)
		choices = append(choices, c)
	}
	return choices, rows.Err()
}
