package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource loads definitions stored as jsonb documents in the cards
// table created by the catalog migrations.
type PostgresSource struct {
	Pool *pgxpool.Pool
}

func (s PostgresSource) Name() string { return "postgres" }

func (s PostgresSource) Load(ctx context.Context) ([]Definition, error) {
	rows, err := s.Pool.Query(ctx, `SELECT body FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		var def Definition
		if err := json.Unmarshal(body, &def); err != nil {
			return nil, fmt.Errorf("decode card body: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return defs, nil
}

// Store upserts definitions into the cards table in one transaction.
// It returns the number of rows written.
func Store(ctx context.Context, pool *pgxpool.Pool, defs []Definition) (int, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n := 0
	for i := range defs {
		def := &defs[i]
		body, err := json.Marshal(def)
		if err != nil {
			return n, fmt.Errorf("encode card %d: %w", def.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO cards (id, name, card_type, cost, token, body)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				card_type = EXCLUDED.card_type,
				cost = EXCLUDED.cost,
				token = EXCLUDED.token,
				body = EXCLUDED.body`,
			def.ID, def.Name, string(def.Type), def.Cost, def.Token, body)
		if err != nil {
			return n, fmt.Errorf("upsert card %d: %w", def.ID, err)
		}
		n++
	}
	if err := tx.Commit(ctx); err != nil {
		return n, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}
