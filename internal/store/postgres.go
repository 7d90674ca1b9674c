package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Postgres keeps every record as a JSONB document in a single table keyed by
// (collection, key).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Create(ctx context.Context, collection, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	res, err := p.db.ExecContext(ctx,
		`INSERT INTO records (collection, key, record, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (collection, key) DO NOTHING`,
		collection, key, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (p *Postgres) Read(ctx context.Context, collection, key string, out any) error {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT record FROM records WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("select record: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, collection, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	res, err := p.db.ExecContext(ctx,
		`UPDATE records SET record = $3, updated_at = $4 WHERE collection = $1 AND key = $2`,
		collection, key, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, key string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = $1 AND key = $2`,
		collection, key,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, collection string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT key FROM records WHERE collection = $1 ORDER BY key`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return keys, nil
}
