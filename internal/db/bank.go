package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GetBlob returns the serialized value stored under key, or (nil, nil) when
// no row exists.
func (db *DB) GetBlob(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		"SELECT data FROM bank_data WHERE key = $1",
		key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (db *DB) PutBlob(ctx context.Context, key string, data []byte) error {
	_, err := db.pool.Exec(ctx,
		"INSERT INTO bank_data (key, data) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data",
		key, data,
	)
	return err
}

func (db *DB) DeleteBlob(ctx context.Context, key string) error {
	_, err := db.pool.Exec(ctx,
		"DELETE FROM bank_data WHERE key = $1",
		key,
	)
	return err
}
