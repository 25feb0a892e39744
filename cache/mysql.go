package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MySQLStore хранит артефакты в таблице MySQL, значения сжаты snappy
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore создает новый экземпляр MySQLStore
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// CreateTable создает таблицу артефактов, если она не существует
func (s *MySQLStore) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS forecast_artifacts (
		artifact_key VARCHAR(512) PRIMARY KEY,
		artifact_value LONGBLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка при создании таблицы forecast_artifacts: %w", err)
	}
	return nil
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT artifact_value FROM forecast_artifacts WHERE artifact_key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при чтении артефакта %q: %w", key, err)
	}
	return Decompress(value)
}

func (s *MySQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
	INSERT INTO forecast_artifacts (artifact_key, artifact_value)
	VALUES (?, ?)
	ON DUPLICATE KEY UPDATE artifact_value = VALUES(artifact_value)
	`

	if _, err := s.db.ExecContext(ctx, query, key, Compress(value)); err != nil {
		return fmt.Errorf("ошибка при записи артефакта %q: %w", key, err)
	}
	return nil
}
