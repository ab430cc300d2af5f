package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const queryTimeout = 5 * time.Second

const createTable = `create table if not exists kv_store (
	k varchar(191) not null primary key,
	v mediumtext not null,
	updated_at timestamp not null default current_timestamp on update current_timestamp
)`

// SQL stores values in a MySQL table.
type SQL struct {
	db *sql.DB
}

// OpenMySQL connects with dsn (go-sql-driver format) and creates the table.
func OpenMySQL(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	s, err := NewSQL(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an open database and creates the table if missing.
func NewSQL(ctx context.Context, db *sql.DB) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create kv_store: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var v string
	err := s.db.QueryRowContext(ctx, `select v from kv_store where k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQL) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`insert into kv_store (k, v) values (?, ?) on duplicate key update v = values(v)`,
		key, value)
	return err
}

func (s *SQL) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `delete from kv_store where k = ?`, key)
	return err
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.db.Close()
}
