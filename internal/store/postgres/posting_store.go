// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobpulse/ingestor/internal/ingest"
)

// Expected schema:
//
//	CREATE TABLE job_postings (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    source TEXT NOT NULL,
//	    external_id TEXT NOT NULL,
//	    title TEXT NOT NULL,
//	    company TEXT NOT NULL,
//	    location TEXT,
//	    category_id TEXT NOT NULL,
//	    description TEXT,
//	    compensation JSONB,
//	    url TEXT NOT NULL,
//	    fingerprint TEXT NOT NULL,
//	    status TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL,
//	    UNIQUE (source, external_id)
//	);

// PoolConfig controls the Postgres connection pool.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostingStore implements ingest.PostingStore on Postgres.
type PostingStore struct {
	pool dbPool
	sb   sq.StatementBuilderType
}

// NewPool builds a pgx pool from the config.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// NewPostingStore constructs a store from an existing pool (pgxpool in
// production, pgxmock in tests).
func NewPostingStore(pool dbPool) (*PostingStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &PostingStore{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Close releases the underlying pool resources.
func (s *PostingStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// FindByExternalID looks a posting up by its dedupe key.
func (s *PostingStore) FindByExternalID(ctx context.Context, source, externalID string) (ingest.JobPosting, error) {
	query, args, err := s.sb.
		Select("id", "source", "external_id", "title", "company", "location",
			"category_id", "description", "compensation", "url", "fingerprint",
			"status", "created_at", "updated_at").
		From("job_postings").
		Where(sq.Eq{"source": source, "external_id": externalID}).
		ToSql()
	if err != nil {
		return ingest.JobPosting{}, fmt.Errorf("build select: %w", err)
	}

	var (
		posting  ingest.JobPosting
		status   string
		compJSON []byte
	)
	row := s.pool.QueryRow(ctx, query, args...)
	err = row.Scan(
		&posting.ID, &posting.Source, &posting.ExternalID, &posting.Title,
		&posting.Company, &posting.Location, &posting.CategoryID,
		&posting.Description, &compJSON, &posting.URL, &posting.Fingerprint,
		&status, &posting.CreatedAt, &posting.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ingest.JobPosting{}, ingest.ErrNotFound
	}
	if err != nil {
		return ingest.JobPosting{}, fmt.Errorf("select posting: %w", err)
	}
	posting.Status = ingest.PostingStatus(status)
	if len(compJSON) > 0 {
		if err := json.Unmarshal(compJSON, &posting.Compensation); err != nil {
			return ingest.JobPosting{}, fmt.Errorf("decode compensation: %w", err)
		}
	}
	return posting, nil
}

// Insert writes a new posting row and returns the assigned id.
func (s *PostingStore) Insert(ctx context.Context, posting ingest.JobPosting) (string, error) {
	compJSON, err := json.Marshal(posting.Compensation)
	if err != nil {
		return "", fmt.Errorf("marshal compensation: %w", err)
	}
	query, args, err := s.sb.
		Insert("job_postings").
		Columns("source", "external_id", "title", "company", "location",
			"category_id", "description", "compensation", "url", "fingerprint",
			"status", "created_at", "updated_at").
		Values(posting.Source, posting.ExternalID, posting.Title, posting.Company,
			posting.Location, posting.CategoryID, posting.Description, compJSON,
			posting.URL, posting.Fingerprint, string(posting.Status),
			posting.CreatedAt, posting.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	var id string
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert posting: %w", err)
	}
	return id, nil
}

// Update overwrites the mutable fields of an existing posting. CreatedAt,
// source and external id never change after first insert.
func (s *PostingStore) Update(ctx context.Context, id string, posting ingest.JobPosting) error {
	compJSON, err := json.Marshal(posting.Compensation)
	if err != nil {
		return fmt.Errorf("marshal compensation: %w", err)
	}
	query, args, err := s.sb.
		Update("job_postings").
		Set("title", posting.Title).
		Set("company", posting.Company).
		Set("location", posting.Location).
		Set("category_id", posting.CategoryID).
		Set("description", posting.Description).
		Set("compensation", compJSON).
		Set("url", posting.URL).
		Set("fingerprint", posting.Fingerprint).
		Set("status", string(posting.Status)).
		Set("updated_at", posting.UpdatedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update posting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ingest.ErrNotFound
	}
	return nil
}
