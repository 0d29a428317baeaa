package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pielsanaia/pielsana/pkg/models"
)

const conditionColumns = `id, slug, title, summary, description, causes, symptoms, treatment, prevention, image, created_at, updated_at`

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Conditions ---

func (s *PostgresStore) GetCondition(ctx context.Context, slug string) (*models.ConditionInfo, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+conditionColumns+` FROM conditions WHERE slug = $1`, slug)
	info, err := scanCondition(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get condition: %w", err)
	}
	return info, nil
}

func (s *PostgresStore) ListConditions(ctx context.Context) ([]*models.ConditionInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+conditionColumns+` FROM conditions ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	defer rows.Close()

	var out []*models.ConditionInfo
	for rows.Next() {
		info, err := scanCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// UpsertCondition inserts or replaces the record keyed by slug. The returned
// copy carries the persisted id and timestamps.
func (s *PostgresStore) UpsertCondition(ctx context.Context, info *models.ConditionInfo) (*models.ConditionInfo, error) {
	id := info.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO conditions (id, slug, title, summary, description, causes, symptoms, treatment, prevention, image)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (slug) DO UPDATE SET
		   title = EXCLUDED.title,
		   summary = EXCLUDED.summary,
		   description = EXCLUDED.description,
		   causes = EXCLUDED.causes,
		   symptoms = EXCLUDED.symptoms,
		   treatment = EXCLUDED.treatment,
		   prevention = EXCLUDED.prevention,
		   image = EXCLUDED.image,
		   updated_at = NOW()
		 RETURNING `+conditionColumns,
		id, info.Slug, info.Title, info.Summary, info.Description,
		nonNil(info.Causes), nonNil(info.Symptoms), nonNil(info.Treatment), nonNil(info.Prevention),
		info.Image)

	saved, err := scanCondition(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("upsert condition: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) DeleteCondition(ctx context.Context, slug string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conditions WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete condition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCondition(row pgx.Row) (*models.ConditionInfo, error) {
	var c models.ConditionInfo
	if err := row.Scan(&c.ID, &c.Slug, &c.Title, &c.Summary, &c.Description,
		&c.Causes, &c.Symptoms, &c.Treatment, &c.Prevention, &c.Image,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Source = models.ConditionSourceStore
	return &c, nil
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
