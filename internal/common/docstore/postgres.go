package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/gym-api/internal/common/constants"
	"github.com/AlibekovAA/gym-api/internal/common/db"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

const pgUniqueViolation = "23505"

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// PostgresStore keeps each collection in its own table of (id, jsonb) rows.
type PostgresStore struct {
	pool   *pgxpool.Pool
	log    *logger.Logger
	cancel context.CancelFunc
}

func NewPostgresStore(ctx context.Context, log *logger.Logger, databaseURL string) (*PostgresStore, error) {
	pool, err := db.NewPool(ctx, log, databaseURL)
	if err != nil {
		return nil, unavailable(err)
	}

	metricsCtx, cancel := context.WithCancel(context.Background())
	db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

	return &PostgresStore{pool: pool, log: log, cancel: cancel}, nil
}

func (s *PostgresStore) Driver() string { return "postgres" }

func (s *PostgresStore) Collection(name string) Collection {
	return &pgCollection{
		name:  name,
		table: pgx.Identifier{name}.Sanitize(),
		pool:  s.pool,
	}
}

func (s *PostgresStore) EnsureCollections(ctx context.Context, specs []CollectionSpec) error {
	for _, spec := range specs {
		table := pgx.Identifier{spec.Name}.Sanitize()

		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, table)
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create collection %s: %w", spec.Name, classifyPg(err))
		}

		for _, field := range spec.UniqueFields {
			if !fieldNamePattern.MatchString(field) {
				return fmt.Errorf("create collection %s: invalid unique field %q", spec.Name, field)
			}
			index := pgx.Identifier{spec.Name + "_" + field + "_key"}.Sanitize()
			stmt := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s ((doc->>'%s'))`, index, table, field)
			if _, err := s.pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("create unique index %s.%s: %w", spec.Name, field, classifyPg(err))
			}
		}

		s.log.WithFields(ctx, logger.Fields{
			"collection": spec.Name,
			"driver":     "postgres",
			"action":     "collection_ensured",
		}).Info("collection ready")
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return classifyPg(err)
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	s.cancel()
	s.pool.Close()
	return nil
}

type pgCollection struct {
	name  string
	table string
	pool  *pgxpool.Pool
}

func (c *pgCollection) Name() string { return c.name }

func (c *pgCollection) Get(ctx context.Context, id string, out any) error {
	var raw string
	err := c.pool.QueryRow(ctx, fmt.Sprintf(`SELECT doc::text FROM %s WHERE id = $1`, c.table), id).Scan(&raw)
	if err != nil {
		return classifyPg(err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("docstore: decode %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *pgCollection) Create(ctx context.Context, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}
	_, err = c.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, c.table), id, string(raw))
	return classifyPg(err)
}

func (c *pgCollection) Replace(ctx context.Context, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: encode document: %w", err)
	}
	tag, err := c.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET doc = $2::jsonb, updated_at = now() WHERE id = $1`, c.table),
		id, string(raw),
	)
	if err != nil {
		return classifyPg(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *pgCollection) Delete(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, c.table), id)
	if err != nil {
		return classifyPg(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *pgCollection) Find(ctx context.Context, filter Filter, out any) error {
	if filter == nil {
		filter = Filter{}
	}
	rawFilter, err := json.Marshal(filter)
	if err != nil {
		return fmt.Errorf("docstore: encode filter: %w", err)
	}

	rows, err := c.pool.Query(ctx,
		fmt.Sprintf(`SELECT doc::text FROM %s WHERE doc @> $1::jsonb ORDER BY seq`, c.table),
		string(rawFilter),
	)
	if err != nil {
		return classifyPg(err)
	}
	defer rows.Close()

	docs := make([]string, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return classifyPg(err)
		}
		docs = append(docs, raw)
	}
	if err := rows.Err(); err != nil {
		return classifyPg(err)
	}

	if err := json.Unmarshal([]byte("["+strings.Join(docs, ",")+"]"), out); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", c.name, err)
	}
	return nil
}

func classifyPg(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return errors.Join(ErrConflict, err)
	}
	return unavailable(err)
}
