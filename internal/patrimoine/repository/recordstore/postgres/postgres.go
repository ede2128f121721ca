package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/pgtools"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotStore keeps every collection as one row of the collections table.
type SnapshotStore struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (SnapshotStore, error) {
	connString := "postgres://" + cfg.Username + ":" + cfg.Password + "@" +
		cfg.Addr + "/" + cfg.DB + "?" + "sslmode=" + cfg.SSLmode + "&pool_max_conns=" + cfg.MaxConns

	db, err := pgtools.Connect(ctx, connString)
	if err != nil {
		return SnapshotStore{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return SnapshotStore{}, fmt.Errorf("apply migration error: %w", err)
	}

	return SnapshotStore{
		db: db,
	}, nil
}

func (s SnapshotStore) Load(ctx context.Context, c recordstore.Collection) (blob []byte, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "load")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("data").
		From("collections").
		Where(squirrel.Eq{"name": string(c)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = recordstore.ErrNotFound

			return nil, err
		}

		return nil, fmt.Errorf("scan error: %w", err)
	}

	return blob, nil
}

func (s SnapshotStore) Save(ctx context.Context, c recordstore.Collection, blob []byte) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "save")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	// Whole-snapshot upsert, last writer wins.
	query, args, err := psql.Insert("collections").
		Columns("name", "data", "updated_at").
		Values(string(c), blob, squirrel.Expr("now()")).
		Suffix("ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (s SnapshotStore) Delete(ctx context.Context, c recordstore.Collection) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("collections").
		Where(squirrel.Eq{"name": string(c)}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (s SnapshotStore) Shutdown(_ context.Context) error {
	s.db.Close()

	return nil
}
