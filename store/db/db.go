package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}

	return &DB{d}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}

//go:embed schema/LATEST_SCHEMA.sql
var schemaFS embed.FS

const latestSchemaFileName = "schema/LATEST_SCHEMA.sql"

// Migrate applies the latest schema. The schema file only contains
// CREATE IF NOT EXISTS statements, so it is safe to run on every start.
func (d *DB) Migrate(ctx context.Context) error {
	buf, err := schemaFS.ReadFile(latestSchemaFileName)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %q", latestSchemaFileName)
	}

	stmt := string(buf)
	if err := d.execute(ctx, stmt); err != nil {
		return errors.Wrapf(err, "failed to apply latest schema: %s", stmt)
	}
	return nil
}

// execute runs a single SQL statement within a transaction.
func (d *DB) execute(ctx context.Context, stmt string) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}

	return tx.Commit()
}
