// Package sqlitestore persists entities, their typed attributes and the
// per-MIME type registries in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"metadata-enricher/internal/convert"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
	"metadata-enricher/internal/store"
)

const component = "SQLiteStore"

// Store is a SQLite backed metadata store.
type Store struct {
	conn   *sql.DB
	filter store.Filter
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFilter replaces the internal attribute filter.
func WithFilter(f store.Filter) Option {
	return func(s *Store) { s.filter = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapPersist(err, component, "Open", "create db directory")
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, errors.WrapPersist(err, component, "Open", "open sqlite")
	}
	// SQLite supports a single writer
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, filter: store.DefaultFilter(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, errors.WrapPersist(err, component, "Open", "migrate")
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			ref TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			mime_type TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS attributes (
			ref TEXT NOT NULL REFERENCES entities(ref) ON DELETE CASCADE,
			name TEXT NOT NULL,
			pos INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			kind TEXT NOT NULL,
			value BLOB,
			PRIMARY KEY (ref, name, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attributes_order ON attributes(ref, pos, idx)`,
		`CREATE TABLE IF NOT EXISTS attr_types (
			mime_type TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (mime_type, name)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}

	return nil
}

// Register adds an entity or updates its name and MIME type.
func (s *Store) Register(ctx context.Context, e store.Entity) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO entities (ref, name, mime_type) VALUES (?, ?, ?)
		 ON CONFLICT(ref) DO UPDATE SET name = excluded.name, mime_type = excluded.mime_type,
		 updated_at = CURRENT_TIMESTAMP`,
		e.Ref, e.Name, e.MimeType)
	if err != nil {
		return errors.WrapPersist(err, component, "Register", "upsert entity "+e.Ref)
	}

	return nil
}

// Entity returns the stored entity.
func (s *Store) Entity(ctx context.Context, ref string) (store.Entity, error) {
	e := store.Entity{Ref: ref}

	err := s.conn.QueryRowContext(ctx,
		`SELECT name, mime_type FROM entities WHERE ref = ?`, ref).Scan(&e.Name, &e.MimeType)
	if errors.Is(err, sql.ErrNoRows) {
		return e, errors.WrapPersist(fmt.Errorf("%w: %s", errors.ErrEntityNotFound, ref),
			component, "Entity", "lookup entity")
	}

	if err != nil {
		return e, errors.WrapPersist(err, component, "Entity", "query entity")
	}

	return e, nil
}

// Entities lists all registered entities ordered by ref.
func (s *Store) Entities(ctx context.Context) ([]store.Entity, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT ref, name, mime_type FROM entities ORDER BY ref`)
	if err != nil {
		return nil, errors.WrapPersist(err, component, "Entities", "query entities")
	}
	defer rows.Close()

	var out []store.Entity

	for rows.Next() {
		var e store.Entity
		if err := rows.Scan(&e.Ref, &e.Name, &e.MimeType); err != nil {
			return nil, errors.WrapPersist(err, component, "Entities", "scan entity")
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.WrapPersist(err, component, "Entities", "iterate entities")
	}

	return out, nil
}

// SetTypes replaces the expected kinds registered for a MIME type.
func (s *Store) SetTypes(ctx context.Context, mimeType string, reg convert.Registry) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapPersist(err, component, "SetTypes", "begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attr_types WHERE mime_type = ?`, mimeType); err != nil {
		return errors.WrapPersist(err, component, "SetTypes", "clear types")
	}

	for name, kind := range reg {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attr_types (mime_type, name, kind) VALUES (?, ?, ?)`,
			mimeType, name, kindName(kind)); err != nil {
			return errors.WrapPersist(err, component, "SetTypes", "insert type "+name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapPersist(err, component, "SetTypes", "commit")
	}

	return nil
}

// TypeRegistryFor returns the registry of the entity's MIME type.
func (s *Store) TypeRegistryFor(ctx context.Context, ref string) (convert.Registry, error) {
	e, err := s.Entity(ctx, ref)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT name, kind FROM attr_types WHERE mime_type = ?`, e.MimeType)
	if err != nil {
		return nil, errors.WrapPersist(err, component, "TypeRegistryFor", "query types")
	}
	defer rows.Close()

	reg := make(convert.Registry)

	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, errors.WrapPersist(err, component, "TypeRegistryFor", "scan type")
		}

		k, err := record.ParseKind(kind)
		if err != nil {
			s.logger.Warn("ignoring unknown registered kind", "mime_type", e.MimeType, "name", name, "kind", kind)
			continue
		}

		reg[name] = k
	}

	if err := rows.Err(); err != nil {
		return nil, errors.WrapPersist(err, component, "TypeRegistryFor", "iterate types")
	}

	return reg, nil
}

// RawRecord returns every stored attribute, internal ones included.
func (s *Store) RawRecord(ctx context.Context, ref string) (*record.Record, error) {
	if _, err := s.Entity(ctx, ref); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT name, kind, value FROM attributes WHERE ref = ? ORDER BY pos, idx`, ref)
	if err != nil {
		return nil, errors.WrapPersist(err, component, "ReadRecord", "query attributes")
	}
	defer rows.Close()

	rec := record.New()

	for rows.Next() {
		var (
			name, kind string
			data       []byte
		)

		if err := rows.Scan(&name, &kind, &data); err != nil {
			return nil, errors.WrapPersist(err, component, "ReadRecord", "scan attribute")
		}

		v, err := decodeValue(kind, data)
		if err != nil {
			s.logger.Warn("skipping undecodable attribute", "ref", ref, "name", name, "error", err)
			continue
		}

		if err := rec.Add(name, v); err != nil {
			s.logger.Warn("skipping attribute value", "ref", ref, "name", name, "error", err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, errors.WrapPersist(err, component, "ReadRecord", "iterate attributes")
	}

	return rec, nil
}

// ReadRecord returns the visible attributes plus the name pseudo-field.
func (s *Store) ReadRecord(ctx context.Context, ref string) (*record.Record, error) {
	e, err := s.Entity(ctx, ref)
	if err != nil {
		return nil, err
	}

	raw, err := s.RawRecord(ctx, ref)
	if err != nil {
		return nil, err
	}

	return s.filter.View(raw, e.Name), nil
}

// WriteRecord stores the fields of rec in one transaction; with overwrite
// unset existing attributes are kept.
func (s *Store) WriteRecord(ctx context.Context, ref string, rec *record.Record, overwrite bool) error {
	raw, err := s.RawRecord(ctx, ref)
	if err != nil {
		return err
	}

	fields := store.Plan(rec, overwrite, raw.Has)
	if len(fields) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapPersist(err, component, "WriteRecord", "begin transaction")
	}
	defer tx.Rollback()

	for _, f := range fields {
		if err := writeField(ctx, tx, ref, f); err != nil {
			return errors.WrapPersist(err, component, "WriteRecord", "write "+f.Name)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE entities SET updated_at = CURRENT_TIMESTAMP WHERE ref = ?`, ref); err != nil {
		return errors.WrapPersist(err, component, "WriteRecord", "touch entity")
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapPersist(err, component, "WriteRecord", "commit")
	}

	return nil
}

// writeField replaces the values of one attribute, keeping its position.
func writeField(ctx context.Context, tx *sql.Tx, ref string, f record.Field) error {
	var pos int64

	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(
			(SELECT MIN(pos) FROM attributes WHERE ref = ? AND name = ?),
			(SELECT COALESCE(MAX(pos), -1) + 1 FROM attributes WHERE ref = ?))`,
		ref, f.Name, ref).Scan(&pos)
	if err != nil {
		return fmt.Errorf("position: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM attributes WHERE ref = ? AND name = ?`, ref, f.Name); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	for i, v := range f.Values {
		data, err := encodeValue(v)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attributes (ref, name, pos, idx, kind, value) VALUES (?, ?, ?, ?, ?, ?)`,
			ref, f.Name, pos, i, kindName(v.Kind()), data); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
	}

	return nil
}

// Rename changes the entity's name.
func (s *Store) Rename(ctx context.Context, ref, newName string) error {
	if strings.TrimSpace(newName) == "" || strings.ContainsRune(newName, '/') {
		return errors.WrapPersist(fmt.Errorf("%w: invalid name %q", errors.ErrBadValue, newName),
			component, "Rename", "validate name")
	}

	res, err := s.conn.ExecContext(ctx,
		`UPDATE entities SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE ref = ?`, newName, ref)
	if err != nil {
		return errors.WrapPersist(err, component, "Rename", "update entity")
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return errors.WrapPersist(fmt.Errorf("%w: %s", errors.ErrEntityNotFound, ref),
			component, "Rename", "lookup entity")
	}

	return nil
}
