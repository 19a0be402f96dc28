package store

import (
	"context"
	"database/sql"
	"embed"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

// SQLite is a blob store persisted in a SQLite database.
type SQLite struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// Open opens (or creates) a SQLite blob store at the given path and
// runs pending migrations. If logger is nil the store operates
// silently.
func Open(path string, logger *zap.SugaredLogger) (*SQLite, error) {
	db, err := openDB(path, logger)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, logger); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return &SQLite{db: db, logger: logger}, nil
}

// openDB opens the database with the pragmas every Dacite connection
// uses: WAL for concurrent reads during writes, foreign keys on, and a
// bounded busy wait.
func openDB(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening blob database", "path", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}

	if logger != nil {
		logger.Infow("Blob database opened",
			"path", path,
			"wal_mode", true,
		)
	}
	return db, nil
}

// migrate applies all pending migrations in filename order.
func migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	entries, err := migrations.ReadDir("sqlite/migrations")
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}

	var migrationFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrationFiles = append(migrationFiles, entry.Name())
		}
	}
	sort.Strings(migrationFiles)

	for _, filename := range migrationFiles {
		version := strings.Split(filename, "_")[0]

		// schema_migrations is created by migration 000 itself.
		var exists bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version).Scan(&exists)
		if err != nil {
			if version != "000" {
				return errors.Newf("schema_migrations table missing, but migration is not 000: %s", filename)
			}
		} else if exists {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)",
					"migration", filename,
					"version", version,
				)
			}
			continue
		}

		sqlBytes, err := migrations.ReadFile(filepath.Join("sqlite/migrations", filename))
		if err != nil {
			return errors.Wrapf(err, "read %s", filename)
		}

		if logger != nil {
			logger.Infow("Applying migration",
				"migration", filename,
				"version", version,
			)
		}

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "begin tx for %s", filename)
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "execute %s", filename)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record %s", filename)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit %s", filename)
		}
	}

	return nil
}

// Put stores data at addr. Re-putting an existing address is a no-op.
func (s *SQLite) Put(ctx context.Context, addr hash.Hash, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO blobs (address, data, size) VALUES (?, ?, ?)",
		addr.Hex(), data, len(data),
	)
	if err != nil {
		return errors.Wrapf(err, "put blob %s", addr.Short())
	}
	if s.logger != nil {
		s.logger.Debugw("Stored blob",
			"address", addr.Hex(),
			"size", len(data),
		)
	}
	return nil
}

// Get returns the blob at addr, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, addr hash.Hash) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM blobs WHERE address = ?", addr.Hex(),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "address %s", addr.Hex())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get blob %s", addr.Short())
	}
	return data, nil
}

// Has reports whether a blob exists at addr.
func (s *SQLite) Has(ctx context.Context, addr hash.Hash) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM blobs WHERE address = ?)", addr.Hex(),
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "check blob %s", addr.Short())
	}
	return exists, nil
}

// Stats returns the number of blobs and their total size in bytes.
func (s *SQLite) Stats(ctx context.Context) (count int64, totalSize int64, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(size), 0) FROM blobs",
	).Scan(&count, &totalSize)
	if err != nil {
		return 0, 0, errors.Wrap(err, "blob stats")
	}
	return count, totalSize, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
