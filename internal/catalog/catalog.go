package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	terrors "github.com/tessera-db/tessera/internal/errors"
)

// ArrayRecord represents a registered array in the catalog.
type ArrayRecord struct {
	ArrayID    string
	URI        string
	ObjectPath string
	CodecID    uint8
	Checksum   uint64
	SizeBytes  int64
	CreatedAt  time.Time
}

// Catalog manages array registrations in catalog.db.
type Catalog interface {
	// Register adds a new array. Fails with ARRAY_ALREADY_EXISTS if an
	// array is already registered at the record's uri.
	Register(ctx context.Context, rec *ArrayRecord) error

	// Get retrieves the registration for a uri. Fails with
	// ARRAY_NOT_FOUND if no array is registered there.
	Get(ctx context.Context, uri string) (*ArrayRecord, error)

	// Exists checks whether an array is registered at a uri.
	Exists(ctx context.Context, uri string) (bool, error)

	// List returns all registered arrays in creation order.
	List(ctx context.Context) ([]*ArrayRecord, error)

	// Close closes the catalog database connection.
	Close() error
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
	mu sync.Mutex // serializes writes; reads go through SQLite WAL snapshots
}

// Open opens (creating if necessary) the catalog database at dbPath.
func Open(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "failed to open catalog database", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c := &SQLiteCatalog{db: db}
	for _, stmt := range AllSchemaSQL() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "failed to initialize catalog schema", err)
		}
	}
	return c, nil
}

// Register adds a new array registration.
func (c *SQLiteCatalog) Register(ctx context.Context, rec *ArrayRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO arrays (array_id, uri, object_path, codec, checksum, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ArrayID, rec.URI, rec.ObjectPath, int64(rec.CodecID),
		int64(rec.Checksum), rec.SizeBytes, rec.CreatedAt.Unix(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return terrors.NewCatalogError(terrors.CodeArrayExists,
				fmt.Sprintf("array already registered at %s", rec.URI), err)
		}
		return terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "failed to register array", err)
	}
	return nil
}

// Get retrieves the registration for a uri.
func (c *SQLiteCatalog) Get(ctx context.Context, uri string) (*ArrayRecord, error) {
	var rec ArrayRecord
	var codec, checksum, createdAt int64

	err := c.db.QueryRowContext(ctx, `
		SELECT array_id, uri, object_path, codec, checksum, size_bytes, created_at
		FROM arrays WHERE uri = ?`, uri,
	).Scan(&rec.ArrayID, &rec.URI, &rec.ObjectPath, &codec, &checksum, &rec.SizeBytes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, terrors.NewCatalogError(terrors.CodeArrayNotFound,
				fmt.Sprintf("no array registered at %s", uri), nil)
		}
		return nil, terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "failed to query array", err)
	}

	rec.CodecID = uint8(codec)
	rec.Checksum = uint64(checksum)
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

// Exists checks whether an array is registered at a uri.
func (c *SQLiteCatalog) Exists(ctx context.Context, uri string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, "SELECT 1 FROM arrays WHERE uri = ?", uri).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "failed to query array", err)
	}
	return true, nil
}

// List returns all registered arrays in creation order.
func (c *SQLiteCatalog) List(ctx context.Context) ([]*ArrayRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT array_id, uri, object_path, codec, checksum, size_bytes, created_at
		FROM arrays ORDER BY created_at ASC, uri ASC`)
	if err != nil {
		return nil, terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "failed to list arrays", err)
	}
	defer rows.Close()

	var records []*ArrayRecord
	for rows.Next() {
		var rec ArrayRecord
		var codec, checksum, createdAt int64
		if err := rows.Scan(&rec.ArrayID, &rec.URI, &rec.ObjectPath, &codec, &checksum, &rec.SizeBytes, &createdAt); err != nil {
			return nil, terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "failed to scan array row", err)
		}
		rec.CodecID = uint8(codec)
		rec.Checksum = uint64(checksum)
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, terrors.NewCatalogError(terrors.CodeCatalogUnavailable, "error iterating arrays", err)
	}
	return records, nil
}

// Close closes the catalog database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
