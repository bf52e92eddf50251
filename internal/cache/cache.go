package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wordharvest/wordharvest/internal/model"
)

// DefaultTTL is how long a cached response stays valid. Search-volume data
// drifts slowly, so a week-old response is still useful for discovery.
const DefaultTTL = 7 * 24 * time.Hour

// DefaultJanitorInterval is how often the background sweep removes
// expired rows.
const DefaultJanitorInterval = 5 * time.Minute

// dbFileName is the SQLite file created inside the cache directory.
const dbFileName = "wordharvest_cache.db"

// Cache is a durable phrase→response store with TTL-based expiry.
//
// Design decision: One database file holds all cached responses rather
// than one file per seed. Phrases recur across seeds and sessions, and a
// single table keeps the dedup benefit global.
type Cache struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// ttl is the time-to-live applied to new entries.
	ttl time.Duration

	// writeMu funnels all mutations through a single writer so concurrent
	// population from multiple fetch workers cannot interleave statements.
	// Reads go straight to the connection and may run concurrently.
	writeMu sync.Mutex

	logger *slog.Logger
}

// Options configures Cache behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent reads.
	EnableWAL bool

	// TTL is the time-to-live for new entries. Zero means DefaultTTL.
	TTL time.Duration

	// Logger receives cache diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		TTL:               DefaultTTL,
	}
}

// Open opens or creates the response cache in the given directory.
func Open(dir string, opts Options) (*Cache, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite supports only one writer; a single pooled connection avoids
	// SQLITE_BUSY churn under concurrent workers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cache{
		db:     db,
		dbPath: dbPath,
		ttl:    ttl,
		logger: logger,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := c.createTable(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the path of the underlying database file.
func (c *Cache) Path() string {
	return c.dbPath
}

// createTable creates the cache schema if it doesn't exist.
// written_at is a float unix timestamp so sub-second TTLs work in tests.
func (c *Cache) createTable() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phrase TEXT UNIQUE NOT NULL,
		payload TEXT NOT NULL,
		written_at REAL NOT NULL,
		ttl_seconds REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_phrase ON responses(phrase);
	CREATE INDEX IF NOT EXISTS idx_responses_written_at ON responses(written_at);
	`

	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// unixSeconds returns the current time as float unix seconds, matching the
// written_at column representation.
func unixSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// payload is the serialized form of a cached response.
type payload struct {
	Results      []model.Suggestion `json:"results"`
	Associations []model.Suggestion `json:"associations"`
}

// Get retrieves the cached response for a phrase, or (nil, nil) on a miss.
// An entry past its TTL is treated as a miss and deleted in the background
// rather than returned.
func (c *Cache) Get(ctx context.Context, phrase string) (*model.Response, error) {
	var (
		raw        string
		writtenAt  float64
		ttlSeconds float64
	)

	err := c.db.QueryRowContext(ctx,
		`SELECT payload, written_at, ttl_seconds FROM responses WHERE phrase = ?`,
		phrase,
	).Scan(&raw, &writtenAt, &ttlSeconds)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	now := unixSeconds()
	if now-writtenAt > ttlSeconds {
		// Lazy expiry: drop the stale row and report a miss.
		if err := c.Delete(ctx, phrase); err != nil {
			c.logger.Debug("failed to delete expired cache entry",
				"phrase", phrase,
				"error", err,
			)
		}
		return nil, nil
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse cache payload: %w", err)
	}

	return &model.Response{
		Results:      p.Results,
		Associations: p.Associations,
		StatusCode:   200,
	}, nil
}

// Set stores a response for a phrase, replacing any existing entry and
// restarting its TTL.
func (c *Cache) Set(ctx context.Context, phrase string, resp *model.Response) error {
	raw, err := json.Marshal(payload{
		Results:      resp.Results,
		Associations: resp.Associations,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize cache payload: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	now := unixSeconds()
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (phrase, payload, written_at, ttl_seconds)
		 VALUES (?, ?, ?, ?)`,
		phrase, string(raw), now, c.ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for a phrase. Deleting a missing phrase is not
// an error.
func (c *Cache) Delete(ctx context.Context, phrase string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.db.ExecContext(ctx, `DELETE FROM responses WHERE phrase = ?`, phrase); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (c *Cache) Clear(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.db.ExecContext(ctx, `DELETE FROM responses`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Stats summarizes cache contents.
type Stats struct {
	// Total is the number of stored entries, valid or not.
	Total int `json:"total"`

	// Valid is the number of entries within their TTL.
	Valid int `json:"valid"`

	// Expired is the number of entries past their TTL awaiting sweep.
	Expired int `json:"expired"`
}

// Stats returns entry counts.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats

	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&s.Total); err != nil {
		return Stats{}, fmt.Errorf("failed to count cache entries: %w", err)
	}

	now := unixSeconds()
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM responses WHERE (? - written_at) <= ttl_seconds`, now,
	).Scan(&s.Valid)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count valid cache entries: %w", err)
	}

	s.Expired = s.Total - s.Valid
	return s, nil
}

// Sweep deletes all entries past their TTL and returns how many were removed.
func (c *Cache) Sweep(ctx context.Context) (int64, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	now := unixSeconds()
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM responses WHERE (? - written_at) > ttl_seconds`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep cache: %w", err)
	}
	return res.RowsAffected()
}

// StartJanitor launches a background goroutine that sweeps expired entries
// on the given interval until the context is cancelled. A non-positive
// interval uses DefaultJanitorInterval.
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := c.Sweep(ctx)
				if err != nil {
					c.logger.Debug("cache sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					c.logger.Debug("cache sweep removed expired entries", "removed", removed)
				}
			}
		}
	}()
}
