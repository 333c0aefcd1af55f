package isrsqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mohsenKh75/next-patterns/interfaces"
)

// Internal implementation of the PersistentCacheStore interface for SQLite.
type sqliteCacheStoreImpl struct {
	db       *sql.DB
	table    string
	filePath string
	loggers  ldlog.Loggers
}

func newSQLiteCacheStoreImpl(builder *CacheStoreBuilder, loggers ldlog.Loggers) (*sqliteCacheStoreImpl, error) {
	impl := &sqliteCacheStoreImpl{
		table:    builder.table,
		filePath: builder.filePath,
		loggers:  loggers,
	}
	impl.loggers.SetPrefix("SQLiteCacheStore:")

	if impl.filePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(impl.filePath), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", impl.filePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a ":memory:" database exists per connection, and SQLite serializes writers anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		tags TEXT NOT NULL,
		stored_at INTEGER NOT NULL,
		revalidate INTEGER NOT NULL
	)`, impl.table)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s table: %w", impl.table, err)
	}
	impl.db = db
	impl.loggers.Infof("Using database: %s", impl.filePath)
	return impl, nil
}

func (s *sqliteCacheStoreImpl) Get(ctx context.Context, key string) (interfaces.CacheEntry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT payload, tags, stored_at, revalidate FROM %s WHERE key = ?`, s.table), key)
	var (
		payload    []byte
		tagsJSON   string
		storedAt   int64
		revalidate int64
	)
	if err := row.Scan(&payload, &tagsJSON, &storedAt, &revalidate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if s.loggers.IsDebugEnabled() {
				s.loggers.Debugf("Key: %s not found", key)
			}
			return interfaces.CacheEntry{}, false, nil
		}
		return interfaces.CacheEntry{}, false, err
	}
	tags, err := unmarshalTags([]byte(tagsJSON))
	if err != nil {
		return interfaces.CacheEntry{}, false, fmt.Errorf("failed to unmarshal tags of key %s: %w", key, err)
	}
	return interfaces.CacheEntry{
		Key:        key,
		Payload:    payload,
		Tags:       tags,
		StoredAt:   time.UnixMilli(storedAt),
		Revalidate: time.Duration(revalidate) * time.Millisecond,
	}, true, nil
}

func (s *sqliteCacheStoreImpl) Set(ctx context.Context, entry interfaces.CacheEntry) error {
	tagsJSON, err := marshalTags(entry.Tags)
	if err != nil {
		return err // COVERAGE: can't happen for a string slice
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s(key, payload, tags, stored_at, revalidate)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, tags=excluded.tags,
			stored_at=excluded.stored_at, revalidate=excluded.revalidate`, s.table),
		entry.Key, entry.Payload, string(tagsJSON), entry.StoredAt.UnixMilli(), entry.Revalidate.Milliseconds())
	if err != nil {
		return fmt.Errorf("upsert %s: %w", entry.Key, err)
	}
	return nil
}

func (s *sqliteCacheStoreImpl) Delete(ctx context.Context, keys ...string) (retErr error) {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.table)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, stmt, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *sqliteCacheStoreImpl) DeleteTag(ctx context.Context, tag string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT DISTINCT %[1]s.key FROM %[1]s, json_each(%[1]s.tags) WHERE json_each.value = ?`, s.table), tag)
	if err != nil {
		return nil, fmt.Errorf("select tag %s: %w", tag, err)
	}
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan: %w", err)
		}
		keys = append(keys, key)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.Delete(ctx, keys...); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *sqliteCacheStoreImpl) Close() error {
	return s.db.Close()
}

func marshalTags(tags []string) ([]byte, error) {
	w := jwriter.NewWriter()
	arr := w.Array()
	for _, tag := range tags {
		arr.String(tag)
	}
	arr.End()
	return w.Bytes(), w.Error()
}

func unmarshalTags(data []byte) ([]string, error) {
	tags := []string{}
	r := jreader.NewReader(data)
	for arr := r.ArrayOrNull(); arr.Next(); {
		tags = append(tags, r.String())
	}
	return tags, r.Error()
}
