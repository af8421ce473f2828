// Package store implements a persistent key-value store with
// least-recently-used ordering, backed by SQLite.
//
// Every entry carries a monotonically increasing sequence number; accessing
// or inserting an entry bumps its sequence, so the smallest sequence is
// always the least-recently-used entry. Keys and values are serialized with
// a pluggable Codec (msgpack by default).
//
// The store assumes a single writer: it keeps one SQLite connection and does
// not coordinate access from multiple processes.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a durable key-value mapping ordered by recency of use.
type Store[K comparable, V any] struct {
	db      *sql.DB
	codec   Codec
	nextSeq atomic.Int64
}

type options struct {
	codec Codec
}

// Option customizes an opened store.
type Option func(*options)

// WithCodec replaces the default msgpack codec.
func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// Open opens (or creates) the store at the given database path and brings
// its schema up to date.
func Open[K comparable, V any](path string, opts ...Option) (*Store[K, V], error) {
	o := options{codec: msgpackCodec{}}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: keeps the single-writer model honest and makes
	// in-memory databases work, since each connection would otherwise get
	// its own empty memory database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store[K, V]{db: db, codec: o.codec}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.loadSeq(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenTemporary opens a store that lives in memory and vanishes on Close.
// Useful for tests and throwaway caches.
func OpenTemporary[K comparable, V any](opts ...Option) (*Store[K, V], error) {
	return Open[K, V](":memory:", opts...)
}

func (s *Store[K, V]) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to set up migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *Store[K, V]) loadSeq() error {
	var max int64
	err := s.db.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM entries").Scan(&max)
	if err != nil {
		return fmt.Errorf("failed to load sequence counter: %w", err)
	}
	s.nextSeq.Store(max)
	return nil
}

// Close closes the underlying database.
func (s *Store[K, V]) Close() error {
	return s.db.Close()
}

func (s *Store[K, V]) encodeKey(key K) ([]byte, error) {
	b, err := s.codec.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key: %w", err)
	}
	return b, nil
}

func (s *Store[K, V]) decodeValue(b []byte) (V, error) {
	var v V
	if err := s.codec.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("failed to decode value: %w", err)
	}
	return v, nil
}

func (s *Store[K, V]) decodeKey(b []byte) (K, error) {
	var k K
	if err := s.codec.Unmarshal(b, &k); err != nil {
		return k, fmt.Errorf("failed to decode key: %w", err)
	}
	return k, nil
}

// Peek looks up key without touching the recency order.
func (s *Store[K, V]) Peek(ctx context.Context, key K) (V, bool, error) {
	var zero V
	kb, err := s.encodeKey(key)
	if err != nil {
		return zero, false, err
	}

	var vb []byte
	err = s.db.QueryRowContext(ctx, "SELECT value FROM entries WHERE key = ?", kb).Scan(&vb)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to query entry: %w", err)
	}

	v, err := s.decodeValue(vb)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Access looks up key and, on a hit, promotes it to most-recently-used.
func (s *Store[K, V]) Access(ctx context.Context, key K) (V, bool, error) {
	v, ok, err := s.Peek(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}

	kb, err := s.encodeKey(key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	seq := s.nextSeq.Add(1)
	if _, err := s.db.ExecContext(ctx, "UPDATE entries SET seq = ? WHERE key = ?", seq, kb); err != nil {
		var zero V
		return zero, false, fmt.Errorf("failed to promote entry: %w", err)
	}
	return v, true, nil
}

// Insert adds or overwrites an entry, making it the most-recently-used one.
// The previous value is returned if the key was already present.
func (s *Store[K, V]) Insert(ctx context.Context, key K, value V) (V, bool, error) {
	prev, had, err := s.Peek(ctx, key)
	if err != nil {
		return prev, false, err
	}

	kb, err := s.encodeKey(key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	vb, err := s.codec.Marshal(value)
	if err != nil {
		var zero V
		return zero, false, fmt.Errorf("failed to encode value: %w", err)
	}

	seq := s.nextSeq.Add(1)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (key, value, seq) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, seq = excluded.seq
	`, kb, vb, seq)
	if err != nil {
		var zero V
		return zero, false, fmt.Errorf("failed to insert entry: %w", err)
	}
	return prev, had, nil
}

// Pop removes an entry and returns its value. A missing key is not an error.
func (s *Store[K, V]) Pop(ctx context.Context, key K) (V, bool, error) {
	v, ok, err := s.Peek(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}

	kb, err := s.encodeKey(key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", kb); err != nil {
		var zero V
		return zero, false, fmt.Errorf("failed to delete entry: %w", err)
	}
	return v, true, nil
}

// PopLRU removes and returns the least-recently-used pair. An empty store is
// not an error.
func (s *Store[K, V]) PopLRU(ctx context.Context) (K, V, bool, error) {
	k, v, ok, err := s.LRUPair(ctx)
	if err != nil || !ok {
		return k, v, ok, err
	}
	if _, _, err := s.Pop(ctx, k); err != nil {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false, err
	}
	return k, v, true, nil
}

func (s *Store[K, V]) extremalKey(ctx context.Context, order string) (K, bool, error) {
	var zero K
	var kb []byte
	err := s.db.QueryRowContext(ctx, "SELECT key FROM entries ORDER BY seq "+order+" LIMIT 1").Scan(&kb)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to query extremal entry: %w", err)
	}
	k, err := s.decodeKey(kb)
	if err != nil {
		return zero, false, err
	}
	return k, true, nil
}

func (s *Store[K, V]) extremalPair(ctx context.Context, order string) (K, V, bool, error) {
	var zeroK K
	var zeroV V
	var kb, vb []byte
	err := s.db.QueryRowContext(ctx, "SELECT key, value FROM entries ORDER BY seq "+order+" LIMIT 1").Scan(&kb, &vb)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zeroK, zeroV, false, nil
		}
		return zeroK, zeroV, false, fmt.Errorf("failed to query extremal entry: %w", err)
	}
	k, err := s.decodeKey(kb)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	v, err := s.decodeValue(vb)
	if err != nil {
		return zeroK, zeroV, false, err
	}
	return k, v, true, nil
}

// LRU reports the least-recently-used key without promoting it.
func (s *Store[K, V]) LRU(ctx context.Context) (K, bool, error) {
	return s.extremalKey(ctx, "ASC")
}

// MRU reports the most-recently-used key without promoting it.
func (s *Store[K, V]) MRU(ctx context.Context) (K, bool, error) {
	return s.extremalKey(ctx, "DESC")
}

// LRUPair reports the least-recently-used pair without promoting it.
func (s *Store[K, V]) LRUPair(ctx context.Context) (K, V, bool, error) {
	return s.extremalPair(ctx, "ASC")
}

// MRUPair reports the most-recently-used pair without promoting it.
func (s *Store[K, V]) MRUPair(ctx context.Context) (K, V, bool, error) {
	return s.extremalPair(ctx, "DESC")
}

// Len reports the number of entries.
func (s *Store[K, V]) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Walk visits every entry from least- to most-recently-used without touching
// the recency order. Returning an error from fn stops the walk.
func (s *Store[K, V]) Walk(ctx context.Context, fn func(key K, value V) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM entries ORDER BY seq ASC")
	if err != nil {
		return fmt.Errorf("failed to walk entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var kb, vb []byte
		if err := rows.Scan(&kb, &vb); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		k, err := s.decodeKey(kb)
		if err != nil {
			return err
		}
		v, err := s.decodeValue(vb)
		if err != nil {
			return err
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return rows.Err()
}
