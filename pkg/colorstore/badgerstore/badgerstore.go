// Package badgerstore keeps reference colors in BadgerDB, the way the
// instrument keeps them in EEPROM: one key per slot.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/sample"
)

const keyPrefix = "color/"

// Config holds configuration for the BadgerDB store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string
	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool
	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool
}

// Store is a colorstore.Store backed by BadgerDB.
type Store struct {
	db *badger.DB
}

// Ensure Store implements colorstore.Store.
var _ colorstore.Store = (*Store)(nil)

// Open opens the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &Store{db: db}, nil
}

func key(i int) []byte {
	return []byte(fmt.Sprintf("%s%02d", keyPrefix, i))
}

func slot(k []byte) (int, error) {
	i, err := strconv.Atoi(strings.TrimPrefix(string(k), keyPrefix))
	if err != nil {
		return 0, fmt.Errorf("invalid color key %q: %w", k, err)
	}
	return i, colorstore.CheckIndex(i)
}

// Load returns all slots. Slots without a key are invalid.
func (s *Store) Load(ctx context.Context) (colorstore.Table, error) {
	var table colorstore.Table
	if err := ctx.Err(); err != nil {
		return table, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			i, err := slot(item.Key())
			if err != nil {
				return err
			}

			value, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", item.Key(), err)
			}
			if len(value) != 3 {
				return fmt.Errorf("read %s: expected 3 bytes, got %d", item.Key(), len(value))
			}

			table[i] = colorstore.ReferenceColor{
				Valid: true,
				Color: sample.Triplet{Red: value[0], Green: value[1], Blue: value[2]},
			}
		}
		return nil
	})
	if err != nil {
		return colorstore.Table{}, fmt.Errorf("load colors: %w", err)
	}

	return table, nil
}

// Save writes slot i. Saving an invalid color erases the slot.
func (s *Store) Save(ctx context.Context, i int, c colorstore.ReferenceColor) error {
	if !c.Valid {
		return s.Erase(ctx, i)
	}
	if err := colorstore.CheckIndex(i); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(i), []byte{c.Color.Red, c.Color.Green, c.Color.Blue})
	})
	if err != nil {
		return fmt.Errorf("save color %d: %w", i, err)
	}
	return nil
}

// Erase removes slot i.
func (s *Store) Erase(ctx context.Context, i int) error {
	if err := colorstore.CheckIndex(i); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(i))
	})
	if err != nil {
		return fmt.Errorf("erase color %d: %w", i, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
