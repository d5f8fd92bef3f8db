// Package filestore keeps reference colors in a YAML file.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/sample"
)

// entry is one valid slot in the file.
type entry struct {
	Slot  int            `yaml:"slot"`
	Color sample.Triplet `yaml:"color"`
}

type document struct {
	Colors []entry `yaml:"colors"`
}

// Store is a colorstore.Store backed by a YAML file. Every change rewrites
// the whole file.
type Store struct {
	path string

	mu    sync.Mutex
	table colorstore.Table
}

// Ensure Store implements colorstore.Store.
var _ colorstore.Store = (*Store)(nil)

// Open reads the file at path. A missing file is an empty table.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read color file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse color file: %w", err)
	}

	for _, e := range doc.Colors {
		if err := colorstore.CheckIndex(e.Slot); err != nil {
			return nil, fmt.Errorf("failed to parse color file: %w", err)
		}
		s.table[e.Slot] = colorstore.ReferenceColor{Valid: true, Color: e.Color}
	}

	return s, nil
}

func (s *Store) Load(ctx context.Context) (colorstore.Table, error) {
	if err := ctx.Err(); err != nil {
		return colorstore.Table{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table, nil
}

func (s *Store) Save(ctx context.Context, i int, c colorstore.ReferenceColor) error {
	return s.update(ctx, i, c)
}

func (s *Store) Erase(ctx context.Context, i int) error {
	return s.update(ctx, i, colorstore.ReferenceColor{})
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) update(ctx context.Context, i int, c colorstore.ReferenceColor) error {
	if err := colorstore.CheckIndex(i); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.table
	next[i] = c
	if err := s.write(&next); err != nil {
		return err
	}
	s.table = next

	return nil
}

// write replaces the file through a temporary file in the same directory.
func (s *Store) write(table *colorstore.Table) error {
	var doc document
	for i, c := range table {
		if c.Valid {
			doc.Colors = append(doc.Colors, entry{Slot: i, Color: c.Color})
		}
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal colors: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".colors-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create color file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write color file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write color file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace color file: %w", err)
	}

	return nil
}
