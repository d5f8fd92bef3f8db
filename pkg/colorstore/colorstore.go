// Package colorstore persists the reference color table.
package colorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/itohio/gocolorimeter/pkg/sample"
)

// Slots is the number of reference color slots.
const Slots = 16

// ErrIndexOutOfRange is returned for slot indices outside 0..Slots-1.
var ErrIndexOutOfRange = errors.New("color index out of range")

// ReferenceColor is one stored slot. An invalid slot never matches.
type ReferenceColor = sample.Reference

// Table holds all reference slots.
type Table [Slots]ReferenceColor

// Valid returns the indices of the valid slots.
func (t *Table) Valid() []int {
	var result []int
	for i := range t {
		if t[i].Valid {
			result = append(result, i)
		}
	}
	return result
}

// Store defines the persistence collaborator for reference colors.
type Store interface {
	// Load returns the stored table. Missing slots are invalid.
	Load(ctx context.Context) (Table, error)
	// Save overwrites slot i.
	Save(ctx context.Context, i int, c ReferenceColor) error
	// Erase invalidates slot i.
	Erase(ctx context.Context, i int) error
	Close() error
}

// CheckIndex returns ErrIndexOutOfRange if i is not a valid slot index.
func CheckIndex(i int) error {
	if i < 0 || i >= Slots {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return nil
}

// Memory is a Store that keeps the table in RAM only.
type Memory struct {
	mu    sync.RWMutex
	table Table
}

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table, nil
}

func (m *Memory) Save(ctx context.Context, i int, c ReferenceColor) error {
	if err := CheckIndex(i); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.table[i] = c
	return nil
}

func (m *Memory) Erase(ctx context.Context, i int) error {
	if err := CheckIndex(i); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.table[i] = ReferenceColor{}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
