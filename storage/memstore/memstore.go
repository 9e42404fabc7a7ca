// Package memstore is an in-memory storage.Store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/storage"
	"github.com/Hamza-spc/CountryCompare/types"
)

// Store keeps records in maps guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	countries   map[string]types.Country
	comparisons []types.Comparison
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{countries: make(map[string]types.Country)}
}

// GetCountry returns the stored record for name.
func (s *Store) GetCountry(_ context.Context, name string) (types.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.countries[types.CountryKey(name)]
	if !ok {
		return types.Country{}, errors.WrapInvalid(errors.ErrKeyNotFound, "memstore", "GetCountry",
			fmt.Sprintf("country %q", name))
	}
	return c, nil
}

// ListCountries returns every stored country sorted by name.
func (s *Store) ListCountries(_ context.Context) ([]types.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Country, 0, len(s.countries))
	for _, c := range s.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutCountry stores c unconditionally.
func (s *Store) PutCountry(_ context.Context, c types.Country) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countries[c.Key()] = c
	return nil
}

// UpsertCountry stores c if nothing is stored or the stored record is stale.
func (s *Store) UpsertCountry(_ context.Context, c types.Country, maxAge time.Duration) (types.Country, bool, error) {
	if err := c.Validate(); err != nil {
		return types.Country{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *types.Country
	if prev, ok := s.countries[c.Key()]; ok {
		existing = &prev
	}
	if !storage.ShouldReplace(existing, c, maxAge) {
		return *existing, false, nil
	}
	s.countries[c.Key()] = c
	return c, true, nil
}

// DeleteCountry removes the record for name.
func (s *Store) DeleteCountry(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.countries, types.CountryKey(name))
	return nil
}

// SaveComparison appends a comparison.
func (s *Store) SaveComparison(_ context.Context, cmp types.Comparison) error {
	if err := cmp.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comparisons = append(s.comparisons, cmp)
	return nil
}

// ListComparisons returns comparisons newest first.
func (s *Store) ListComparisons(_ context.Context) ([]types.Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]types.Comparison(nil), s.comparisons...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
