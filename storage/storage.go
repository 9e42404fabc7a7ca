// Package storage defines the record store for countries and comparisons.
package storage

import (
	"context"
	"time"

	"github.com/Hamza-spc/CountryCompare/types"
)

// DefaultStaleAfter is how old a stored country must be before Upsert
// replaces it.
const DefaultStaleAfter = 24 * time.Hour

// Store persists country and comparison records.
//
// Country names are matched case-insensitively through types.CountryKey.
// Missing records are reported with an error matching errors.ErrKeyNotFound.
// All implementations must be safe for concurrent use.
type Store interface {
	// GetCountry returns the stored record for name.
	GetCountry(ctx context.Context, name string) (types.Country, error)

	// ListCountries returns every stored country sorted by name.
	ListCountries(ctx context.Context) ([]types.Country, error)

	// PutCountry stores c unconditionally, replacing any previous record.
	PutCountry(ctx context.Context, c types.Country) error

	// UpsertCountry stores c when no record exists or the existing record's
	// LastUpdated is older than maxAge relative to c.LastUpdated. It returns
	// the record that is stored afterwards and whether c was written.
	UpsertCountry(ctx context.Context, c types.Country, maxAge time.Duration) (types.Country, bool, error)

	// DeleteCountry removes the record. Deleting a missing record is not an error.
	DeleteCountry(ctx context.Context, name string) error

	// SaveComparison appends a comparison record.
	SaveComparison(ctx context.Context, cmp types.Comparison) error

	// ListComparisons returns stored comparisons, newest first.
	ListComparisons(ctx context.Context) ([]types.Comparison, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ShouldReplace implements the upsert policy: a record replaces the existing
// one when nothing is stored or the stored record is older than maxAge at the
// time of the incoming update.
func ShouldReplace(existing *types.Country, incoming types.Country, maxAge time.Duration) bool {
	if existing == nil {
		return true
	}
	return existing.OlderThan(incoming.LastUpdated, maxAge)
}
