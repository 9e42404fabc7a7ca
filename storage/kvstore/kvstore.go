// Package kvstore is a storage.Store backed by NATS JetStream key-value buckets.
package kvstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/natsclient"
	"github.com/Hamza-spc/CountryCompare/storage"
	"github.com/Hamza-spc/CountryCompare/types"
)

// Default bucket names.
const (
	DefaultCountriesBucket   = "COUNTRIES"
	DefaultComparisonsBucket = "COMPARISONS"
)

// Config selects the buckets and their retention.
type Config struct {
	CountriesBucket   string
	ComparisonsBucket string
	Replicas          int
	// ComparisonTTL bounds how long comparison records are kept. Zero keeps them forever.
	ComparisonTTL time.Duration
}

// DefaultConfig returns single-replica buckets with the default names.
func DefaultConfig() Config {
	return Config{
		CountriesBucket:   DefaultCountriesBucket,
		ComparisonsBucket: DefaultComparisonsBucket,
		Replicas:          1,
	}
}

// Store keeps countries and comparisons as JSON values in two buckets.
type Store struct {
	countries   *natsclient.KVStore
	comparisons *natsclient.KVStore
	client      *natsclient.Client
	logger      *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// New creates the buckets if needed and returns a store over them. The
// client must already be connected.
func New(ctx context.Context, client *natsclient.Client, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CountriesBucket == "" {
		cfg.CountriesBucket = DefaultCountriesBucket
	}
	if cfg.ComparisonsBucket == "" {
		cfg.ComparisonsBucket = DefaultComparisonsBucket
	}
	if cfg.Replicas <= 0 {
		cfg.Replicas = 1
	}

	countries, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.CountriesBucket,
		Description: "country records",
		History:     1,
		Replicas:    cfg.Replicas,
	})
	if err != nil {
		return nil, errors.Wrap(err, "kvstore", "New", "create countries bucket")
	}
	comparisons, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.ComparisonsBucket,
		Description: "country comparisons",
		History:     1,
		Replicas:    cfg.Replicas,
		TTL:         cfg.ComparisonTTL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "kvstore", "New", "create comparisons bucket")
	}

	return &Store{
		countries:   client.NewKVStore(countries),
		comparisons: client.NewKVStore(comparisons),
		client:      client,
		logger:      logger.With("component", "kvstore"),
	}, nil
}

// countryKey maps a country name onto the restricted NATS key alphabet.
func countryKey(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(types.CountryKey(name)))
}

func notFound(err error, method, what string) error {
	if natsclient.IsKVNotFoundError(err) {
		return errors.WrapInvalid(errors.ErrKeyNotFound, "kvstore", method, what)
	}
	return errors.WrapTransient(err, "kvstore", method, what)
}

// GetCountry returns the stored record for name.
func (s *Store) GetCountry(ctx context.Context, name string) (types.Country, error) {
	entry, err := s.countries.Get(ctx, countryKey(name))
	if err != nil {
		return types.Country{}, notFound(err, "GetCountry", fmt.Sprintf("get country %q", name))
	}
	return decodeCountry(entry.Value)
}

// ListCountries returns every stored country sorted by name.
func (s *Store) ListCountries(ctx context.Context) ([]types.Country, error) {
	keys, err := s.countries.Keys(ctx, "")
	if err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "ListCountries", "list keys")
	}

	out := make([]types.Country, 0, len(keys))
	for _, key := range keys {
		entry, err := s.countries.Get(ctx, key)
		if natsclient.IsKVNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, errors.WrapTransient(err, "kvstore", "ListCountries", "get "+key)
		}
		c, err := decodeCountry(entry.Value)
		if err != nil {
			s.logger.Warn("Skipping undecodable country record", "key", key, "error", err)
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// PutCountry stores c unconditionally.
func (s *Store) PutCountry(ctx context.Context, c types.Country) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return errors.WrapInvalid(err, "kvstore", "PutCountry", "encode country")
	}
	if _, err := s.countries.Put(ctx, countryKey(c.Name), data); err != nil {
		return errors.WrapTransient(err, "kvstore", "PutCountry", "put "+c.Name)
	}
	return nil
}

// UpsertCountry writes c under a revision check so concurrent refreshes
// cannot overwrite a fresher record.
func (s *Store) UpsertCountry(ctx context.Context, c types.Country, maxAge time.Duration) (types.Country, bool, error) {
	if err := c.Validate(); err != nil {
		return types.Country{}, false, err
	}

	var kept types.Country
	err := s.countries.UpdateWithRetry(ctx, countryKey(c.Name), func(current []byte) ([]byte, error) {
		var existing *types.Country
		if current != nil {
			prev, err := decodeCountry(current)
			if err == nil {
				existing = &prev
			} else {
				s.logger.Warn("Replacing undecodable country record", "country", c.Name, "error", err)
			}
		}
		if !storage.ShouldReplace(existing, c, maxAge) {
			kept = *existing
			return nil, natsclient.ErrSkipUpdate
		}
		return json.Marshal(c)
	})

	switch {
	case err == nil:
		return c, true, nil
	case stderrors.Is(err, natsclient.ErrSkipUpdate):
		return kept, false, nil
	default:
		return types.Country{}, false, errors.WrapTransient(err, "kvstore", "UpsertCountry", "upsert "+c.Name)
	}
}

// DeleteCountry removes the record for name.
func (s *Store) DeleteCountry(ctx context.Context, name string) error {
	if err := s.countries.Delete(ctx, countryKey(name)); err != nil {
		return errors.WrapTransient(err, "kvstore", "DeleteCountry", "delete "+name)
	}
	return nil
}

// SaveComparison stores a comparison under its ID.
func (s *Store) SaveComparison(ctx context.Context, cmp types.Comparison) error {
	if err := cmp.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cmp)
	if err != nil {
		return errors.WrapInvalid(err, "kvstore", "SaveComparison", "encode comparison")
	}
	if _, err := s.comparisons.Create(ctx, cmp.ID, data); err != nil {
		return errors.WrapTransient(err, "kvstore", "SaveComparison", "create "+cmp.ID)
	}
	return nil
}

// ListComparisons returns comparisons newest first.
func (s *Store) ListComparisons(ctx context.Context) ([]types.Comparison, error) {
	keys, err := s.comparisons.Keys(ctx, "")
	if err != nil {
		return nil, errors.WrapTransient(err, "kvstore", "ListComparisons", "list keys")
	}

	out := make([]types.Comparison, 0, len(keys))
	for _, key := range keys {
		entry, err := s.comparisons.Get(ctx, key)
		if natsclient.IsKVNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, errors.WrapTransient(err, "kvstore", "ListComparisons", "get "+key)
		}
		var cmp types.Comparison
		if err := json.Unmarshal(entry.Value, &cmp); err != nil {
			s.logger.Warn("Skipping undecodable comparison", "key", key, "error", err)
			continue
		}
		out = append(out, cmp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Ping checks the NATS connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close leaves the client open; its owner closes it.
func (s *Store) Close() error {
	return nil
}

func decodeCountry(data []byte) (types.Country, error) {
	var c types.Country
	if err := json.Unmarshal(data, &c); err != nil {
		return types.Country{}, errors.WrapInvalid(err, "kvstore", "decodeCountry", "decode country")
	}
	return c, nil
}
