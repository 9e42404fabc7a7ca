//go:build integration

package kvstore

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/natsclient"
	"github.com/Hamza-spc/CountryCompare/storage"
	"github.com/Hamza-spc/CountryCompare/types"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	tc := natsclient.NewTestClient(t)
	s, err := New(context.Background(), tc.Client, DefaultConfig(), nil)
	require.NoError(t, err)
	return s
}

func TestIntegration_CountryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.PutCountry(ctx, types.Country{Name: "South Africa", Population: 60_000_000, LastUpdated: now}))
	require.NoError(t, s.PutCountry(ctx, types.Country{Name: "Côte d'Ivoire", LastUpdated: now}))

	got, err := s.GetCountry(ctx, "south africa")
	require.NoError(t, err)
	assert.Equal(t, int64(60_000_000), got.Population)

	list, err := s.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Côte d'Ivoire", list[0].Name)

	require.NoError(t, s.DeleteCountry(ctx, "South Africa"))
	_, err = s.GetCountry(ctx, "South Africa")
	assert.True(t, stderrors.Is(err, errors.ErrKeyNotFound))
	assert.NoError(t, s.Ping(ctx))
}

func TestIntegration_Upsert(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Now().UTC()

	_, written, err := s.UpsertCountry(ctx, types.Country{Name: "Germany", GDP: 1, LastUpdated: now}, storage.DefaultStaleAfter)
	require.NoError(t, err)
	assert.True(t, written)

	stored, written, err := s.UpsertCountry(ctx, types.Country{Name: "Germany", GDP: 2, LastUpdated: now.Add(time.Hour)}, storage.DefaultStaleAfter)
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, 1.0, stored.GDP)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.UpsertCountry(ctx, types.Country{Name: "Germany", GDP: 3, LastUpdated: now.Add(48 * time.Hour)}, storage.DefaultStaleAfter)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetCountry(ctx, "Germany")
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.GDP)
}

func TestIntegration_Comparisons(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Now().UTC()

	first, err := types.NewComparison("Germany", "France", map[string]int{"a": 1}, now)
	require.NoError(t, err)
	second, err := types.NewComparison("Japan", "Chile", nil, now.Add(time.Second))
	require.NoError(t, err)

	require.NoError(t, s.SaveComparison(ctx, first))
	require.NoError(t, s.SaveComparison(ctx, second))

	list, err := s.ListComparisons(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.JSONEq(t, `{"a":1}`, string(list[1].Data))
}
