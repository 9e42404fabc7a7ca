package memstore

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/storage"
	"github.com/Hamza-spc/CountryCompare/types"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCountryCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	germany := types.Country{
		Name: "Germany", Capital: "Berlin", Population: 83_000_000, Area: 357_114,
		Region: "Europe", Currency: "EUR", GDP: 4.2e12, HDI: 0.942,
		DataSource: economy.SourceSample, LastUpdated: now,
	}
	require.NoError(t, s.PutCountry(ctx, germany))
	require.NoError(t, s.PutCountry(ctx, types.Country{Name: "France", LastUpdated: now}))

	got, err := s.GetCountry(ctx, "GERMANY")
	require.NoError(t, err)
	if diff := cmp.Diff(germany, got); diff != "" {
		t.Errorf("stored record mismatch (-want +got):\n%s", diff)
	}

	list, err := s.ListCountries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "France", list[0].Name)

	require.NoError(t, s.DeleteCountry(ctx, "germany"))
	require.NoError(t, s.DeleteCountry(ctx, "germany"))

	_, err = s.GetCountry(ctx, "Germany")
	assert.True(t, stderrors.Is(err, errors.ErrKeyNotFound))
}

func TestPutCountry_Invalid(t *testing.T) {
	err := New().PutCountry(context.Background(), types.Country{})
	assert.True(t, errors.IsInvalid(err))
}

func TestUpsertCountry(t *testing.T) {
	ctx := context.Background()
	s := New()

	stored, written, err := s.UpsertCountry(ctx, types.Country{Name: "Germany", GDP: 1, LastUpdated: now}, storage.DefaultStaleAfter)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, 1.0, stored.GDP)

	stored, written, err = s.UpsertCountry(ctx, types.Country{Name: "Germany", GDP: 2, LastUpdated: now.Add(time.Hour)}, storage.DefaultStaleAfter)
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, 1.0, stored.GDP)

	stored, written, err = s.UpsertCountry(ctx, types.Country{Name: "Germany", GDP: 3, LastUpdated: now.Add(48 * time.Hour)}, storage.DefaultStaleAfter)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, 3.0, stored.GDP)
}

func TestComparisons(t *testing.T) {
	ctx := context.Background()
	s := New()

	older, err := types.NewComparison("A", "B", nil, now)
	require.NoError(t, err)
	newer, err := types.NewComparison("C", "D", nil, now.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, s.SaveComparison(ctx, older))
	require.NoError(t, s.SaveComparison(ctx, newer))
	assert.Error(t, s.SaveComparison(ctx, types.Comparison{}))

	list, err := s.ListComparisons(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
}

func TestConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.UpsertCountry(ctx, types.Country{Name: "Germany", Population: int64(i), LastUpdated: now}, storage.DefaultStaleAfter)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := s.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}
