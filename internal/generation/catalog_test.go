package generation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	require.Len(t, catalog, 6)

	for _, model := range catalog {
		assert.NotEmpty(t, model.Name)
		assert.Positive(t, model.DailyRequestLimit)
		assert.Contains(t, []Provider{ProviderGoogle, ProviderGroq}, model.Provider)
	}
}

func TestCatalog_ShuffledOrder(t *testing.T) {
	t.Parallel()

	t.Run("deterministic given a seed", func(t *testing.T) {
		t.Parallel()

		catalog := DefaultCatalog()

		first := catalog.ShuffledOrder(rand.New(rand.NewSource(42)))
		second := catalog.ShuffledOrder(rand.New(rand.NewSource(42)))

		assert.Equal(t, first, second)
	})

	t.Run("does not mutate the catalog", func(t *testing.T) {
		t.Parallel()

		catalog := DefaultCatalog()
		original := make(Catalog, len(catalog))
		copy(original, catalog)

		catalog.ShuffledOrder(rand.New(rand.NewSource(7)))

		assert.Equal(t, original, catalog)
	})

	t.Run("is a permutation", func(t *testing.T) {
		t.Parallel()

		catalog := DefaultCatalog()
		order := catalog.ShuffledOrder(rand.New(rand.NewSource(7)))

		require.Len(t, order, len(catalog))
		assert.ElementsMatch(t, []ModelDescriptor(catalog), order)
	})
}
