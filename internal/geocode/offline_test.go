package geocode_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
)

func TestOffline_ForwardRanksPrefixFirst(t *testing.T) {
	g := geocode.NewOffline([]geocode.Place{
		{Name: "North Dallas, TX", Country: "US", Types: []string{"locality"}},
		{Name: "Dallas, TX", Country: "US", Types: []string{"locality"}},
	})

	got, err := g.Forward(context.Background(), "dal", geocode.Filters{})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dallas, TX", got[0].Address)
}

func TestOffline_ForwardAppliesCountryAndLimit(t *testing.T) {
	g := geocode.NewOffline(nil)

	got, err := g.Forward(context.Background(), "o", geocode.Filters{Country: "US", Limit: 2})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, c := range got {
		assert.NotContains(t, c.Address, "Canada")
	}
}

func TestOffline_ForwardFiltersTypes(t *testing.T) {
	g := geocode.NewOffline(nil)

	got, err := g.Forward(context.Background(), "port", geocode.Filters{Types: []string{"locality"}})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOffline_ReverseNearest(t *testing.T) {
	g := geocode.NewOffline(nil)

	got, err := g.Reverse(context.Background(), domain.Coordinates{Latitude: 41.88, Longitude: -87.63})

	require.NoError(t, err)
	assert.Equal(t, "Chicago, IL, USA", got.Address)
}

func TestOffline_ReverseTooFar(t *testing.T) {
	g := geocode.NewOffline(nil)

	_, err := g.Reverse(context.Background(), domain.Coordinates{Latitude: 0, Longitude: 0})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOffline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := geocode.NewOffline(nil).Forward(ctx, "chicago", geocode.Filters{})

	assert.ErrorIs(t, err, context.Canceled)
}
