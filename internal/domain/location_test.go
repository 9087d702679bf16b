package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/domain"
)

func loc(role domain.Role, lat, lng float64, addr string) domain.Location {
	return domain.NewLocation(role, domain.Coordinates{Latitude: lat, Longitude: lng}, addr)
}

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole(" Pickup ")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePickup, r)

	_, err = domain.ParseRole("waypoint")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLocationSet_PutKeepsInsertionOrder(t *testing.T) {
	var s domain.LocationSet

	_, err := s.Put(loc(domain.RoleDropoff, 1, 1, "C"))
	require.NoError(t, err)
	_, err = s.Put(loc(domain.RoleCurrent, 2, 2, "A"))
	require.NoError(t, err)

	got := s.Ordered()
	require.Len(t, got, 2)
	assert.Equal(t, domain.RoleDropoff, got[0].Role)
	assert.Equal(t, domain.RoleCurrent, got[1].Role)
}

func TestLocationSet_PutSameRoleReplaces(t *testing.T) {
	var s domain.LocationSet

	_, _ = s.Put(loc(domain.RoleCurrent, 1, 1, "A"))
	_, _ = s.Put(loc(domain.RolePickup, 2, 2, "B"))
	replaced, err := s.Put(loc(domain.RoleCurrent, 3, 3, "A2"))

	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, 2, s.Len())

	got := s.Ordered()
	// The replaced role is treated as the newest insertion.
	assert.Equal(t, []string{"B", "A2"}, []string{got[0].Address, got[1].Address})
}

func TestLocationSet_UnknownRole(t *testing.T) {
	var s domain.LocationSet
	_, err := s.Put(loc("waypoint", 0, 0, "X"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, s.Len())
}

func TestLocationSet_RemoveAndClear(t *testing.T) {
	var s domain.LocationSet
	_, _ = s.Put(loc(domain.RoleCurrent, 1, 1, "A"))
	_, _ = s.Put(loc(domain.RolePickup, 2, 2, "B"))

	s.Remove(domain.RoleCurrent)
	_, ok := s.Get(domain.RoleCurrent)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Empty(t, s.Ordered())
	assert.NotNil(t, s.Ordered(), "Ordered should never return nil")
}

func TestCoordinates_String(t *testing.T) {
	c := domain.Coordinates{Latitude: 41.878113, Longitude: -87.629799}
	assert.Equal(t, "41.878113, -87.629799", c.String())
	assert.True(t, c.Valid())
	assert.False(t, domain.Coordinates{Latitude: 91}.Valid())
}
