package facilities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	_ "github.com/meridian-edu/meridian-edu/testing"
)

type mockRepository struct {
	networks  []WiFiNetwork
	materials []MaterialTransaction
	nextID    int64
}

func (m *mockRepository) ListNetworks(ctx context.Context) ([]WiFiNetwork, error) {
	return m.networks, nil
}

func (m *mockRepository) InsertNetwork(ctx context.Context, input WiFiInput) (int64, error) {
	m.nextID++
	m.networks = append(m.networks, WiFiNetwork{ID: m.nextID, SSID: input.SSID, Password: input.Password, Location: input.Location, Active: input.Active})
	return m.nextID, nil
}

func (m *mockRepository) UpdateNetwork(ctx context.Context, id int64, input WiFiInput) (int64, error) {
	for i, n := range m.networks {
		if n.ID == id {
			m.networks[i].SSID = input.SSID
			m.networks[i].Password = input.Password
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockRepository) DeleteNetwork(ctx context.Context, id int64) (int64, error) {
	for i, n := range m.networks {
		if n.ID == id {
			m.networks = append(m.networks[:i], m.networks[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockRepository) ListMaterials(ctx context.Context, limit, offset int) ([]MaterialTransaction, error) {
	return m.materials, nil
}

func (m *mockRepository) InsertMaterial(ctx context.Context, tx MaterialTransaction) (int64, error) {
	m.nextID++
	tx.ID = m.nextID
	m.materials = append(m.materials, tx)
	return tx.ID, nil
}

func admin() identity.Actor {
	return identity.Actor{ID: 1, Roles: []identity.Role{identity.RoleAdmin}}
}

func TestFacilityViewsAdminOnly(t *testing.T) {
	repo := &mockRepository{networks: []WiFiNetwork{{ID: 1, SSID: "campus"}}}
	svc := NewService(repo, nil, nil)

	for _, role := range []identity.Role{identity.RoleSecretary, identity.RoleTrainer, identity.RoleFinance, identity.RoleStudent, identity.RoleIT} {
		actor := identity.Actor{ID: 9, Roles: []identity.Role{role}}

		_, err := svc.Networks(context.Background(), actor)
		require.ErrorIs(t, err, httpx.ErrForbidden, "role %s must get 403, not an empty list", role)

		_, err = svc.Materials(context.Background(), actor, 0, 0)
		require.ErrorIs(t, err, httpx.ErrForbidden, "role %s", role)

		_, err = svc.CreateNetwork(context.Background(), actor, WiFiInput{SSID: "x", Password: "y"})
		require.ErrorIs(t, err, httpx.ErrForbidden, "role %s", role)
	}
}

func TestAdminWithExtraRolesStillAllowed(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)
	actor := identity.Actor{ID: 1, Roles: []identity.Role{identity.RoleTrainer, identity.RoleAdmin}}

	_, err := svc.Networks(context.Background(), actor)
	require.NoError(t, err)
}

func TestNetworkLifecycle(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)

	id, err := svc.CreateNetwork(context.Background(), admin(), WiFiInput{SSID: "campus", Password: "secret", Location: "lobby", Active: true})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateNetwork(context.Background(), admin(), id, WiFiInput{SSID: "campus-5g", Password: "secret2"}))
	require.NoError(t, svc.DeleteNetwork(context.Background(), admin(), id))

	err = svc.DeleteNetwork(context.Background(), admin(), id)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestNetworkValidation(t *testing.T) {
	svc := NewService(&mockRepository{}, nil, nil)

	_, err := svc.CreateNetwork(context.Background(), admin(), WiFiInput{SSID: "  ", Password: "x"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateNetwork(context.Background(), admin(), WiFiInput{SSID: "campus"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRecordMaterial(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)

	tx, err := svc.RecordMaterial(context.Background(), admin(), MaterialInput{Material: "whiteboard markers", Direction: DirectionOut, Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(1), tx.RecordedBy)

	cases := []MaterialInput{
		{Material: " ", Direction: DirectionIn, Quantity: 1},
		{Material: "pens", Direction: "sideways", Quantity: 1},
		{Material: "pens", Direction: DirectionIn, Quantity: 0},
		{Material: "pens", Direction: DirectionIn, Quantity: -4},
	}
	for i, input := range cases {
		_, err := svc.RecordMaterial(context.Background(), admin(), input)
		require.ErrorIs(t, err, httpx.ErrValidation, "case %d", i)
	}
	assert.Len(t, repo.materials, 1)
}
