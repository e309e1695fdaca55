package classes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
	_ "github.com/meridian-edu/meridian-edu/testing"
)

type mockRepository struct {
	classes []Class
	rosters map[int64][]Student
	nextID  int64
}

func (m *mockRepository) ListScoped(ctx context.Context, pred scope.Predicate) ([]Class, error) {
	if pred.Unrestricted() {
		return m.classes, nil
	}
	// Single-clause predicates only: either trainer_id eq or id in.
	var out []Class
	for _, c := range m.classes {
		for _, cl := range pred.All {
			switch cl.Field {
			case "trainer_id":
				if c.TrainerID == cl.Value.(int64) {
					out = append(out, c)
				}
			case "id":
				for _, id := range cl.Value.([]int64) {
					if c.ID == id {
						out = append(out, c)
					}
				}
			}
		}
	}
	return out, nil
}

func (m *mockRepository) Insert(ctx context.Context, c Class) (int64, error) {
	m.nextID++
	c.ID = m.nextID
	m.classes = append(m.classes, c)
	return c.ID, nil
}

func (m *mockRepository) Roster(ctx context.Context, classID int64) ([]Student, error) {
	return m.rosters[classID], nil
}

func seededRepo() *mockRepository {
	return &mockRepository{
		classes: []Class{
			{ID: 1, Name: "Go Basics", TrainerID: 20},
			{ID: 2, Name: "SQL", TrainerID: 21},
			{ID: 3, Name: "Networking", TrainerID: 20},
		},
		rosters: map[int64][]Student{1: {{ID: 100, FullName: "Dana Cole"}}},
		nextID:  3,
	}
}

func TestListScopedByRole(t *testing.T) {
	svc := NewService(seededRepo(), nil, nil)

	admin := identity.Actor{ID: 1, Roles: []identity.Role{identity.RoleAdmin}}
	all, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	trainer := identity.Actor{ID: 20, Roles: []identity.Role{identity.RoleTrainer}, ClassIDs: []int64{1, 3}}
	own, err := svc.List(context.Background(), trainer)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	student := identity.Actor{ID: 30, Roles: []identity.Role{identity.RoleStudent}, ClassIDs: []int64{2}}
	enrolled, err := svc.List(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "SQL", enrolled[0].Name)
}

func TestCreateAdminOnly(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil)

	trainer := identity.Actor{ID: 20, Roles: []identity.Role{identity.RoleTrainer}}
	_, err := svc.Create(context.Background(), trainer, CreateInput{Name: "New", TrainerID: 20})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	secretary := identity.Actor{ID: 2, Roles: []identity.Role{identity.RoleSecretary}}
	created, err := svc.Create(context.Background(), secretary, CreateInput{Name: "New", TrainerID: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(seededRepo(), nil, nil)
	secretary := identity.Actor{ID: 2, Roles: []identity.Role{identity.RoleSecretary}}

	_, err := svc.Create(context.Background(), secretary, CreateInput{Name: "  ", TrainerID: 20})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), secretary, CreateInput{Name: "New"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRosterAccess(t *testing.T) {
	svc := NewService(seededRepo(), nil, nil)

	owning := identity.Actor{ID: 20, Roles: []identity.Role{identity.RoleTrainer}, ClassIDs: []int64{1, 3}}
	roster, err := svc.Roster(context.Background(), owning, 1)
	require.NoError(t, err)
	assert.Len(t, roster, 1)

	foreign := identity.Actor{ID: 21, Roles: []identity.Role{identity.RoleTrainer}, ClassIDs: []int64{2}}
	_, err = svc.Roster(context.Background(), foreign, 1)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	student := identity.Actor{ID: 30, Roles: []identity.Role{identity.RoleStudent}, ClassIDs: []int64{1}}
	_, err = svc.Roster(context.Background(), student, 1)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}
