package payments

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
	_ "github.com/meridian-edu/meridian-edu/testing"
)

type mockRepository struct {
	rows    []Payment
	inserts int
	nextID  int64
}

func (m *mockRepository) ListScoped(ctx context.Context, pred scope.Predicate, limit, offset int) ([]Payment, error) {
	return m.rows, nil
}

func (m *mockRepository) Insert(ctx context.Context, p Payment) (int64, error) {
	m.inserts++
	m.nextID++
	p.ID = m.nextID
	m.rows = append(m.rows, p)
	return p.ID, nil
}

func (m *mockRepository) MarkPaid(ctx context.Context, id int64) (int64, error) {
	for i, p := range m.rows {
		if p.ID == id && p.Status == StatusUnpaid {
			m.rows[i].Status = StatusPaid
			return 1, nil
		}
	}
	return 0, nil
}

func financeActor() identity.Actor {
	return identity.Actor{ID: 3, Roles: []identity.Role{identity.RoleFinance}}
}

func TestCreateByFinance(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)

	row, err := svc.Create(context.Background(), financeActor(), CreateInput{
		StudentID: 5, Amount: 250, Description: "term fee",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUnpaid, row.Status)
	assert.Equal(t, int64(3), row.RecordedBy)
}

func TestCreateByStudentForbidden(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)
	student := identity.Actor{ID: 9, Roles: []identity.Role{identity.RoleStudent}, StudentID: 5}

	_, err := svc.Create(context.Background(), student, CreateInput{
		StudentID: 5, Amount: 250, Description: "term fee",
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Zero(t, repo.inserts)
}

func TestCreateInvalidAmounts(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)

	for _, amount := range []float64{0, -10, math.NaN()} {
		_, err := svc.Create(context.Background(), financeActor(), CreateInput{
			StudentID: 5, Amount: amount, Description: "term fee",
		})
		require.ErrorIs(t, err, httpx.ErrValidation, "amount %v", amount)
	}
	_, err := svc.Create(context.Background(), financeActor(), CreateInput{
		StudentID: 5, Amount: 10, Description: "   ",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, repo.inserts, "rejected requests must not reach the store")
}

func TestMarkPaid(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil, nil)

	row, err := svc.Create(context.Background(), financeActor(), CreateInput{
		StudentID: 5, Amount: 250, Description: "term fee",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(context.Background(), financeActor(), row.ID))

	// Already settled.
	err = svc.MarkPaid(context.Background(), financeActor(), row.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	student := identity.Actor{ID: 9, Roles: []identity.Role{identity.RoleStudent}}
	err = svc.MarkPaid(context.Background(), student, row.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestListDeniedRoleGetsEmpty(t *testing.T) {
	repo := &mockRepository{rows: []Payment{{ID: 1, Amount: 10, Status: StatusUnpaid}}}
	svc := NewService(repo, nil, nil)
	trainer := identity.Actor{ID: 2, Roles: []identity.Role{identity.RoleTrainer}}

	rows, err := svc.List(context.Background(), trainer, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSummarize(t *testing.T) {
	rows := []Payment{
		{Amount: 100, Status: StatusPaid},
		{Amount: 50, Status: StatusPaid},
		{Amount: 75, Status: StatusUnpaid},
	}
	sum := Summarize(rows)
	assert.Equal(t, 150.0, sum.Collected)
	assert.Equal(t, 75.0, sum.Outstanding)
	assert.Equal(t, 2, sum.PaidCount)
	assert.Equal(t, 1, sum.UnpaidCount)

	empty := Summarize(nil)
	assert.Zero(t, empty.Collected)
	assert.Zero(t, empty.UnpaidCount)
}
