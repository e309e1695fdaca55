package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
	_ "github.com/meridian-edu/meridian-edu/testing"
)

type partitionKey struct {
	classID int64
	date    string
}

// mockRepository keeps rows partitioned by (class_id, date) the way the
// real table behaves.
type mockRepository struct {
	partitions  map[partitionKey][]Record
	deleteError error
	insertError error
	deletes     int
	inserts     int
}

func newMockRepository() *mockRepository {
	return &mockRepository{partitions: make(map[partitionKey][]Record)}
}

func (m *mockRepository) ListScoped(ctx context.Context, pred scope.Predicate, classID int64, date string) ([]Record, error) {
	return m.partitions[partitionKey{classID, date}], nil
}

func (m *mockRepository) ListForStudent(ctx context.Context, pred scope.Predicate, limit int) ([]Record, error) {
	var out []Record
	for _, rows := range m.partitions {
		out = append(out, rows...)
	}
	return out, nil
}

func (m *mockRepository) DeleteForClassDate(ctx context.Context, classID int64, date string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	m.deletes++
	delete(m.partitions, partitionKey{classID, date})
	return nil
}

func (m *mockRepository) InsertRecords(ctx context.Context, records []Record) error {
	if m.insertError != nil {
		return m.insertError
	}
	m.inserts++
	for _, rec := range records {
		key := partitionKey{rec.ClassID, rec.Date}
		m.partitions[key] = append(m.partitions[key], rec)
	}
	return nil
}

func trainerOf(classIDs ...int64) identity.Actor {
	return identity.Actor{ID: 20, Roles: []identity.Role{identity.RoleTrainer}, ClassIDs: classIDs}
}

func TestSaveReplacesPartition(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	actor := trainerOf(1)

	require.NoError(t, svc.Save(context.Background(), actor, SaveInput{
		ClassID: 1, Date: "2026-01-10",
		Marks: []Mark{{StudentID: 100, Present: true}, {StudentID: 101, Present: true}, {StudentID: 102, Present: false}},
	}))

	// Resubmitting the sheet must fully replace the earlier save.
	require.NoError(t, svc.Save(context.Background(), actor, SaveInput{
		ClassID: 1, Date: "2026-01-10",
		Marks: []Mark{{StudentID: 100, Present: true}, {StudentID: 101, Present: false}},
	}))

	rows, err := svc.Sheet(context.Background(), actor, 1, "2026-01-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(100), rows[0].StudentID)
	assert.True(t, rows[0].Present)
	assert.Equal(t, int64(101), rows[1].StudentID)
	assert.False(t, rows[1].Present)
}

func TestSaveDoesNotTouchOtherPartitions(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	actor := trainerOf(1, 2)

	require.NoError(t, svc.Save(context.Background(), actor, SaveInput{
		ClassID: 2, Date: "2026-01-10", Marks: []Mark{{StudentID: 200, Present: true}},
	}))
	require.NoError(t, svc.Save(context.Background(), actor, SaveInput{
		ClassID: 1, Date: "2026-01-10", Marks: []Mark{{StudentID: 100, Present: true}},
	}))

	other, err := svc.Sheet(context.Background(), actor, 2, "2026-01-10")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSaveInsertFailureLeavesPartitionEmpty(t *testing.T) {
	// The delete and insert are deliberately not transactional; this pins
	// the accepted inconsistency window: a failed insert after a
	// successful delete does NOT roll back and leaves the key empty.
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	actor := trainerOf(1)

	require.NoError(t, svc.Save(context.Background(), actor, SaveInput{
		ClassID: 1, Date: "2026-01-10", Marks: []Mark{{StudentID: 100, Present: true}},
	}))

	repo.insertError = errors.New("connection reset")
	err := svc.Save(context.Background(), actor, SaveInput{
		ClassID: 1, Date: "2026-01-10", Marks: []Mark{{StudentID: 100, Present: false}},
	})
	require.Error(t, err)

	repo.insertError = nil
	rows, err := svc.Sheet(context.Background(), actor, 1, "2026-01-10")
	require.NoError(t, err)
	assert.Empty(t, rows, "partition stays empty until the sheet is resubmitted")
}

func TestSaveValidation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	actor := trainerOf(1)

	cases := []SaveInput{
		{ClassID: 0, Date: "2026-01-10", Marks: []Mark{{StudentID: 1, Present: true}}},
		{ClassID: 1, Date: "10/01/2026", Marks: []Mark{{StudentID: 1, Present: true}}},
		{ClassID: 1, Date: "2026-01-10"},
		{ClassID: 1, Date: "2026-01-10", Marks: []Mark{{StudentID: 0, Present: true}}},
		{ClassID: 1, Date: "2026-01-10", Marks: []Mark{{StudentID: 1, Present: true}, {StudentID: 1, Present: false}}},
	}
	for i, input := range cases {
		err := svc.Save(context.Background(), actor, input)
		require.ErrorIs(t, err, httpx.ErrValidation, "case %d", i)
	}
	assert.Zero(t, repo.deletes, "validation failures must not reach the store")
	assert.Zero(t, repo.inserts)
}

func TestSaveForeignClassForbidden(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	err := svc.Save(context.Background(), trainerOf(1), SaveInput{
		ClassID: 9, Date: "2026-01-10", Marks: []Mark{{StudentID: 1, Present: true}},
	})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Zero(t, repo.deletes)
}

func TestSaveByAdminForAnyClass(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	admin := identity.Actor{ID: 1, Roles: []identity.Role{identity.RoleAdmin}}

	require.NoError(t, svc.Save(context.Background(), admin, SaveInput{
		ClassID: 9, Date: "2026-01-10", Marks: []Mark{{StudentID: 1, Present: true}},
	}))
}

func TestRateEmptySetYieldsZero(t *testing.T) {
	summary := Rate(nil)
	assert.Equal(t, 0.0, summary.Rate)
	assert.Zero(t, summary.Total)
}

func TestRate(t *testing.T) {
	summary := Rate([]Record{{Present: true}, {Present: false}, {Present: true}, {Present: true}})
	assert.Equal(t, 3, summary.Present)
	assert.Equal(t, 4, summary.Total)
	assert.InDelta(t, 75.0, summary.Rate, 0.001)
}
