package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLUnrestricted(t *testing.T) {
	frag, args := Predicate{}.SQL(1)
	assert.Equal(t, "TRUE", frag)
	assert.Empty(t, args)
}

func TestSQLDenyAll(t *testing.T) {
	frag, args := DenyAll.SQL(1)
	assert.Equal(t, "FALSE", frag)
	assert.Empty(t, args)
}

func TestSQLAllClauses(t *testing.T) {
	pred := Predicate{All: []Clause{
		{Field: "trainer_id", Op: OpEq, Value: int64(42)},
		{Field: "class_id", Op: OpIn, Value: []int64{1, 2}},
	}}
	frag, args := pred.SQL(3)
	assert.Equal(t, "trainer_id = $3 AND class_id = ANY($4)", frag)
	require.Len(t, args, 2)
	assert.Equal(t, int64(42), args[0])
	assert.Equal(t, []int64{1, 2}, args[1])
}

func TestSQLAnyGroup(t *testing.T) {
	pred := Predicate{Any: []Clause{
		{Field: "is_public", Op: OpIs, Value: true},
		{Field: "target_roles", Op: OpContains, Value: "student"},
	}}
	frag, args := pred.SQL(1)
	assert.Equal(t, "(is_public = $1 OR $2 = ANY(target_roles))", frag)
	require.Len(t, args, 2)
}

func TestSQLEmptyInListIsUnsatisfiable(t *testing.T) {
	// A trainer with zero classes must match nothing, never everything.
	pred := Predicate{All: []Clause{{Field: "class_id", Op: OpIn, Value: []int64{}}}}
	frag, args := pred.SQL(1)
	assert.Equal(t, "FALSE", frag)
	assert.Empty(t, args)
}

func TestSQLEmptyInInsideAnyGroupDropsAlternative(t *testing.T) {
	pred := Predicate{Any: []Clause{
		{Field: "class_id", Op: OpIn, Value: []int64{}},
		{Field: "is_public", Op: OpIs, Value: true},
	}}
	frag, args := pred.SQL(1)
	assert.Equal(t, "(FALSE OR is_public = $1)", frag)
	require.Len(t, args, 1)
}
