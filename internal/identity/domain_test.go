package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"admin", "secretary", "trainer", "finance", "student", "it"} {
		role, ok := ParseRole(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, Role(raw), role)
	}

	role, ok := ParseRole("  Trainer ")
	assert.True(t, ok)
	assert.Equal(t, RoleTrainer, role)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestPrimaryRoleDefaultsToStudent(t *testing.T) {
	// The empty-role default is a policy decision and must stay "student".
	assert.Equal(t, RoleStudent, Actor{}.PrimaryRole())
	assert.Equal(t, RoleFinance, Actor{Roles: []Role{RoleFinance, RoleStudent}}.PrimaryRole())
}

func TestRoleUnionHelpers(t *testing.T) {
	actor := Actor{Roles: []Role{RoleTrainer, RoleFinance}}
	assert.True(t, actor.HasRole(RoleTrainer))
	assert.False(t, actor.HasRole(RoleAdmin))
	assert.True(t, actor.HasAny(RoleAdmin, RoleFinance))
	assert.False(t, actor.HasAny(RoleAdmin, RoleIT))
	assert.False(t, actor.IsOnly(RoleTrainer))
	assert.True(t, Actor{Roles: []Role{RoleTrainer}}.IsOnly(RoleTrainer))
}
