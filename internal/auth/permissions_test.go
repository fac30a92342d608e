package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanActOn(t *testing.T) {
	task := Resource{CreatorID: "creator", MemberIDs: []string{"m1", "m2"}}

	assert.True(t, CanActOn(principal{id: "anyone", role: RoleManager}, task))
	assert.True(t, CanActOn(principal{id: "creator", role: RoleUser}, task))
	assert.True(t, CanActOn(principal{id: "m2", role: RoleUser}, task))
	assert.False(t, CanActOn(principal{id: "stranger", role: RoleUser}, task))
	assert.False(t, CanActOn(principal{id: "", role: RoleUser}, Resource{}))
	assert.False(t, CanActOn(principal{id: "m1", role: Role("GUEST")}, task))
	assert.False(t, CanActOn(nil, task))
}

func TestCanUpdateTaskStatusMatchesOwnership(t *testing.T) {
	task := Resource{CreatorID: "c", MemberIDs: []string{"m"}}
	for _, p := range []Principal{
		principal{id: "m", role: RoleUser},
		principal{id: "x", role: RoleUser},
		principal{id: "x", role: RoleManager},
	} {
		assert.Equal(t, CanActOn(p, task), CanUpdateTaskStatus(p, task))
	}
}

func TestPermissions(t *testing.T) {
	managerPerms := Permissions(principal{id: "1", role: RoleManager})
	assert.True(t, managerPerms.CreateProjects)
	assert.True(t, managerPerms.ManageMembers)
	assert.True(t, managerPerms.ViewTasks)

	userPerms := Permissions(principal{id: "2", role: RoleUser})
	assert.True(t, userPerms.ViewProjects)
	assert.True(t, userPerms.ViewUsers)
	assert.False(t, userPerms.CreateTasks)
	assert.False(t, userPerms.ManageUsers)

	assert.Equal(t, PermissionSet{}, Permissions(nil))
}
