package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"", RoleViewer, true},
		{"viewer", RoleViewer, true},
		{"editor", RoleEditor, true},
		{"admin", RoleAdmin, true},
		{"super_admin", RoleSuperAdmin, true},
		{"owner", "", false},
		{"Admin", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestRoleSets(t *testing.T) {
	// Every role is authenticated, but capabilities never follow from
	// any implied ordering.
	assert.True(t, RoleSetAuthenticated.Contains(RoleViewer))
	assert.True(t, RoleSetAuthenticated.Contains(RoleSuperAdmin))

	assert.False(t, RoleSetUserAdmin.Contains(RoleViewer))
	assert.False(t, RoleSetUserAdmin.Contains(RoleEditor))
	assert.True(t, RoleSetUserAdmin.Contains(RoleAdmin))
	assert.True(t, RoleSetUserAdmin.Contains(RoleSuperAdmin))

	assert.False(t, RoleSetUserDelete.Contains(RoleAdmin))
	assert.True(t, RoleSetUserDelete.Contains(RoleSuperAdmin))
}

func TestAccountSerializationOmitsHash(t *testing.T) {
	account := Account{Username: "admin", PasswordHash: "bcrypt-hash"}

	raw, err := json.Marshal(account)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "bcrypt-hash")

	raw, err = json.Marshal(account.Summary())
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "bcrypt-hash")
}
