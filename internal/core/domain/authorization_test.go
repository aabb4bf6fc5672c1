package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	editor := RoleGrant{Name: "Editor", Level: 3, Permissions: []string{"processes.index", "processes.show"}}

	tests := []struct {
		name     string
		grants   Grants
		action   string
		failOpen bool
		allowed  bool
		reason   string
	}{
		{
			name:    "high level role bypasses without any permission",
			grants:  Grants{Roles: []RoleGrant{{Name: "Admin", Level: 10}}},
			action:  "users.destroy",
			allowed: true,
			reason:  ReasonBypass,
		},
		{
			name:    "level exactly at threshold does not bypass",
			grants:  Grants{Roles: []RoleGrant{{Name: "Manager", Level: BypassLevel}}},
			action:  "users.destroy",
			allowed: false,
			reason:  ReasonMissing,
		},
		{
			name:    "no grants denies",
			grants:  Grants{},
			action:  "processes.index",
			allowed: false,
			reason:  ReasonMissing,
		},
		{
			name:    "permission through role",
			grants:  Grants{Roles: []RoleGrant{editor}},
			action:  "processes.show",
			allowed: true,
			reason:  ReasonGranted,
		},
		{
			name:    "direct permission",
			grants:  Grants{Permissions: []string{"payments.summary"}},
			action:  "payments.summary",
			allowed: true,
			reason:  ReasonGranted,
		},
		{
			name:    "unnamed action denied by default",
			grants:  Grants{Roles: []RoleGrant{editor}},
			action:  "",
			allowed: false,
			reason:  ReasonUnnamed,
		},
		{
			name:     "unnamed action allowed when fail open",
			grants:   Grants{Roles: []RoleGrant{editor}},
			action:   "",
			failOpen: true,
			allowed:  true,
			reason:   ReasonUnnamed,
		},
		{
			name:    "bypass wins over unnamed action",
			grants:  Grants{Roles: []RoleGrant{{Name: "Admin", Level: 8}}},
			action:  "",
			allowed: true,
			reason:  ReasonBypass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.grants, tt.action, tt.failOpen)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestAllPermissions_DeduplicatesAndIgnoresOrder(t *testing.T) {
	a := Grants{
		Roles: []RoleGrant{
			{Name: "A", Permissions: []string{"x", "y"}},
			{Name: "B", Permissions: []string{"y", "z"}},
		},
		Permissions: []string{"x", "w"},
	}
	b := Grants{
		Roles: []RoleGrant{
			{Name: "B", Permissions: []string{"z", "y"}},
			{Name: "A", Permissions: []string{"y", "x"}},
		},
		Permissions: []string{"w", "x", "w"},
	}

	require.Equal(t, []string{"w", "x", "y", "z"}, AllPermissions(a))
	assert.Equal(t, AllPermissions(a), AllPermissions(b))

	for _, action := range []string{"w", "x", "y", "z", "v"} {
		assert.Equal(t, Authorize(a, action, false).Allowed, Authorize(b, action, false).Allowed, action)
	}
}

func TestAuthorize_AttachesPermissionSet(t *testing.T) {
	g := Grants{Permissions: []string{"contacts.index", "contacts.show"}}
	d := Authorize(g, "contacts.show", false)

	require.True(t, d.Allowed)
	assert.Equal(t, "contacts.show", d.Action)
	assert.Equal(t, []string{"contacts.index", "contacts.show"}, d.Permissions)
}

func TestAuthorize_BypassIsUnrestricted(t *testing.T) {
	g := Grants{
		Roles:       []RoleGrant{{Name: "Admin", Level: 10, Permissions: []string{"roles.index"}}},
		Permissions: []string{"contacts.index"},
	}
	d := Authorize(g, "anything", false)

	require.True(t, d.Allowed)
	assert.True(t, d.Unrestricted)
	assert.Equal(t, ReasonBypass, d.Reason)
	assert.Equal(t, []string{"contacts.index", "roles.index"}, d.Permissions)

	bare := Authorize(Grants{Roles: []RoleGrant{{Name: "Admin", Level: 10}}}, "anything", false)
	assert.True(t, bare.Unrestricted)
	assert.NotNil(t, bare.Permissions)
	assert.Empty(t, bare.Permissions)

	assert.False(t, Authorize(Grants{Permissions: []string{"x"}}, "x", false).Unrestricted)
}

func TestGrants_IsElevated(t *testing.T) {
	assert.False(t, Grants{Roles: []RoleGrant{{Level: ElevatedLevel}}}.IsElevated())
	assert.True(t, Grants{Roles: []RoleGrant{{Level: 1}, {Level: ElevatedLevel + 1}}}.IsElevated())
	assert.False(t, Grants{}.IsElevated())
}
