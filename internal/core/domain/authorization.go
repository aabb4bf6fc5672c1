package domain

import "sort"

// Role level thresholds
const (
	// BypassLevel: holding a role above this level grants every action.
	BypassLevel = 7
	// ElevatedLevel: roles above this level see every case, not only their own.
	ElevatedLevel = 5
	// ProtectedLevel: roles at or above this level cannot be deleted.
	ProtectedLevel = 9
	// AdminRoleName is reserved and cannot be deleted.
	AdminRoleName = "Admin"
)

// RoleGrant is a role held by an actor together with its permission names
type RoleGrant struct {
	Name        string
	Level       int
	Permissions []string
}

// Grants is everything an actor was given, directly or through roles
type Grants struct {
	UserID      uint
	Roles       []RoleGrant
	Permissions []string
}

// Decision reasons
const (
	ReasonBypass  = "bypass"
	ReasonGranted = "granted"
	ReasonUnnamed = "unnamed"
	ReasonMissing = "missing"
)

// Decision is the outcome of an authorization check. Permissions is the
// actor's resolved set; Unrestricted marks a bypass role, which may do
// anything whether or not it is listed there.
type Decision struct {
	Allowed      bool
	Reason       string
	Action       string
	Permissions  []string
	Unrestricted bool
}

// HasBypass reports whether any held role is above BypassLevel
func (g Grants) HasBypass() bool {
	for _, r := range g.Roles {
		if r.Level > BypassLevel {
			return true
		}
	}
	return false
}

// IsElevated reports whether any held role is above ElevatedLevel
func (g Grants) IsElevated() bool {
	for _, r := range g.Roles {
		if r.Level > ElevatedLevel {
			return true
		}
	}
	return false
}

// AllPermissions returns the sorted union of direct and role permissions
func AllPermissions(g Grants) []string {
	set := make(map[string]struct{}, len(g.Permissions))
	for _, p := range g.Permissions {
		set[p] = struct{}{}
	}
	for _, r := range g.Roles {
		for _, p := range r.Permissions {
			set[p] = struct{}{}
		}
	}
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// Authorize decides whether the actor may perform action.
// An empty action is allowed only when failOpen is set.
func Authorize(g Grants, action string, failOpen bool) Decision {
	perms := AllPermissions(g)
	if g.HasBypass() {
		return Decision{Allowed: true, Reason: ReasonBypass, Action: action, Permissions: perms, Unrestricted: true}
	}

	if action == "" {
		return Decision{Allowed: failOpen, Reason: ReasonUnnamed, Permissions: perms}
	}

	i := sort.SearchStrings(perms, action)
	if i < len(perms) && perms[i] == action {
		return Decision{Allowed: true, Reason: ReasonGranted, Action: action, Permissions: perms}
	}
	return Decision{Allowed: false, Reason: ReasonMissing, Action: action, Permissions: perms}
}
