package auth

import "strings"

// Role is the operator role carried in JWT claims. Role ids match the
// roles table seeded by db/migrations.
type Role int64

const (
	RoleUnknown     Role = 0
	RoleAgent       Role = 1
	RoleQA          Role = 2
	RoleAsstManager Role = 3
	RoleManager     Role = 4
	RoleAdmin       Role = 5
)

var roleNames = map[Role]string{
	RoleAgent:       "agent",
	RoleQA:          "qa",
	RoleAsstManager: "assistant project manager",
	RoleManager:     "project manager",
	RoleAdmin:       "admin",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// RoleFromID maps a stored role id to a Role, RoleUnknown when out of range.
func RoleFromID(id int64) Role {
	r := Role(id)
	if _, ok := roleNames[r]; !ok {
		return RoleUnknown
	}
	return r
}

// RoleFromName parses a role display name, case-insensitively.
func RoleFromName(name string) Role {
	name = strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if n == name {
			return r
		}
	}
	return RoleUnknown
}

// Capabilities is the per-session capability table computed once from the
// role, instead of comparing role ids at every call site.
type Capabilities struct {
	CanManageProjects    bool
	CanManageTasks       bool
	CanManageUsers       bool
	CanViewTrackerReport bool
	// CanModerateTrackers allows editing and deleting other agents'
	// entries without the owner's same-day delete window.
	CanModerateTrackers bool
}

// CapabilitiesFor returns the capability table for a role. An unknown role
// gets no capabilities.
func CapabilitiesFor(r Role) Capabilities {
	switch r {
	case RoleAgent:
		return Capabilities{}
	case RoleQA:
		return Capabilities{
			CanViewTrackerReport: true,
			CanModerateTrackers:  true,
		}
	case RoleAsstManager:
		return Capabilities{
			CanManageTasks:       true,
			CanViewTrackerReport: true,
			CanModerateTrackers:  true,
		}
	case RoleManager:
		return Capabilities{
			CanManageProjects:    true,
			CanManageTasks:       true,
			CanViewTrackerReport: true,
			CanModerateTrackers:  true,
		}
	case RoleAdmin:
		return Capabilities{
			CanManageProjects:    true,
			CanManageTasks:       true,
			CanManageUsers:       true,
			CanViewTrackerReport: true,
			CanModerateTrackers:  true,
		}
	default:
		return Capabilities{}
	}
}
