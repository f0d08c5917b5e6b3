package auth_test

import (
	"testing"

	"github.com/trackops/trackd/internal/auth"
)

func TestRoleFromID(t *testing.T) {
	if got := auth.RoleFromID(1); got != auth.RoleAgent {
		t.Fatalf("expected agent, got %v", got)
	}
	if got := auth.RoleFromID(999); got != auth.RoleUnknown {
		t.Fatalf("expected unknown for out-of-range id, got %v", got)
	}
	if got := auth.RoleFromID(0); got != auth.RoleUnknown {
		t.Fatalf("expected unknown for zero id, got %v", got)
	}
}

func TestRoleFromName(t *testing.T) {
	if got := auth.RoleFromName("Project Manager"); got != auth.RoleManager {
		t.Fatalf("expected manager, got %v", got)
	}
	if got := auth.RoleFromName("  QA "); got != auth.RoleQA {
		t.Fatalf("expected qa, got %v", got)
	}
	if got := auth.RoleFromName("intern"); got != auth.RoleUnknown {
		t.Fatalf("expected unknown, got %v", got)
	}
}

func TestCapabilitiesFor(t *testing.T) {
	agent := auth.CapabilitiesFor(auth.RoleAgent)
	if agent.CanModerateTrackers || agent.CanManageProjects {
		t.Fatalf("agent should have no elevated capabilities: %+v", agent)
	}

	qa := auth.CapabilitiesFor(auth.RoleQA)
	if !qa.CanModerateTrackers || !qa.CanViewTrackerReport {
		t.Fatalf("qa should moderate and view reports: %+v", qa)
	}
	if qa.CanManageProjects {
		t.Fatalf("qa should not manage projects")
	}

	admin := auth.CapabilitiesFor(auth.RoleAdmin)
	if !admin.CanManageProjects || !admin.CanManageUsers || !admin.CanManageTasks {
		t.Fatalf("admin should have every capability: %+v", admin)
	}

	none := auth.CapabilitiesFor(auth.RoleUnknown)
	if none != (auth.Capabilities{}) {
		t.Fatalf("unknown role should have no capabilities: %+v", none)
	}
}
