package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestHasPermission(t *testing.T) {
	if !HasPermission(RoleIntegration, PermPayrollSync) {
		t.Fatal("integration should trigger payroll sync")
	}
	if HasPermission(RoleViewer, PermAttendanceImport) {
		t.Fatal("viewer must not import")
	}
	if HasPermission("ghost", PermAttendanceRead) {
		t.Fatal("unknown role must have no permissions")
	}
	if !(Principal{Actor: "a", Role: RoleAdmin}).Can(PermAuditRead) {
		t.Fatal("admin should read audit")
	}
}
