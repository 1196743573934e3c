package identity

import "testing"

func TestHasElevatedRole(t *testing.T) {
	cases := map[Role]bool{
		RoleAdmin:    true,
		RoleStaff:    true,
		RoleCustomer: false,
		Role("ROOT"): false,
	}
	for role, want := range cases {
		p := Principal{UserID: 1, Role: role}
		if got := p.HasElevatedRole(); got != want {
			t.Fatalf("role %s elevated want %v got %v", role, want, got)
		}
	}
}

func TestCanAccess(t *testing.T) {
	owner := Principal{UserID: 7, Role: RoleCustomer}
	other := Principal{UserID: 8, Role: RoleCustomer}
	staff := Principal{UserID: 9, Role: RoleStaff}

	if !CanAccess(owner, 7) {
		t.Fatalf("owner should access own resource")
	}
	if CanAccess(other, 7) {
		t.Fatalf("other customer should not access resource")
	}
	if !CanAccess(staff, 7) {
		t.Fatalf("staff should access any resource")
	}
	if CanAccess(nil, 7) {
		t.Fatalf("nil identity should not access resource")
	}
	if CanAccess(Principal{}, 0) {
		t.Fatalf("anonymous principal should not match zero owner")
	}
}

func TestParseRoleAndStatus(t *testing.T) {
	if role, ok := ParseRole(" staff "); !ok || role != RoleStaff {
		t.Fatalf("parse staff failed: %v %v", role, ok)
	}
	if _, ok := ParseRole("guest"); ok {
		t.Fatalf("unknown role should fail")
	}
	if status, ok := ParseUserStatus("suspended"); !ok || status.IsActive() {
		t.Fatalf("suspended should parse and be inactive: %v %v", status, ok)
	}
	if status, ok := ParseUserStatus("ACTIVE"); !ok || !status.IsActive() {
		t.Fatalf("active should parse and be active: %v %v", status, ok)
	}
}
