package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aptechmall/ordercore/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestBuiltinRolesGuardOrderConsole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	// 重复初始化不报错
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	cases := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{constants.RoleStaff, "/api/v1/admin/orders", "GET", true},
		{constants.RoleStaff, "/api/v1/admin/orders/42/status", "put", true},
		{constants.RoleStaff, "/api/v1/admin/orders/42", "DELETE", false},
		{constants.RoleAdmin, "/api/v1/admin/orders/42", "DELETE", true},
		{constants.RoleAdmin, "/api/v1/admin/orders", "GET", true},
		{constants.RoleCustomer, "/api/v1/admin/orders", "GET", false},
		{"", "/api/v1/admin/orders", "GET", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, tc.object, tc.action)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.action, tc.object, err)
		}
		if allow != tc.want {
			t.Fatalf("enforce %s %s %s want %v got %v", tc.role, tc.action, tc.object, tc.want, allow)
		}
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(roles) != 2 || roles[0] != "role:admin" || roles[1] != "role:staff" {
		t.Fatalf("unexpected roles: %v", roles)
	}
}

func TestGrantAndRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("auditor", "/admin/orders/:id", "GET"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	allow, err := svc.EnforceRole("AUDITOR", "/api/v1/admin/orders/9", "GET")
	if err != nil || !allow {
		t.Fatalf("expected allow, got %v %v", allow, err)
	}
	policies, err := svc.GetRolePolicies("auditor")
	if err != nil || len(policies) != 1 || policies[0].Object != "/admin/orders/:id" {
		t.Fatalf("unexpected policies: %+v %v", policies, err)
	}
	if err := svc.RevokeRolePolicy("auditor", "/admin/orders/:id", "GET"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, err = svc.EnforceRole("auditor", "/api/v1/admin/orders/9", "GET")
	if err != nil || allow {
		t.Fatalf("expected deny after revoke, got %v %v", allow, err)
	}
}

func TestNormalizeHelpers(t *testing.T) {
	if got := NormalizeObject("api/v1/admin/orders"); got != "/admin/orders" {
		t.Fatalf("unexpected object: %s", got)
	}
	if got := NormalizeObject("/api/v1"); got != "/" {
		t.Fatalf("root object want / got %s", got)
	}
	if got, err := NormalizeRole(" Staff "); err != nil || got != "role:staff" {
		t.Fatalf("unexpected role: %s %v", got, err)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("blank role should fail")
	}
	if _, err := NormalizeRole("role:"); err == nil {
		t.Fatalf("bare prefix should fail")
	}
}
