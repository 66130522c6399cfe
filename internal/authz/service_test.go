package authz

import (
	"fmt"
	"strings"
	"testing"

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

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/products/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"ops"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(1, "/api/v1/admin/products/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceAdmin(1, "/api/v1/admin/products/42", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/admin/orders", "GET"); err != nil {
		t.Fatalf("grant ops policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("support", "/admin/deliveries", "GET"); err != nil {
		t.Fatalf("grant support policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(7, []string{"ops"}); err != nil {
		t.Fatalf("assign ops failed: %v", err)
	}
	if err := svc.SetAdminRoles(7, []string{"support"}); err != nil {
		t.Fatalf("override with support failed: %v", err)
	}

	roles, err := svc.GetAdminRoles(7)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:support" {
		t.Fatalf("expected only role:support, got %v", roles)
	}

	allow, _ := svc.EnforceAdmin(7, "/api/v1/admin/orders", "GET")
	if allow {
		t.Fatalf("expected removed role to lose its access")
	}
	allow, _ = svc.EnforceAdmin(7, "/api/v1/admin/deliveries", "GET")
	if !allow {
		t.Fatalf("expected new role access")
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	want := map[string]bool{
		"role:readonly_auditor": false,
		"role:operations":       false,
		"role:support":          false,
	}
	for _, role := range roles {
		if _, ok := want[role]; ok {
			want[role] = true
		}
	}
	for role, found := range want {
		if !found {
			t.Fatalf("builtin role %s missing from %v", role, roles)
		}
	}

	// readonly_auditor can read everything under /admin but not mutate.
	if err := svc.SetAdminRoles(3, []string{"readonly_auditor"}); err != nil {
		t.Fatalf("assign auditor failed: %v", err)
	}
	allow, _ := svc.EnforceAdmin(3, "/api/v1/admin/orders/15", "GET")
	if !allow {
		t.Fatalf("expected auditor read access")
	}
	allow, _ = svc.EnforceAdmin(3, "/api/v1/admin/orders/15/approve", "POST")
	if allow {
		t.Fatalf("expected auditor to be denied writes")
	}

	// support can approve orders and revoke deliveries.
	if err := svc.SetAdminRoles(4, []string{"support"}); err != nil {
		t.Fatalf("assign support failed: %v", err)
	}
	allow, _ = svc.EnforceAdmin(4, "/api/v1/admin/orders/15/approve", "POST")
	if !allow {
		t.Fatalf("expected support to approve orders")
	}
	allow, _ = svc.EnforceAdmin(4, "/api/v1/admin/products", "POST")
	if allow {
		t.Fatalf("expected support to be denied product writes")
	}
}

func TestNormalizeHelpers(t *testing.T) {
	if got := NormalizeObject("/api/v1/admin/users"); got != "/admin/users" {
		t.Fatalf("unexpected object %q", got)
	}
	if got := NormalizeObject("admin/users"); got != "/admin/users" {
		t.Fatalf("unexpected object %q", got)
	}
	if got := NormalizeAction(" get "); got != "GET" {
		t.Fatalf("unexpected action %q", got)
	}
	role, err := NormalizeRole("night shift")
	if err != nil || role != "role:night_shift" {
		t.Fatalf("unexpected role %q err %v", role, err)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("expected error for blank role")
	}
}
