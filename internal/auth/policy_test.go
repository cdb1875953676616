package auth

import "testing"

func TestPolicySatisfiedAny(t *testing.T) {
	policy := RequireAny(RoleAdmin, RoleHR)

	cases := []struct {
		name  string
		roles []Role
		want  bool
	}{
		{"one overlapping role", []Role{RoleManager, RoleHR}, true},
		{"no overlap", []Role{RoleManager}, false},
		{"empty caller set", nil, false},
		{"exact match", []Role{RoleAdmin}, true},
	}
	for _, tc := range cases {
		if got := policy.Satisfied(tc.roles); got != tc.want {
			t.Fatalf("%s: Satisfied(%v)=%v, want %v", tc.name, tc.roles, got, tc.want)
		}
	}
}

func TestPolicySatisfiedAll(t *testing.T) {
	policy := RequireAll(RoleAdmin, RoleHR)

	cases := []struct {
		name  string
		roles []Role
		want  bool
	}{
		{"superset", []Role{RoleAdmin, RoleHR, RoleManager}, true},
		{"exact set", []Role{RoleAdmin, RoleHR}, true},
		{"partial", []Role{RoleAdmin}, false},
		{"empty caller set", nil, false},
	}
	for _, tc := range cases {
		if got := policy.Satisfied(tc.roles); got != tc.want {
			t.Fatalf("%s: Satisfied(%v)=%v, want %v", tc.name, tc.roles, got, tc.want)
		}
	}
}

func TestPolicyDenialMessage(t *testing.T) {
	if got := RequireAny(RoleAdmin).DenialMessage(); got != DefaultDenialMessage {
		t.Fatalf("unexpected default message: %q", got)
	}
	custom := RequireAll(RoleAdmin, RoleHR).WithMessage("admins and hr only")
	if got := custom.DenialMessage(); got != "admins and hr only" {
		t.Fatalf("unexpected custom message: %q", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Guard("employees.delete", RequireAll(RoleAdmin, RoleHR))
	reg.GuardGroup("users", RequireAny(RoleAdmin))

	if _, ok := reg.Lookup("employees.list"); ok {
		t.Fatal("unregistered operation should be unguarded")
	}

	p, ok := reg.Lookup("employees.delete")
	if !ok || p.Combinator != All {
		t.Fatalf("expected explicit policy, got %v ok=%v", p, ok)
	}

	// Group fallback applies to operations with no explicit policy.
	p, ok = reg.Lookup("users.create")
	if !ok || p.Combinator != Any || len(p.Roles) != 1 {
		t.Fatalf("expected group policy, got %v ok=%v", p, ok)
	}

	// An explicit registration wins over the group.
	reg.Guard("users.create", RequireAll(RoleAdmin, RoleHR))
	p, _ = reg.Lookup("users.create")
	if p.Combinator != All {
		t.Fatal("explicit policy should take precedence over group policy")
	}
}

func TestParseRoles(t *testing.T) {
	roles := ParseRoles([]string{"ADMIN", "AUDITOR", "HR", "ADMIN", ""})
	if len(roles) != 2 {
		t.Fatalf("expected unknown and duplicate names dropped, got %v", roles)
	}
	if roles[0] != RoleAdmin || roles[1] != RoleHR {
		t.Fatalf("unexpected roles: %v", roles)
	}
}
