package model

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"member", RoleMember},
		{"trainer", RoleTrainer},
		{"admin", RoleAdmin},
		{"", RoleMember},
		{"owner", RoleMember},
		{"MEMBER", RoleMember}, // callers lowercase first; unknown casing falls back
	}
	for _, c := range cases {
		if got := NormalizeRole(c.in); got != c.want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(RoleMember); got != StatusPending {
		t.Fatalf("members must start pending, got %q", got)
	}
	if got := InitialStatus(RoleTrainer); got != StatusActive {
		t.Fatalf("trainers must start active, got %q", got)
	}
	if got := InitialStatus(RoleAdmin); got != StatusActive {
		t.Fatalf("admins must start active, got %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	a := Account{FirstName: "Dana", LastName: "Cole"}
	if got := a.DisplayName(); got != "Dana Cole" {
		t.Fatalf("DisplayName = %q", got)
	}
	b := Account{FirstName: "Dana"}
	if got := b.DisplayName(); got != "Dana" {
		t.Fatalf("DisplayName without last name = %q", got)
	}
}
