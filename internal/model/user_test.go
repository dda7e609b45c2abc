package model

import "testing"

func TestRoleDashboard(t *testing.T) {
	cases := map[UserRole]string{
		UserRoleAdmin:          "/admin/dashboard",
		UserRoleDean:           "/dean/dashboard",
		UserRoleAdministration: "/administration/dashboard",
		UserRoleProfessor:      "/professor/dashboard",
		UserRoleStudent:        "/student/dashboard",
	}
	for role, want := range cases {
		if got := role.Dashboard(); got != want {
			t.Errorf("Dashboard(%s) = %q, want %q", role, got, want)
		}
	}
}

func TestRoleDashboard_UnknownFallsBackToLogin(t *testing.T) {
	if got := UserRole("intruder").Dashboard(); got != "/login" {
		t.Fatalf("Dashboard() = %q, want /login", got)
	}
}

func TestRoleValid(t *testing.T) {
	if !UserRoleProfessor.Valid() {
		t.Fatal("professor must be a valid role")
	}
	if UserRole("superuser").Valid() {
		t.Fatal("unknown role must be invalid")
	}
}

func TestStatusValid(t *testing.T) {
	for _, status := range []UserStatus{UserStatusActive, UserStatusPending, UserStatusDisabled} {
		if !status.Valid() {
			t.Errorf("expected %s to be valid", status)
		}
	}
	if UserStatus("FROZEN").Valid() {
		t.Fatal("unknown status must be invalid")
	}
}
