package user

import "testing"

func TestMaxRolePriority(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{name: "no roles", roles: nil, want: 0},
		{name: "unknown role", roles: []string{"emperor"}, want: 0},
		{name: "user", roles: []string{RoleUser}, want: 1},
		{name: "teacher", roles: []string{RoleUser, RoleTeacher}, want: 2},
		{name: "admin wins", roles: []string{RoleUser, RoleAdmin, RoleTeacher}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxRolePriority(tt.roles); got != tt.want {
				t.Errorf("MaxRolePriority(%v) = %v; want %v", tt.roles, got, tt.want)
			}
		})
	}
}

func TestUser_flags(t *testing.T) {
	var usr User
	if usr.Active() {
		t.Error("unset IsActive must read inactive")
	}
	usr.SetActive(true)
	if !usr.Active() {
		t.Error("SetActive(true) must read active")
	}

	usr.Roles = []string{RoleTeacher}
	if usr.IsAdmin() {
		t.Error("teacher is not admin")
	}
	if !usr.IsTeacher() {
		t.Error("teacher must read teacher")
	}
}

func TestUser_password(t *testing.T) {
	var usr User
	if err := usr.SetPassword("s3cr3tP4ss"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("s3cr3tP4ss"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("nope"); err == nil {
		t.Error("wrong password must not check out")
	}
}
