package model

import "testing"

func TestValidRole(t *testing.T) {
	cases := []struct {
		role UserRole
		want bool
	}{
		{Admin, true},
		{QuizMaker, true},
		{QuizTaker, true},
		{UserRole(""), false},
		{UserRole("admin"), false},
		{UserRole("TEACHER"), false},
	}
	for _, tc := range cases {
		if got := ValidRole(tc.role); got != tc.want {
			t.Errorf("ValidRole(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}

	// 注册与改角色共用同一个校验入口
	var registered User
	registered.Role = QuizTaker
	if !ValidRole(registered.Role) {
		t.Errorf("default role %q should be valid", registered.Role)
	}
}
