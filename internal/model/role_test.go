package model

import "testing"

// ── 权限表结构性约束测试 ──

func TestCapabilities_GuestAllFalse(t *testing.T) {
	caps := Capabilities(RoleNone)
	if len(caps) != len(AllCapabilities) {
		t.Fatalf("权限集应覆盖全部权限项，期望=%d，实际=%d", len(AllCapabilities), len(caps))
	}
	for c, v := range caps {
		if v {
			t.Errorf("访客权限 %s 应为 false", c)
		}
	}
}

func TestCapabilities_UnknownRoleAsGuest(t *testing.T) {
	caps := Capabilities(Role("superuser"))
	for c, v := range caps {
		if v {
			t.Errorf("未知角色权限 %s 应为 false", c)
		}
	}
}

// 沿 student < lecturer < administrator 权限应单调不减
func TestCapabilities_MonotoneWidening(t *testing.T) {
	order := []Role{RoleStudent, RoleLecturer, RoleAdministrator}
	for i := 0; i < len(order)-1; i++ {
		lower := Capabilities(order[i])
		higher := Capabilities(order[i+1])
		for _, c := range AllCapabilities {
			if lower[c] && !higher[c] {
				t.Errorf("%s 具备 %s 但 %s 不具备，违反单调性", order[i], c, order[i+1])
			}
		}
	}
}

func TestCapabilities_DeveloperSupersetOfAdmin(t *testing.T) {
	admin := Capabilities(RoleAdministrator)
	dev := Capabilities(RoleDeveloper)
	for _, c := range AllCapabilities {
		if admin[c] && !dev[c] {
			t.Errorf("administrator 具备 %s 但 developer 不具备", c)
		}
	}
}

func TestCapabilities_StudentViewOnly(t *testing.T) {
	caps := Capabilities(RoleStudent)
	for _, c := range AllCapabilities {
		want := c == CapView
		if caps[c] != want {
			t.Errorf("student 权限 %s 期望=%v，实际=%v", c, want, caps[c])
		}
	}
}

// 权限查询应为纯函数：返回副本，调用方修改不影响后续查询
func TestCapabilities_ReturnsCopy(t *testing.T) {
	first := Capabilities(RoleStudent)
	first[CapDeleteCourses] = true

	second := Capabilities(RoleStudent)
	if second[CapDeleteCourses] {
		t.Error("修改返回值不应污染权限表")
	}
}

func TestHasCapability(t *testing.T) {
	if !HasCapability(RoleLecturer, CapUploadFiles) {
		t.Error("lecturer 应具备 can_upload_files")
	}
	if HasCapability(RoleLecturer, CapDeleteCourses) {
		t.Error("lecturer 不应具备 can_delete_courses")
	}
	if HasCapability(RoleNone, CapView) {
		t.Error("访客不应具备 can_view")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleLecturer, RoleAdministrator, RoleDeveloper} {
		if !ValidRole(r) {
			t.Errorf("%s 应为合法角色", r)
		}
	}
	if ValidRole(RoleNone) {
		t.Error("访客不属于闭合枚举")
	}
	if ValidRole(Role("root")) {
		t.Error("未知角色不应合法")
	}
}
