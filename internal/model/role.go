package model

// Role 用户角色（闭合枚举）
// 空字符串表示未认证访客
type Role string

const (
	RoleNone          Role = ""
	RoleStudent       Role = "student"
	RoleLecturer      Role = "lecturer"
	RoleAdministrator Role = "administrator"
	RoleDeveloper     Role = "developer"
)

// ValidRole 判断角色是否属于闭合枚举（不含访客）
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleAdministrator, RoleDeveloper:
		return true
	}
	return false
}

// Capability 单项布尔权限
type Capability string

const (
	CapView            Capability = "can_view"
	CapUpload          Capability = "can_upload"
	CapEditCourses     Capability = "can_edit_courses"
	CapEditContent     Capability = "can_edit_content"
	CapDeleteCourses   Capability = "can_delete_courses"
	CapUploadFiles     Capability = "can_upload_files"
	CapEditAssignments Capability = "can_edit_assignments"
)

// AllCapabilities 所有权限项（响应序列化用，顺序固定）
var AllCapabilities = []Capability{
	CapView,
	CapUpload,
	CapEditCourses,
	CapEditContent,
	CapDeleteCourses,
	CapUploadFiles,
	CapEditAssignments,
}

// capabilityTable 角色 → 权限集查询表
//
// 约束：沿 student < lecturer < administrator 权限单调不减，
// developer 是 administrator 的超集；未认证访客全为 false。
// 刻意写成查询表而非串行条件判断，便于审计。
var capabilityTable = map[Role]map[Capability]bool{
	RoleNone: {},
	RoleStudent: {
		CapView: true,
	},
	RoleLecturer: {
		CapView:            true,
		CapUpload:          true,
		CapEditCourses:     true,
		CapUploadFiles:     true,
		CapEditAssignments: true,
	},
	RoleAdministrator: {
		CapView:            true,
		CapUpload:          true,
		CapEditCourses:     true,
		CapEditContent:     true,
		CapDeleteCourses:   true,
		CapUploadFiles:     true,
		CapEditAssignments: true,
	},
	RoleDeveloper: {
		CapView:            true,
		CapUpload:          true,
		CapEditCourses:     true,
		CapEditContent:     true,
		CapDeleteCourses:   true,
		CapUploadFiles:     true,
		CapEditAssignments: true,
	},
}

// Capabilities 返回角色的权限集合
// 对闭合枚举全域有定义：未知角色按访客处理（全 false），无副作用
func Capabilities(r Role) map[Capability]bool {
	row, ok := capabilityTable[r]
	if !ok {
		row = capabilityTable[RoleNone]
	}
	out := make(map[Capability]bool, len(AllCapabilities))
	for _, c := range AllCapabilities {
		out[c] = row[c]
	}
	return out
}

// HasCapability 判断角色是否具备单项权限
func HasCapability(r Role, c Capability) bool {
	row, ok := capabilityTable[r]
	if !ok {
		return false
	}
	return row[c]
}
