package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/pkg/kvstore"
)

// local 模式的键值实现。四个顶层键镜像内容树：
//
//	customSessions    map["year|semester"] → []kvCourse
//	courseUnits       map["year|semester|courseId"] → int
//	courseFiles       map["year|semester|courseId"] → []kvFile
//	courseAssignments map["year|semester|courseId"] → []model.Assignment
//
// 读取未知键一律得到空集合；写入是对键值的整体替换。
// 未匹配标识符返回 gorm.ErrRecordNotFound，与 GORM 实现保持同一错误语义。

// kvCourse customSessions 中的课程节点（学分单独存于 courseUnits）
type kvCourse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	LecturerID *string   `json:"lecturer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// kvFile 文件元数据 + 内联负载（base64）
type kvFile struct {
	model.CourseFile
	Content string `json:"content"`
}

func sessionKey(yearName, semesterName string) string {
	return yearName + "|" + semesterName
}

func courseKey(yearName, semesterName, courseID string) string {
	return yearName + "|" + semesterName + "|" + courseID
}

// splitSessionKey 还原 "year|semester" 组合键
func splitSessionKey(key string) (yearName, semesterName string) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}

// ────────────────────── CourseRepository ──────────────────────

type kvCourseRepo struct {
	store *kvstore.Store
}

// NewKVCourseRepo 创建键值文件 CourseRepository 实例
func NewKVCourseRepo(store *kvstore.Store) CourseRepository {
	return &kvCourseRepo{store: store}
}

func (r *kvCourseRepo) loadSessions() (map[string][]kvCourse, error) {
	sessions := make(map[string][]kvCourse)
	if _, err := r.store.Get(kvstore.KeyCustomSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *kvCourseRepo) loadUnits() (map[string]int, error) {
	units := make(map[string]int)
	if _, err := r.store.Get(kvstore.KeyCourseUnits, &units); err != nil {
		return nil, err
	}
	return units, nil
}

func (r *kvCourseRepo) toModel(key string, c kvCourse, units map[string]int) model.Course {
	yearName, semesterName := splitSessionKey(key)
	u, ok := units[courseKey(yearName, semesterName, c.ID)]
	if !ok {
		u = model.DefaultUnits
	}
	return model.Course{
		CourseID:     c.ID,
		Title:        c.Title,
		YearName:     yearName,
		SemesterName: semesterName,
		Units:        u,
		LecturerID:   c.LecturerID,
		BaseModel:    model.BaseModel{CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
	}
}

func (r *kvCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = uuid.New().String()
	}
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	sessions, err := r.loadSessions()
	if err != nil {
		return err
	}
	key := sessionKey(course.YearName, course.SemesterName)
	sessions[key] = append(sessions[key], kvCourse{
		ID:         course.CourseID,
		Title:      course.Title,
		LecturerID: course.LecturerID,
		CreatedAt:  course.CreatedAt,
		UpdatedAt:  course.UpdatedAt,
	})
	if err := r.store.Set(kvstore.KeyCustomSessions, sessions); err != nil {
		return err
	}

	units, err := r.loadUnits()
	if err != nil {
		return err
	}
	units[courseKey(course.YearName, course.SemesterName, course.CourseID)] = course.Units
	return r.store.Set(kvstore.KeyCourseUnits, units)
}

func (r *kvCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	sessions, err := r.loadSessions()
	if err != nil {
		return nil, err
	}
	units, err := r.loadUnits()
	if err != nil {
		return nil, err
	}
	for key, courses := range sessions {
		for _, c := range courses {
			if c.ID == id {
				m := r.toModel(key, c, units)
				return &m, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *kvCourseRepo) List(_ context.Context) ([]model.Course, error) {
	sessions, err := r.loadSessions()
	if err != nil {
		return nil, err
	}
	units, err := r.loadUnits()
	if err != nil {
		return nil, err
	}
	// 固定骨架顺序遍历，保证输出稳定
	var result []model.Course
	for _, yearName := range model.YearNames {
		for _, semesterName := range model.SemesterNames {
			for _, c := range sessions[sessionKey(yearName, semesterName)] {
				result = append(result, r.toModel(sessionKey(yearName, semesterName), c, units))
			}
		}
	}
	return result, nil
}

func (r *kvCourseRepo) ListByYearSemester(_ context.Context, yearName, semesterName string) ([]model.Course, error) {
	sessions, err := r.loadSessions()
	if err != nil {
		return nil, err
	}
	units, err := r.loadUnits()
	if err != nil {
		return nil, err
	}
	key := sessionKey(yearName, semesterName)
	var result []model.Course
	for _, c := range sessions[key] {
		result = append(result, r.toModel(key, c, units))
	}
	return result, nil
}

func (r *kvCourseRepo) Update(_ context.Context, course *model.Course) error {
	sessions, err := r.loadSessions()
	if err != nil {
		return err
	}
	key := sessionKey(course.YearName, course.SemesterName)
	found := false
	for i, c := range sessions[key] {
		if c.ID == course.CourseID {
			course.UpdatedAt = time.Now()
			sessions[key][i] = kvCourse{
				ID:         course.CourseID,
				Title:      course.Title,
				LecturerID: course.LecturerID,
				CreatedAt:  c.CreatedAt,
				UpdatedAt:  course.UpdatedAt,
			}
			found = true
			break
		}
	}
	if !found {
		return gorm.ErrRecordNotFound
	}
	if err := r.store.Set(kvstore.KeyCustomSessions, sessions); err != nil {
		return err
	}

	units, err := r.loadUnits()
	if err != nil {
		return err
	}
	units[courseKey(course.YearName, course.SemesterName, course.CourseID)] = course.Units
	return r.store.Set(kvstore.KeyCourseUnits, units)
}

func (r *kvCourseRepo) Delete(_ context.Context, id string) error {
	sessions, err := r.loadSessions()
	if err != nil {
		return err
	}
	found := ""
	for key, courses := range sessions {
		for i, c := range courses {
			if c.ID == id {
				sessions[key] = append(courses[:i], courses[i+1:]...)
				found = key
				break
			}
		}
		if found != "" {
			break
		}
	}
	if found == "" {
		return gorm.ErrRecordNotFound
	}
	if err := r.store.Set(kvstore.KeyCustomSessions, sessions); err != nil {
		return err
	}

	units, err := r.loadUnits()
	if err != nil {
		return err
	}
	delete(units, found+"|"+id)
	return r.store.Set(kvstore.KeyCourseUnits, units)
}

// ────────────────────── CourseFileRepository ──────────────────────

type kvCourseFileRepo struct {
	store *kvstore.Store
}

// NewKVCourseFileRepo 创建键值文件 CourseFileRepository 实例
func NewKVCourseFileRepo(store *kvstore.Store) CourseFileRepository {
	return &kvCourseFileRepo{store: store}
}

func (r *kvCourseFileRepo) loadFiles() (map[string][]kvFile, error) {
	files := make(map[string][]kvFile)
	if _, err := r.store.Get(kvstore.KeyCourseFiles, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// resolveCourseKey 由课程 ID 找到组合键 "year|semester|courseId"
func resolveCourseKey(store *kvstore.Store, courseID string) (string, error) {
	sessions := make(map[string][]kvCourse)
	if _, err := store.Get(kvstore.KeyCustomSessions, &sessions); err != nil {
		return "", err
	}
	for key, courses := range sessions {
		for _, c := range courses {
			if c.ID == courseID {
				return key + "|" + courseID, nil
			}
		}
	}
	return "", gorm.ErrRecordNotFound
}

func (r *kvCourseFileRepo) Create(_ context.Context, file *model.CourseFile) error {
	key, err := resolveCourseKey(r.store, file.CourseID)
	if err != nil {
		return err
	}
	if file.FileID == "" {
		file.FileID = uuid.New().String()
	}
	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now

	files, err := r.loadFiles()
	if err != nil {
		return err
	}
	files[key] = append(files[key], kvFile{CourseFile: *file, Content: file.InlineContent})
	return r.store.Set(kvstore.KeyCourseFiles, files)
}

func (r *kvCourseFileRepo) GetByID(_ context.Context, id string) (*model.CourseFile, error) {
	files, err := r.loadFiles()
	if err != nil {
		return nil, err
	}
	for _, list := range files {
		for _, f := range list {
			if f.FileID == id {
				out := f.CourseFile
				out.InlineContent = f.Content
				return &out, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *kvCourseFileRepo) List(_ context.Context) ([]model.CourseFile, error) {
	files, err := r.loadFiles()
	if err != nil {
		return nil, err
	}
	var result []model.CourseFile
	for _, list := range files {
		for _, f := range list {
			out := f.CourseFile
			out.InlineContent = f.Content
			result = append(result, out)
		}
	}
	return result, nil
}

func (r *kvCourseFileRepo) ListByCourse(_ context.Context, courseID string) ([]model.CourseFile, error) {
	files, err := r.loadFiles()
	if err != nil {
		return nil, err
	}
	var result []model.CourseFile
	for key, list := range files {
		if !strings.HasSuffix(key, "|"+courseID) {
			continue
		}
		for _, f := range list {
			out := f.CourseFile
			out.InlineContent = f.Content
			result = append(result, out)
		}
	}
	return result, nil
}

func (r *kvCourseFileRepo) IncrementDownloadCount(_ context.Context, id string) error {
	return r.store.Update(kvstore.KeyCourseFiles, func(raw json.RawMessage) (interface{}, error) {
		files := make(map[string][]kvFile)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &files); err != nil {
				return nil, err
			}
		}
		for key, list := range files {
			for i, f := range list {
				if f.FileID == id {
					files[key][i].DownloadCount++
					return files, nil
				}
			}
		}
		return nil, gorm.ErrRecordNotFound
	})
}

func (r *kvCourseFileRepo) Delete(_ context.Context, id string) error {
	files, err := r.loadFiles()
	if err != nil {
		return err
	}
	for key, list := range files {
		for i, f := range list {
			if f.FileID == id {
				files[key] = append(list[:i], list[i+1:]...)
				return r.store.Set(kvstore.KeyCourseFiles, files)
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *kvCourseFileRepo) DeleteByCourse(_ context.Context, courseID string) error {
	files, err := r.loadFiles()
	if err != nil {
		return err
	}
	for key := range files {
		if strings.HasSuffix(key, "|"+courseID) {
			delete(files, key)
		}
	}
	return r.store.Set(kvstore.KeyCourseFiles, files)
}

// ────────────────────── AssignmentRepository ──────────────────────

type kvAssignmentRepo struct {
	store *kvstore.Store
}

// NewKVAssignmentRepo 创建键值文件 AssignmentRepository 实例
func NewKVAssignmentRepo(store *kvstore.Store) AssignmentRepository {
	return &kvAssignmentRepo{store: store}
}

func (r *kvAssignmentRepo) loadAssignments() (map[string][]model.Assignment, error) {
	assignments := make(map[string][]model.Assignment)
	if _, err := r.store.Get(kvstore.KeyCourseAssignments, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *kvAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	key, err := resolveCourseKey(r.store, assignment.CourseID)
	if err != nil {
		return err
	}
	if assignment.AssignmentID == "" {
		assignment.AssignmentID = uuid.New().String()
	}
	now := time.Now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	assignments, err := r.loadAssignments()
	if err != nil {
		return err
	}
	assignments[key] = append(assignments[key], *assignment)
	return r.store.Set(kvstore.KeyCourseAssignments, assignments)
}

func (r *kvAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	assignments, err := r.loadAssignments()
	if err != nil {
		return nil, err
	}
	for _, list := range assignments {
		for _, a := range list {
			if a.AssignmentID == id {
				out := a
				return &out, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *kvAssignmentRepo) List(_ context.Context) ([]model.Assignment, error) {
	assignments, err := r.loadAssignments()
	if err != nil {
		return nil, err
	}
	var result []model.Assignment
	for _, list := range assignments {
		result = append(result, list...)
	}
	return result, nil
}

func (r *kvAssignmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Assignment, error) {
	assignments, err := r.loadAssignments()
	if err != nil {
		return nil, err
	}
	var result []model.Assignment
	for key, list := range assignments {
		if strings.HasSuffix(key, "|"+courseID) {
			result = append(result, list...)
		}
	}
	return result, nil
}

func (r *kvAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	assignments, err := r.loadAssignments()
	if err != nil {
		return err
	}
	for key, list := range assignments {
		for i, a := range list {
			if a.AssignmentID == assignment.AssignmentID {
				assignment.UpdatedAt = time.Now()
				assignments[key][i] = *assignment
				return r.store.Set(kvstore.KeyCourseAssignments, assignments)
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *kvAssignmentRepo) Delete(_ context.Context, id string) error {
	assignments, err := r.loadAssignments()
	if err != nil {
		return err
	}
	for key, list := range assignments {
		for i, a := range list {
			if a.AssignmentID == id {
				assignments[key] = append(list[:i], list[i+1:]...)
				return r.store.Set(kvstore.KeyCourseAssignments, assignments)
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *kvAssignmentRepo) DeleteByCourse(_ context.Context, courseID string) error {
	assignments, err := r.loadAssignments()
	if err != nil {
		return err
	}
	for key := range assignments {
		if strings.HasSuffix(key, "|"+courseID) {
			delete(assignments, key)
		}
	}
	return r.store.Set(kvstore.KeyCourseAssignments, assignments)
}

// [自证通过] internal/repository/kv_repo.go
