package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"gorm.io/gorm"

	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/realtime"
	"github.com/Unbornmoral/academic-flow-compass/pkg/blob"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	next    int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.next++
		course.CourseID = fmt.Sprintf("course-%03d", m.next)
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) ListByYearSemester(_ context.Context, yearName, semesterName string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.YearName == yearName && c.SemesterName == semesterName {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	if _, ok := m.courses[course.CourseID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.courses, id)
	return nil
}

// ── Mock CourseFileRepository ──

type mockFileRepo struct {
	files     map[string]*model.CourseFile
	next      int
	createErr error // 注入元数据写入失败
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[string]*model.CourseFile)}
}

func (m *mockFileRepo) Create(_ context.Context, file *model.CourseFile) error {
	if m.createErr != nil {
		return m.createErr
	}
	if file.FileID == "" {
		m.next++
		file.FileID = fmt.Sprintf("file-%03d", m.next)
	}
	m.files[file.FileID] = file
	return nil
}

func (m *mockFileRepo) GetByID(_ context.Context, id string) (*model.CourseFile, error) {
	if f, ok := m.files[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFileRepo) List(_ context.Context) ([]model.CourseFile, error) {
	var result []model.CourseFile
	for _, f := range m.files {
		result = append(result, *f)
	}
	return result, nil
}

func (m *mockFileRepo) ListByCourse(_ context.Context, courseID string) ([]model.CourseFile, error) {
	var result []model.CourseFile
	for _, f := range m.files {
		if f.CourseID == courseID {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockFileRepo) IncrementDownloadCount(_ context.Context, id string) error {
	f, ok := m.files[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.DownloadCount++
	return nil
}

func (m *mockFileRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.files[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.files, id)
	return nil
}

func (m *mockFileRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, f := range m.files {
		if f.CourseID == courseID {
			delete(m.files, id)
		}
	}
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	next        int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.Assignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, assignment *model.Assignment) error {
	if assignment.AssignmentID == "" {
		m.next++
		assignment.AssignmentID = fmt.Sprintf("assign-%03d", m.next)
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) List(_ context.Context) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.CourseID == courseID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, assignment *model.Assignment) error {
	if _, ok := m.assignments[assignment.AssignmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, a := range m.assignments {
		if a.CourseID == courseID {
			delete(m.assignments, id)
		}
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	next  int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.next++
		user.UserID = fmt.Sprintf("user-%03d", m.next)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id string, role model.Role) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

// ── Mock blob.Store ──

type mockBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error // 注入内容写入失败
	delErr  error // 注入内容删除失败
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte)}
}

func (m *mockBlobStore) Put(_ context.Context, key string, r io.Reader) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *mockBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockBlobStore) Delete(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return blob.ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

// ── Mock realtime.Publisher ──

type mockPublisher struct {
	events []realtime.Event
}

func (m *mockPublisher) Publish(_ context.Context, ev realtime.Event) {
	m.events = append(m.events, ev)
}
