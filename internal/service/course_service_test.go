package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/realtime"
	"github.com/Unbornmoral/academic-flow-compass/internal/repository"
)

// ── 测试辅助 ──

func setupTestCourseService() (CourseService, *mockCourseRepo, *mockFileRepo, *mockAssignmentRepo, *mockBlobStore, *mockPublisher) {
	courseRepo := newMockCourseRepo()
	fileRepo := newMockFileRepo()
	assignmentRepo := newMockAssignmentRepo()
	blobs := newMockBlobStore()
	pub := &mockPublisher{}
	repo := &repository.Repository{
		Course:     courseRepo,
		CourseFile: fileRepo,
		Assignment: assignmentRepo,
	}
	svc := NewCourseService("remote", repo, blobs, pub, zap.NewNop())
	return svc, courseRepo, fileRepo, assignmentRepo, blobs, pub
}

// ── CreateCourse 测试 ──

func TestCourseService_CreateCourse_DefaultUnits(t *testing.T) {
	svc, _, _, _, _, pub := setupTestCourseService()

	course, err := svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Title:        "政治学导论",
		YearName:     "YEAR 1",
		SemesterName: "First Semester",
	})
	if err != nil {
		t.Fatalf("CreateCourse 应成功: %v", err)
	}
	if course.Units != 3 {
		t.Errorf("期望默认学分=3，实际=%d", course.Units)
	}
	if len(course.Categories) != 3 {
		t.Errorf("期望3个分类面板，实际=%d", len(course.Categories))
	}
	if len(pub.events) != 1 || pub.events[0].Table != realtime.TableCourses || pub.events[0].Action != realtime.ActionInsert {
		t.Errorf("期望发布一条 courses insert 事件，实际=%v", pub.events)
	}
}

func TestCourseService_CreateCourse_ExplicitUnits(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCourseService()

	units := 5
	course, err := svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Title:        "比较政治学",
		YearName:     "YEAR 2",
		SemesterName: "Second Semester",
		Units:        &units,
	})
	if err != nil {
		t.Fatalf("CreateCourse 应成功: %v", err)
	}
	if course.Units != 5 {
		t.Errorf("期望学分=5，实际=%d", course.Units)
	}
}

func TestCourseService_CreateCourse_InvalidYear(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCourseService()

	_, err := svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Title:        "无效学年课程",
		YearName:     "YEAR 9",
		SemesterName: "First Semester",
	})
	if !errors.Is(err, ErrInvalidYear) {
		t.Errorf("期望 ErrInvalidYear，实际: %v", err)
	}
}

func TestCourseService_CreateCourse_InvalidSemester(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCourseService()

	_, err := svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Title:        "无效学期课程",
		YearName:     "YEAR 1",
		SemesterName: "Third Semester",
	})
	if !errors.Is(err, ErrInvalidSemester) {
		t.Errorf("期望 ErrInvalidSemester，实际: %v", err)
	}
}

// ── ListCourses 测试 ──

func TestCourseService_ListCourses_FilterByYearSemester(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCourseService()

	for _, c := range []dto.CreateCourseRequest{
		{Title: "课程A", YearName: "YEAR 1", SemesterName: "First Semester"},
		{Title: "课程B", YearName: "YEAR 1", SemesterName: "Second Semester"},
		{Title: "课程C", YearName: "YEAR 2", SemesterName: "First Semester"},
	} {
		req := c
		if _, err := svc.CreateCourse(context.Background(), &req); err != nil {
			t.Fatalf("CreateCourse 应成功: %v", err)
		}
	}

	courses, err := svc.ListCourses(context.Background(), "YEAR 1", "First Semester")
	if err != nil {
		t.Fatalf("ListCourses 应成功: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("期望1门课程，实际=%d", len(courses))
	}
	if courses[0].Title != "课程A" {
		t.Errorf("期望课程A，实际=%s", courses[0].Title)
	}
}

// ── UpdateCourse 测试 ──

func TestCourseService_UpdateCourse_PartialPatch(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCourseService()

	created, err := svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Title:        "原标题",
		YearName:     "YEAR 3",
		SemesterName: "First Semester",
	})
	if err != nil {
		t.Fatalf("CreateCourse 应成功: %v", err)
	}

	title := "新标题"
	updated, err := svc.UpdateCourse(context.Background(), created.ID, &dto.UpdateCourseRequest{Title: &title})
	if err != nil {
		t.Fatalf("UpdateCourse 应成功: %v", err)
	}
	if updated.Title != "新标题" {
		t.Errorf("期望标题已更新，实际=%s", updated.Title)
	}
	if updated.Units != 3 {
		t.Errorf("未补丁字段不应变化，学分实际=%d", updated.Units)
	}
}

func TestCourseService_UpdateCourse_NotFound(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCourseService()

	title := "任意"
	_, err := svc.UpdateCourse(context.Background(), "nonexistent", &dto.UpdateCourseRequest{Title: &title})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── DeleteCourse 测试 ──

func TestCourseService_DeleteCourse_Cascade(t *testing.T) {
	svc, courseRepo, fileRepo, assignmentRepo, blobs, pub := setupTestCourseService()

	created, err := svc.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		Title:        "待删除课程",
		YearName:     "YEAR 4",
		SemesterName: "Second Semester",
	})
	if err != nil {
		t.Fatalf("CreateCourse 应成功: %v", err)
	}

	// 挂上文件与作业
	blobs.objects["key-1"] = []byte("content")
	fileRepo.files["f1"] = &model.CourseFile{FileID: "f1", CourseID: created.ID, FileName: "notes.pdf", FilePath: "key-1"}
	assignmentRepo.assignments["a1"] = &model.Assignment{AssignmentID: "a1", CourseID: created.ID, Title: "作业1"}

	if err := svc.DeleteCourse(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteCourse 应成功: %v", err)
	}

	if _, ok := courseRepo.courses[created.ID]; ok {
		t.Error("课程应已删除")
	}
	if len(fileRepo.files) != 0 {
		t.Errorf("课程文件应级联删除，剩余=%d", len(fileRepo.files))
	}
	if len(assignmentRepo.assignments) != 0 {
		t.Errorf("课程作业应级联删除，剩余=%d", len(assignmentRepo.assignments))
	}
	if _, ok := blobs.objects["key-1"]; ok {
		t.Error("文件内容应已清理")
	}

	last := pub.events[len(pub.events)-1]
	if last.Table != realtime.TableCourses || last.Action != realtime.ActionDelete {
		t.Errorf("期望发布 courses delete 事件，实际=%v", last)
	}
}

func TestCourseService_DeleteCourse_NotFound(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCourseService()

	err := svc.DeleteCourse(context.Background(), "nonexistent")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}
