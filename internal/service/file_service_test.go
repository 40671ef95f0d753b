package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/repository"
)

// ── 测试辅助 ──

func setupTestFileService(mode string) (FileService, *mockCourseRepo, *mockFileRepo, *mockBlobStore, *mockPublisher) {
	courseRepo := newMockCourseRepo()
	fileRepo := newMockFileRepo()
	blobs := newMockBlobStore()
	pub := &mockPublisher{}
	repo := &repository.Repository{
		Course:     courseRepo,
		CourseFile: fileRepo,
		Assignment: newMockAssignmentRepo(),
	}
	svc := NewFileService(mode, repo, blobs, pub, zap.NewNop())
	return svc, courseRepo, fileRepo, blobs, pub
}

func seedCourse(courseRepo *mockCourseRepo, id string) {
	courseRepo.courses[id] = &model.Course{
		CourseID:     id,
		Title:        "测试课程",
		YearName:     "YEAR 1",
		SemesterName: "First Semester",
		Units:        3,
	}
}

// ── Upload 测试 ──

func TestFileService_Upload_Remote(t *testing.T) {
	svc, courseRepo, fileRepo, blobs, pub := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")

	content := []byte("lecture notes")
	resp, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryNotes,
		FileName: "第一讲.pdf",
		FileType: "application/pdf",
		Content:  content,
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	if resp.FileSize != int64(len(content)) {
		t.Errorf("期望文件大小=%d，实际=%d", len(content), resp.FileSize)
	}

	// 内容应已落对象存储，键由服务生成
	stored := fileRepo.files[resp.ID]
	if stored == nil {
		t.Fatal("元数据应已写入")
	}
	if !bytes.Equal(blobs.objects[stored.FilePath], content) {
		t.Error("对象存储内容应与上传字节一致")
	}
	if len(pub.events) != 1 {
		t.Errorf("期望发布1条事件，实际=%d", len(pub.events))
	}
}

func TestFileService_Upload_Local_Inline(t *testing.T) {
	svc, courseRepo, fileRepo, blobs, _ := setupTestFileService("local")
	seedCourse(courseRepo, "course-1")

	resp, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryPastQuestions,
		FileName: "past.pdf",
		FileType: "application/pdf",
		Content:  []byte("past questions"),
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}

	stored := fileRepo.files[resp.ID]
	if stored.FilePath != "inline" {
		t.Errorf("local 模式 FilePath 应为 inline，实际=%s", stored.FilePath)
	}
	if stored.InlineContent == "" {
		t.Error("local 模式内容应内联存储")
	}
	if len(blobs.objects) != 0 {
		t.Error("local 模式不应写对象存储")
	}
}

func TestFileService_Upload_InvalidCategory(t *testing.T) {
	svc, courseRepo, _, _, _ := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")

	_, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: "HOMEWORK",
		FileName: "x.pdf",
		Content:  []byte("x"),
	})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("期望 ErrInvalidCategory，实际: %v", err)
	}
}

func TestFileService_Upload_CourseNotFound(t *testing.T) {
	svc, _, _, _, _ := setupTestFileService("remote")

	_, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "nonexistent",
		Category: model.CategoryNotes,
		FileName: "x.pdf",
		Content:  []byte("x"),
	})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestFileService_Upload_BlobFailure_NoMetadata(t *testing.T) {
	svc, courseRepo, fileRepo, blobs, _ := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")
	blobs.putErr = errors.New("storage unavailable")

	_, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryNotes,
		FileName: "x.pdf",
		Content:  []byte("x"),
	})
	if err == nil {
		t.Fatal("内容写入失败时 Upload 应报错")
	}
	if len(fileRepo.files) != 0 {
		t.Error("内容写入失败时不应留下元数据")
	}
}

func TestFileService_Upload_MetadataFailure_BlobCleanup(t *testing.T) {
	svc, courseRepo, _, blobs, _ := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")
	fileRepoErr := errors.New("db down")
	// 重新拿到 fileRepo 注入错误
	svcImpl := svc.(*fileService)
	svcImpl.repo.CourseFile.(*mockFileRepo).createErr = fileRepoErr

	_, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryNotes,
		FileName: "x.pdf",
		Content:  []byte("x"),
	})
	if !errors.Is(err, fileRepoErr) {
		t.Fatalf("期望透传元数据写入错误，实际: %v", err)
	}
	if len(blobs.objects) != 0 {
		t.Error("元数据写入失败后应回收已写内容")
	}
}

// ── Download 测试 ──

func TestFileService_Download_RoundTrip(t *testing.T) {
	svc, courseRepo, fileRepo, _, _ := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")

	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF} // 二进制负载
	resp, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryNotes,
		FileName: "binary.pdf",
		FileType: "application/pdf",
		Content:  content,
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}

	result, err := svc.Download(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Download 应成功: %v", err)
	}
	if !bytes.Equal(result.Content, content) {
		t.Error("下载内容应与上传字节逐字节一致")
	}
	if result.FileName != "binary.pdf" {
		t.Errorf("应还原原始文件名，实际=%s", result.FileName)
	}
	if fileRepo.files[resp.ID].DownloadCount != 1 {
		t.Errorf("下载计数应加一，实际=%d", fileRepo.files[resp.ID].DownloadCount)
	}
}

func TestFileService_Download_Local_Inline(t *testing.T) {
	svc, courseRepo, _, _, _ := setupTestFileService("local")
	seedCourse(courseRepo, "course-1")

	content := []byte("inline payload")
	resp, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryAssignments,
		FileName: "hw.docx",
		Content:  content,
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}

	result, err := svc.Download(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Download 应成功: %v", err)
	}
	if !bytes.Equal(result.Content, content) {
		t.Error("内联内容解码后应与上传一致")
	}
}

func TestFileService_Download_NotFound(t *testing.T) {
	svc, _, _, _, _ := setupTestFileService("remote")

	_, err := svc.Download(context.Background(), "nonexistent")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("期望 ErrFileNotFound，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestFileService_Delete_BlobFirst(t *testing.T) {
	svc, courseRepo, fileRepo, blobs, _ := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")

	resp, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryNotes,
		FileName: "x.pdf",
		Content:  []byte("x"),
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}

	if err := svc.Delete(context.Background(), resp.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(fileRepo.files) != 0 || len(blobs.objects) != 0 {
		t.Error("内容与元数据应一并删除")
	}
}

func TestFileService_Delete_BlobFailure_Aborts(t *testing.T) {
	svc, courseRepo, fileRepo, blobs, _ := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")

	resp, err := svc.Upload(context.Background(), &UploadInput{
		CourseID: "course-1",
		Category: model.CategoryNotes,
		FileName: "x.pdf",
		Content:  []byte("x"),
	})
	if err != nil {
		t.Fatalf("Upload 应成功: %v", err)
	}
	blobs.delErr = errors.New("storage unavailable")

	if err := svc.Delete(context.Background(), resp.ID); err == nil {
		t.Fatal("内容删除失败时整个删除应中止")
	}
	if len(fileRepo.files) != 1 {
		t.Error("删除中止后元数据应保留")
	}
}

func TestFileService_Delete_BlobAlreadyGone(t *testing.T) {
	svc, courseRepo, fileRepo, _, _ := setupTestFileService("remote")
	seedCourse(courseRepo, "course-1")
	// 元数据存在但内容缺失
	fileRepo.files["f1"] = &model.CourseFile{FileID: "f1", CourseID: "course-1", FileName: "ghost.pdf", FilePath: "missing-key"}

	if err := svc.Delete(context.Background(), "f1"); err != nil {
		t.Fatalf("内容本就不存在时删除应视为成功: %v", err)
	}
	if len(fileRepo.files) != 0 {
		t.Error("元数据应已删除")
	}
}
