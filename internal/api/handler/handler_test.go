package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Unbornmoral/academic-flow-compass/internal/api/middleware"
	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/service"
	"github.com/Unbornmoral/academic-flow-compass/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock CourseService ──

type mockCourseService struct {
	createResult *dto.CourseResponse
	createErr    error
	getResult    *dto.CourseResponse
	getErr       error
	listResult   []dto.CourseResponse
	listErr      error
	updateResult *dto.CourseResponse
	updateErr    error
	deleteErr    error
	deleteCalled bool
}

func (m *mockCourseService) CreateCourse(_ context.Context, _ *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockCourseService) GetCourse(_ context.Context, _ string) (*dto.CourseResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockCourseService) ListCourses(_ context.Context, _, _ string) ([]dto.CourseResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockCourseService) UpdateCourse(_ context.Context, _ string, _ *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockCourseService) DeleteCourse(_ context.Context, _ string) error {
	m.deleteCalled = true
	return m.deleteErr
}

// ── Mock FileService ──

type mockFileService struct {
	uploadResult   *dto.FileResponse
	uploadErr      error
	uploadInput    *service.UploadInput
	listResult     []dto.FileResponse
	listErr        error
	downloadResult *dto.DownloadResult
	downloadErr    error
	deleteErr      error
}

func (m *mockFileService) Upload(_ context.Context, in *service.UploadInput) (*dto.FileResponse, error) {
	m.uploadInput = in
	return m.uploadResult, m.uploadErr
}
func (m *mockFileService) ListByCourse(_ context.Context, _ string) ([]dto.FileResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockFileService) Download(_ context.Context, _ string) (*dto.DownloadResult, error) {
	return m.downloadResult, m.downloadErr
}
func (m *mockFileService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ═══════════════════════════════════════════════════════════
// 测试装配
// ═══════════════════════════════════════════════════════════

// injectRole 模拟 JWT 中间件注入的上下文
func injectRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "test-user")
		c.Set("role", string(role))
		c.Next()
	}
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应体应为统一 JSON 信封: %v", err)
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// 权限门测试
// ═══════════════════════════════════════════════════════════

func TestCapabilityGate_StudentUploadForbidden(t *testing.T) {
	fileSvc := &mockFileService{}
	h := NewFileHandler(fileSvc)

	r := gin.New()
	r.POST("/courses/:id/files",
		injectRole(model.RoleStudent),
		middleware.CapabilityAuth(model.CapUploadFiles),
		h.Upload,
	)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("category", "NOTES")
	fw, _ := mw.CreateFormFile("file", "notes.pdf")
	fw.Write([]byte("content"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/courses/c1/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("student 上传应返回 403，实际=%d", w.Code)
	}
	if fileSvc.uploadInput != nil {
		t.Error("被权限门拦截时不应触达 Service")
	}
}

func TestCapabilityGate_LecturerUploadAllowed(t *testing.T) {
	fileSvc := &mockFileService{uploadResult: &dto.FileResponse{ID: "f1", FileName: "notes.pdf"}}
	h := NewFileHandler(fileSvc)

	r := gin.New()
	r.POST("/courses/:id/files",
		injectRole(model.RoleLecturer),
		middleware.CapabilityAuth(model.CapUploadFiles),
		h.Upload,
	)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("category", "NOTES")
	fw, _ := mw.CreateFormFile("file", "notes.pdf")
	fw.Write([]byte("content"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/courses/c1/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("lecturer 上传应返回 201，实际=%d body=%s", w.Code, w.Body.String())
	}
	if fileSvc.uploadInput == nil {
		t.Fatal("应触达 Service")
	}
	if fileSvc.uploadInput.Category != model.CategoryNotes {
		t.Errorf("分类应透传，实际=%s", fileSvc.uploadInput.Category)
	}
	if fileSvc.uploadInput.UploadedBy == nil || *fileSvc.uploadInput.UploadedBy != "test-user" {
		t.Error("上传者应取自认证上下文")
	}
}

func TestCapabilityGate_LecturerDeleteCourseForbidden(t *testing.T) {
	courseSvc := &mockCourseService{}
	h := NewCourseHandler(courseSvc)

	r := gin.New()
	r.DELETE("/courses/:id",
		injectRole(model.RoleLecturer),
		middleware.CapabilityAuth(model.CapDeleteCourses),
		h.DeleteCourse,
	)

	req := httptest.NewRequest(http.MethodDelete, "/courses/c1?confirm=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("lecturer 删除课程应返回 403，实际=%d", w.Code)
	}
	if courseSvc.deleteCalled {
		t.Error("被权限门拦截时不应触达 Service")
	}
}

// ═══════════════════════════════════════════════════════════
// 删除确认契约测试
// ═══════════════════════════════════════════════════════════

func TestDeleteCourse_WithoutConfirmRejected(t *testing.T) {
	courseSvc := &mockCourseService{}
	h := NewCourseHandler(courseSvc)

	r := gin.New()
	r.DELETE("/courses/:id",
		injectRole(model.RoleAdministrator),
		middleware.CapabilityAuth(model.CapDeleteCourses),
		h.DeleteCourse,
	)

	req := httptest.NewRequest(http.MethodDelete, "/courses/c1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 confirm=true 应返回 400，实际=%d", w.Code)
	}
	if courseSvc.deleteCalled {
		t.Error("未确认时不应执行删除")
	}
}

func TestDeleteCourse_WithConfirm(t *testing.T) {
	courseSvc := &mockCourseService{}
	h := NewCourseHandler(courseSvc)

	r := gin.New()
	r.DELETE("/courses/:id",
		injectRole(model.RoleAdministrator),
		middleware.CapabilityAuth(model.CapDeleteCourses),
		h.DeleteCourse,
	)

	req := httptest.NewRequest(http.MethodDelete, "/courses/c1?confirm=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("确认删除应返回 200，实际=%d", w.Code)
	}
	if !courseSvc.deleteCalled {
		t.Error("确认后应执行删除")
	}
}

// ═══════════════════════════════════════════════════════════
// 业务错误映射测试
// ═══════════════════════════════════════════════════════════

func TestCourseHandler_NotFoundMapping(t *testing.T) {
	courseSvc := &mockCourseService{getErr: service.ErrCourseNotFound}
	h := NewCourseHandler(courseSvc)

	r := gin.New()
	r.GET("/courses/:id", h.GetCourse)

	req := httptest.NewRequest(http.MethodGet, "/courses/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("课程不存在应返回 404，实际=%d", w.Code)
	}
	resp := parseResponse(t, w)
	if resp.Code != 12001 {
		t.Errorf("期望业务码 12001，实际=%d", resp.Code)
	}
}

func TestFileHandler_DownloadHeaders(t *testing.T) {
	fileSvc := &mockFileService{downloadResult: &dto.DownloadResult{
		FileName: "第一讲.pdf",
		FileType: "application/pdf",
		Content:  []byte("%PDF-1.4"),
	}}
	h := NewFileHandler(fileSvc)

	r := gin.New()
	r.GET("/files/:id/download", h.Download)

	req := httptest.NewRequest(http.MethodGet, "/files/f1/download", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("下载应返回 200，实际=%d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("期望 Content-Type=application/pdf，实际=%s", got)
	}
	if got := w.Header().Get("Content-Disposition"); got == "" {
		t.Error("下载响应应携带 Content-Disposition（还原原始文件名）")
	}
	if !bytes.Equal(w.Body.Bytes(), []byte("%PDF-1.4")) {
		t.Error("响应体应为文件原始字节")
	}
}
