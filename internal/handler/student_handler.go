package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
)

// StudentHandler handles student-facing endpoints.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// GetDashboard godoc
// GET /api/student/dashboard/:id
// Returns today's attendance and the number of pending homework items.
func (h *StudentHandler) GetDashboard(c *gin.Context) {
	dash, err := h.studentService.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, dash)
}

// GetAttendance godoc
// GET /api/student/attendance/:id
// Returns the 30 most recent attendance marks, newest first.
func (h *StudentHandler) GetAttendance(c *gin.Context) {
	days, err := h.studentService.Attendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": days})
}

// GetHomework godoc
// GET /api/student/homework/:id
// Returns class homework ordered by due date with the submission flag.
func (h *StudentHandler) GetHomework(c *gin.Context) {
	items, err := h.studentService.Homework(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"homework": items})
}

// SubmitHomework godoc
// PUT /api/student/homework/:homework_id/submit?student_id=
// Marks a homework item as submitted by the caller.
func (h *StudentHandler) SubmitHomework(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	homeworkID, err := uuid.Parse(c.Param("homework_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	studentID := c.DefaultQuery("student_id", p.UID)
	if studentID != p.UID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	if err := h.studentService.SubmitHomework(c.Request.Context(), homeworkID, studentID); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Homework submitted"})
}
