package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
	"github.com/learnage/portal/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TeacherHandler handles class management endpoints.
type TeacherHandler struct {
	teacherService *service.TeacherService
	exportService  *service.ExportService
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(teacherService *service.TeacherService, exportService *service.ExportService) *TeacherHandler {
	return &TeacherHandler{teacherService: teacherService, exportService: exportService}
}

// actingTeacher resolves ?teacher_id=, which must name the caller when present.
func actingTeacher(c *gin.Context) (string, bool) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return "", false
	}
	id := c.DefaultQuery("teacher_id", p.UID)
	if id != p.UID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return "", false
	}
	return id, true
}

// GetDashboard godoc
// GET /api/teacher/dashboard/:id
// Returns the teacher's class and its size.
func (h *TeacherHandler) GetDashboard(c *gin.Context) {
	dash, err := h.teacherService.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, dash)
}

// ListStudents godoc
// GET /api/teacher/students/:class_id
// Returns the roster of the teacher's class.
func (h *TeacherHandler) ListStudents(c *gin.Context) {
	teacherID, ok := actingTeacher(c)
	if !ok {
		return
	}

	students, err := h.teacherService.Roster(c.Request.Context(), teacherID, c.Param("class_id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// MarkAttendance godoc
// POST /api/teacher/attendance?teacher_id=
// Stores one attendance record per submitted entry.
func (h *TeacherHandler) MarkAttendance(c *gin.Context) {
	teacherID, ok := actingTeacher(c)
	if !ok {
		return
	}

	var req model.MarkAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	n, err := h.teacherService.MarkAttendance(c.Request.Context(), teacherID, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": "Attendance marked successfully", "count": n})
}

// AssignHomework godoc
// POST /api/teacher/homework?teacher_id=
// Assigns homework to the teacher's class.
func (h *TeacherHandler) AssignHomework(c *gin.Context) {
	teacherID, ok := actingTeacher(c)
	if !ok {
		return
	}

	var req model.AssignHomeworkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	hw, err := h.teacherService.AssignHomework(c.Request.Context(), teacherID, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, hw)
}

// AddStudent godoc
// POST /api/teacher/add-student?teacher_id=
// Creates a student account in the teacher's class.
func (h *TeacherHandler) AddStudent(c *gin.Context) {
	teacherID, ok := actingTeacher(c)
	if !ok {
		return
	}

	var req model.AddStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	u, err := h.teacherService.AddStudent(c.Request.Context(), teacherID, &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u.Principal())
}

// ExportAttendance godoc
// GET /api/teacher/attendance/export?class_id=&from=&to=
// Downloads the class attendance in [from, to] as an xlsx workbook.
// The range defaults to the last 30 days.
func (h *TeacherHandler) ExportAttendance(c *gin.Context) {
	teacherID, ok := actingTeacher(c)
	if !ok {
		return
	}

	classID := c.Query("class_id")
	if classID == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"class_id": "class_id is required"})
		return
	}
	now := time.Now().UTC()
	from := c.DefaultQuery("from", now.AddDate(0, 0, -30).Format(service.DateLayout))
	to := c.DefaultQuery("to", now.Format(service.DateLayout))

	records, err := h.teacherService.ClassAttendance(c.Request.Context(), teacherID, classID, from, to)
	if err != nil {
		failService(c, err)
		return
	}

	book, err := h.exportService.AttendanceWorkbook(classID, records)
	if err != nil {
		failService(c, err)
		return
	}

	response.Attachment(c, "attendance-"+classID+"-"+from+"-"+to+".xlsx", xlsxContentType, book)
}
