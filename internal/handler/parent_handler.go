package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
)

// ParentHandler handles parent-facing endpoints.
type ParentHandler struct {
	parentService *service.ParentService
}

// NewParentHandler creates a new ParentHandler.
func NewParentHandler(parentService *service.ParentService) *ParentHandler {
	return &ParentHandler{parentService: parentService}
}

// GetDashboard godoc
// GET /api/parent/dashboard/:id
// Returns the child linked to the parent.
func (h *ParentHandler) GetDashboard(c *gin.Context) {
	dash, err := h.parentService.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, dash)
}

// GetChildAttendance godoc
// GET /api/parent/attendance/:child_id
// Returns the linked child's attendance history.
func (h *ParentHandler) GetChildAttendance(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	days, err := h.parentService.ChildAttendance(c.Request.Context(), p.UID, c.Param("child_id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attendance": days})
}

// GetChildHomework godoc
// GET /api/parent/homework/:child_id
// Returns the linked child's homework.
func (h *ParentHandler) GetChildHomework(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	items, err := h.parentService.ChildHomework(c.Request.Context(), p.UID, c.Param("child_id"))
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"homework": items})
}
