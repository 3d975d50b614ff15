package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/middleware"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
	"github.com/learnage/portal/internal/validator"
)

// MessageHandler handles the class chat REST endpoints.
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// classMember returns the caller when they belong to classID.
func classMember(c *gin.Context, classID string) (*model.Principal, bool) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	if p.ClassID == "" || p.ClassID != classID {
		response.Fail(c, http.StatusForbidden, response.ErrClassMismatch)
		return nil, false
	}
	return p, true
}

// ListMessages godoc
// GET /api/messages/class/:class_id?limit=50
// Returns the newest messages of the class, newest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	classID := c.Param("class_id")
	if _, ok := classMember(c, classID); !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"limit": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	msgs, err := h.messageService.List(c.Request.Context(), classID, limit)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, msgs)
}

// SendMessage godoc
// POST /api/messages/send
// Posts a message to the caller's class as the caller.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, ok := classMember(c, req.ClassID)
	if !ok {
		return
	}
	if req.SenderID != p.UID || req.SenderRole != p.Role {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), &req)
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

// DeleteMessage godoc
// DELETE /api/messages/:id?user_id=
// Deletes a message. Only its sender may do so.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	userID := c.DefaultQuery("user_id", p.UID)
	if userID != p.UID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Message deleted"})
}
