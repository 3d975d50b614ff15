package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/identity"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/response"
	"github.com/learnage/portal/internal/service"
	"github.com/rs/zerolog/log"
)

type errMapping struct {
	err    error
	status int
	code   response.ErrCode
}

var serviceErrors = []errMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{identity.ErrInvalidToken, http.StatusUnauthorized, response.ErrTokenInvalid},
	{service.ErrProfileNotFound, http.StatusUnauthorized, response.ErrProfileNotFound},
	{service.ErrUserNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrWrongRole, http.StatusForbidden, response.ErrRoleMismatch},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrInvalidParent, http.StatusBadRequest, response.ErrInvalidParent},
	{service.ErrInvalidDate, http.StatusBadRequest, response.ErrInvalidDate},
	{service.ErrClassMismatch, http.StatusForbidden, response.ErrClassMismatch},
	{service.ErrStudentNotInClass, http.StatusBadRequest, response.ErrNotInClass},
	{service.ErrHomeworkNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrNoLinkedChild, http.StatusNotFound, response.ErrNoLinkedChild},
	{service.ErrNotLinkedChild, http.StatusForbidden, response.ErrNotLinkedChild},
	{service.ErrEmptyMessage, http.StatusBadRequest, response.ErrEmptyMessage},
	{service.ErrMessageNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrNotMessageSender, http.StatusForbidden, response.ErrNotSender},
}

// failService writes the envelope for a service error. Unknown errors are
// logged and reported as internal.
func failService(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}

	l := logger.FromContext(c.Request.Context(), log.Logger)
	l.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
