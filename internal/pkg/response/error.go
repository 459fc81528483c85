package response

import (
	"github.com/gin-gonic/gin"
	"github.com/interview-replay/core/internal/pkg/apperror"
)

// Error maps a classified application error onto the HTTP envelope.
// Unclassified errors become 500s.
func Error(c *gin.Context, err error) {
	kind, ok := apperror.KindOf(err)
	if !ok {
		InternalError(c, err)
		return
	}
	switch kind {
	case apperror.KindValidation:
		UnprocessableEntity(c, err.Error())
	case apperror.KindAuthorization:
		NotFoundMsg(c, apperror.AuthorizationMessage)
	case apperror.KindState:
		BadRequest(c, err.Error())
	case apperror.KindProvider:
		InternalError(c, err)
	default:
		InternalError(c, err)
	}
}
