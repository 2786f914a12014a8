package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/internal/application"
	"github.com/oksasatya/devfolio-api/internal/interface/middleware"
	"github.com/oksasatya/devfolio-api/pkg/apperror"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
	"github.com/oksasatya/devfolio-api/pkg/response"
	"github.com/oksasatya/devfolio-api/pkg/validation"
)

const MsgInvalidBody = "Invalid request body"

// fail writes err as the error envelope. Internal causes are logged here
// and replaced by a generic message.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.Internal {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
			"user_id":    c.GetString(middleware.CtxUserIDKey),
		})
	}
	response.AppError(c, appErr, nil)
}

// badRequest reports a binding failure. Missing required fields use
// requiredMsg; an undecodable body gets MsgInvalidBody.
func badRequest(c *gin.Context, err error, requiredMsg string) {
	details := validation.ToDetails(err)
	switch {
	case validation.HasTag(err, "pwd"):
		response.Error(c, http.StatusBadRequest, application.MsgPasswordTooLong, details)
	case validation.HasTag(err, "required"):
		response.Error(c, http.StatusBadRequest, requiredMsg, details)
	default:
		response.Error(c, http.StatusBadRequest, MsgInvalidBody, details)
	}
}
