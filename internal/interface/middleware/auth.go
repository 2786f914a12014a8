package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/internal/application"
	"github.com/oksasatya/devfolio-api/internal/domain/entity"
	"github.com/oksasatya/devfolio-api/pkg/apperror"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
	"github.com/oksasatya/devfolio-api/pkg/response"
)

const CtxUserIDKey = "userID"

// AuthedHandler is a handler that only runs for a resolved user.
type AuthedHandler func(c *gin.Context, user *entity.User)

// Authenticator guards routes with an "Authorization: Bearer <token>" header.
type Authenticator struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewAuthenticator(auth *application.AuthService, logger *logrus.Logger) *Authenticator {
	return &Authenticator{Auth: auth, Logger: logger}
}

// Protect resolves the caller and hands it to h. Requests without a valid
// token are answered with 401 and h is never called.
func (a *Authenticator) Protect(h AuthedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		user, err := a.Auth.ResolveUser(c.Request.Context(), token)
		if err != nil {
			appErr := apperror.From(err)
			if appErr.Kind == apperror.Internal {
				helpers.LogError(a.Logger, "resolve caller failed", err, logrus.Fields{"path": c.FullPath()})
			}
			response.AppError(c, appErr, nil)
			return
		}
		c.Set(CtxUserIDKey, user.ID)
		h(c, user)
	}
}

// bearerToken strips a case-insensitive "Bearer " prefix when present.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}
