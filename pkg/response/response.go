package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devfolio-api/pkg/apperror"
)

// ErrorBody is the envelope written for every failed request.
type ErrorBody struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Error     interface{} `json:"error,omitempty"`
}

// Message is the body of operations that only report an outcome.
type Message struct {
	Message string `json:"message"`
}

func newErrorBody(ctx *gin.Context, status int, message string, details interface{}) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return ErrorBody{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     details,
	}
}

// JSON writes a success payload as-is.
func JSON(ctx *gin.Context, status int, body interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, body)
}

// OK writes {"message": msg}.
func OK(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusOK, Message{Message: msg})
}

// Error writes the error envelope and aborts the handler chain.
func Error(ctx *gin.Context, status int, message string, details interface{}) {
	body := newErrorBody(ctx, status, message, details)
	ctx.AbortWithStatusJSON(body.Status, body)
}

// AppError writes the envelope for an application error. The underlying
// cause is never exposed.
func AppError(ctx *gin.Context, err *apperror.AppError, details interface{}) {
	Error(ctx, err.StatusCode(), err.Message, details)
}
