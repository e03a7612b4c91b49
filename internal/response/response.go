package response

import (
	"errors"
	"net/http"

	apperrors "funny-video/pkg/errors"

	"github.com/gin-gonic/gin"
)

const successMsg = "成功 Success"

// Response is the envelope every JSON endpoint answers with. Error is 0 on
// success, otherwise an apperrors code.
type Response struct {
	Error  int32  `json:"error"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Msg: successMsg, Data: data})
}

// Accepted answers requests whose work continues in the background.
func Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, Response{Msg: successMsg, Data: data})
}

func FromError(err error) Response {
	if err == nil {
		return Response{Msg: successMsg}
	}
	resp := Response{
		Error: int32(apperrors.GetCode(err)),
		Msg:   apperrors.GetMessage(err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Detail = appErr.Detail
	}
	return resp
}

// StatusFor maps an error code onto the HTTP status sent with the envelope.
func StatusFor(code int) int {
	switch code {
	case apperrors.CodeSuccess:
		return http.StatusOK
	case apperrors.CodeInvalidParams:
		return http.StatusBadRequest
	case apperrors.CodeNotFound, apperrors.CodeRunNotFound, apperrors.CodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse sends err with the status StatusFor picks for its code.
func ErrorResponse(c *gin.Context, err error) {
	Abort(c, StatusFor(apperrors.GetCode(err)), err)
}

// Abort sends err with an explicit status and stops the handler chain.
func Abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, FromError(err))
}
