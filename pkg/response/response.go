package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess      = 0
	CodeParamError   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500
)

const (
	CodeInsufficientFunds = 1001
	CodeNothingSelected   = 1002
	CodeUserNotFound      = 1003
	CodeDuplicateRequest  = 1004
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func errorWith(c *gin.Context, httpStatus, code int, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func ParamError(c *gin.Context, message string) {
	errorWith(c, http.StatusBadRequest, CodeParamError, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	errorWith(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	errorWith(c, http.StatusForbidden, CodeForbidden, message, nil)
}

func NotFound(c *gin.Context, message string) {
	errorWith(c, http.StatusNotFound, CodeNotFound, message, nil)
}

// UserNotFound is the account-specific 404 so clients can tell a missing
// account from a missing listing.
func UserNotFound(c *gin.Context, message string) {
	errorWith(c, http.StatusNotFound, CodeUserNotFound, message, nil)
}

func ServerError(c *gin.Context, message string) {
	errorWith(c, http.StatusInternalServerError, CodeServerError, message, nil)
}

// BusinessError returns a 400-class structured error with a machine-readable
// payload, used for insufficient funds and similar actionable rejections.
func BusinessError(c *gin.Context, code int, message string, data interface{}) {
	errorWith(c, http.StatusBadRequest, code, message, data)
}
