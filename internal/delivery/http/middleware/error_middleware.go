package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/pkg/apperror"
	"go-jobboard-client/pkg/logger"
	"go-jobboard-client/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &appErr):
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Warn("request failed", "path", c.FullPath(), "kind", appErr.Kind, "error", err)
			}
			response.Error(c, appErr.Code, appErr.Message, gin.H{"kind": appErr.Kind})
		case errors.As(err, &verrs):
			response.Error(c, http.StatusBadRequest, validation.Summary(err), validation.FormatValidationErrors(err))
		case isMalformedInput(err):
			response.Error(c, http.StatusBadRequest, "Invalid request", nil)
		default:
			// Never expose internal error details to clients.
			logger.Log.Error("internal error", "path", c.FullPath(), "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}

// isMalformedInput matches the decode errors gin's binders return.
func isMalformedInput(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &numErr)
}
