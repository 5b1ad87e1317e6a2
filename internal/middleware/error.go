package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/kv"
	"wisespend/internal/logger"
)

// classify maps an error attached to the context onto the store's error codes.
// Bind failures are the caller's fault; raw medium errors that escaped a
// service are persistence failures.
func classify(ginErr *gin.Error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(ginErr.Err, &appErr):
		return appErr
	case ginErr.IsType(gin.ErrorTypeBind):
		return apperrors.Wrap(apperrors.ErrInvalidInput, ginErr.Err)
	case errors.Is(ginErr.Err, kv.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrNotFound, ginErr.Err)
	case errors.Is(ginErr.Err, kv.ErrUnavailable):
		return apperrors.Wrap(apperrors.ErrPersistenceFailure, ginErr.Err)
	}
	return apperrors.Wrap(apperrors.ErrInternal, ginErr.Err)
}

// ErrorHandler writes the last error attached by a handler as
// {"error": {"code", "message"}}. Server-side failures are logged with the
// request ID; their internal cause never reaches the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := classify(c.Errors.Last())
		if appErr.StatusCode >= 500 {
			log := logger.Named("http").With(
				"code", appErr.Code,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", c.GetString(requestIDKey),
			)
			if appErr.Internal != nil {
				log = log.With("internal", appErr.Internal.Error())
			}
			log.Error("request failed")
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
