package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/logger"
	"wisespend/internal/period"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parsePeriodParam parses a "YYYY_MM" path parameter.
// Returns ErrInvalidInput if the parameter is not a valid period.
func parsePeriodParam(c *gin.Context, param string) (period.ID, error) {
	id, err := period.Parse(c.Param(param))
	if err != nil {
		return period.ID{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param+": "+err.Error())
	}
	return id, nil
}

// parseKindParam parses a bucket kind path parameter.
func parseKindParam(c *gin.Context, param string) (period.Kind, error) {
	kind, err := period.ParseKind(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return kind, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternal.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternal.Code,
			"message": apperrors.ErrInternal.Message,
		},
	})
}
