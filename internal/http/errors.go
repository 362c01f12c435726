package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-llm/internal/repository"
	"recipe-llm/internal/service"
)

// statusFor traduce errores de servicio a código HTTP y mensaje público.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrPasswordTooLong),
		errors.Is(err, service.ErrIngredientsRequired),
		errors.Is(err, service.ErrRecipeRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, "user already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrJWTInvalid),
		errors.Is(err, service.ErrJWTExpired),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrRecipeGenerationFailed):
		return http.StatusBadGateway, "could not generate recipe"
	case errors.Is(err, service.ErrEmailSendFailure):
		return http.StatusServiceUnavailable, "email delivery unavailable"
	case errors.Is(err, service.ErrSimilarityUnavailable):
		return http.StatusServiceUnavailable, "similarity search unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondError escribe el error traducido; sólo los 5xx inesperados se loguean como error.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, msg := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		logger.Error(op+" failed", zap.Error(err))
	case status >= http.StatusInternalServerError:
		logger.Warn(op+" failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
