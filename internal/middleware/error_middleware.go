package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
)

// HandleAPIError maps application errors to API responses. Messages carried by
// a CustomError win over the generic text for the matched sentinel.
func HandleAPIError(c *gin.Context, err error) {
	code, errorCode, message := classifyError(err)

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		message = customErr.Message
	}

	errorDetail := dto.NewErrorDetail(errorCode, message)
	if customErr != nil && customErr.Details != nil {
		errorDetail = errorDetail.WithDetails(customErr.Details)
	}

	c.JSON(code, dto.APIResponse{
		Error:     errorDetail,
		Timestamp: time.Now(),
	})
}

func classifyError(err error) (int, dto.ErrorCode, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrCourseNotFound,
		apperrors.ErrSessionNotFound,
		apperrors.ErrPartnerNotFound,
		apperrors.ErrPartnerTagNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"

	case apperrors.Is(err, apperrors.ErrCourseNameTaken,
		apperrors.ErrPartnerTagExists,
		apperrors.ErrEmailAlreadyExists,
		apperrors.ErrConflict,
		apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, err.Error()

	case apperrors.Is(err, apperrors.ErrCourseNameIsDescription,
		apperrors.ErrInstructorIsAttendee,
		apperrors.ErrInstructorNotEligible,
		apperrors.ErrValidationFailed,
		apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, err.Error()

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"

	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"

	case apperrors.Is(err, apperrors.ErrTokenInvalid,
		apperrors.ErrTokenRevoked,
		apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"

	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"

	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}
