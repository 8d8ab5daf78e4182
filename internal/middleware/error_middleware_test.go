package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openacademy/openacademy/internal/app/models/dto"
	"github.com/openacademy/openacademy/internal/pkg/apperrors"
)

func handleError(t *testing.T, err error) (int, dto.APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	HandleAPIError(c, err)

	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return recorder.Code, resp
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"course not found", apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"session not found", apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"course name taken", apperrors.ErrCourseNameTaken, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"name equals description", apperrors.ErrCourseNameIsDescription, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"instructor attending", apperrors.ErrInstructorIsAttendee, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"bad credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"revoked token", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := handleError(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleAPIErrorCustomMessageWins(t *testing.T) {
	err := &apperrors.CustomError{
		Err:     apperrors.ErrInstructorIsAttendee,
		Message: "A session's instructor can't be an attendee",
	}

	status, resp := handleError(t, err)

	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "A session's instructor can't be an attendee", resp.Error.Message)
}

func TestHandleAPIErrorForwardsDetails(t *testing.T) {
	err := &apperrors.CustomError{
		Err:     apperrors.ErrResourceNotFound,
		Message: "attendee partners not found",
		Details: map[string]interface{}{"missing": []int64{4, 9}},
	}

	status, resp := handleError(t, err)

	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}
