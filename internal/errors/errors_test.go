package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybglist/mybglist-server/internal/errors"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeAlreadyExists, http.StatusConflict},
		{errors.CodeConflict, http.StatusConflict},
		{errors.CodeUnauthorized, http.StatusUnauthorized},
		{errors.CodeInvalidCredentials, http.StatusUnauthorized},
		{errors.CodeForbidden, http.StatusForbidden},
		{errors.CodeValidation, http.StatusBadRequest},
		{errors.CodeRateLimited, http.StatusTooManyRequests},
		{errors.CodeInternal, http.StatusInternalServerError},
		{errors.Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := errors.ValidationWithDetails("invalid query", map[string]string{"pageSize": "must be between 1 and 100"})

	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.False(t, errors.Is(err, errors.ErrNotFound))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(cause, errors.CodeInternal, "commit batch")

	assert.Equal(t, "commit batch: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus())
}

func TestError_WithDetailsCopies(t *testing.T) {
	base := errors.Validation("bad")
	withDetails := base.WithDetails(map[string]string{"sortColumn": "is invalid"})

	assert.Nil(t, base.Details)
	assert.NotNil(t, withDetails.Details)
	assert.Equal(t, base.Code, withDetails.Code)
}

func TestFieldErrors(t *testing.T) {
	var fields errors.FieldErrors
	assert.NoError(t, fields.Err("nothing wrong"))

	fields.Add("pageSize", "must be between 1 and 100")
	fields.Add("pageSize", "ignored")
	fields.Add("sortOrder", "must be ASC or DESC")

	err := fields.Err("invalid list request")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, errors.FieldErrors{
		"pageSize":  "must be between 1 and 100",
		"sortOrder": "must be ASC or DESC",
	}, errors.Fields(err))
}

func TestFields_NonValidation(t *testing.T) {
	assert.Nil(t, errors.Fields(errors.Conflict("seed already in progress")))
	assert.Nil(t, errors.Fields(stderrors.New("plain")))
	assert.Equal(t, errors.FieldErrors{"a": "b"},
		errors.Fields(errors.ValidationWithDetails("x", map[string]string{"a": "b"})))
}
