package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorDefaults(t *testing.T) {
	tests := []struct {
		name       string
		err        *errors.AppError
		code       errors.ErrorCode
		statusCode int
	}{
		{"validation", errors.NewValidation("", nil), errors.CodeValidation, 400},
		{"not found", errors.NewNotFound("User"), errors.CodeNotFound, 404},
		{"authentication", errors.NewAuthentication(""), errors.CodeAuthentication, 401},
		{"authorization", errors.NewAuthorization(""), errors.CodeAuthorization, 403},
		{"conflict", errors.NewConflict(""), errors.CodeConflict, 409},
		{"service unavailable", errors.NewServiceUnavailable("gemini"), errors.CodeServiceUnavailable, 503},
		{"database", errors.NewDatabase("insert", nil), errors.CodeDatabase, 500},
		{"api default", errors.NewAPI("boom", 0, nil), errors.CodeAPI, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
			assert.True(t, tt.err.Operational)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestAPIStatusOverride(t *testing.T) {
	err := errors.NewAPI("teapot", 418, nil)
	assert.Equal(t, 418, err.StatusCode)
	assert.Equal(t, errors.CodeAPI, err.Code)
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Project with identifier 123 not found", errors.NewNotFound("Project", 123).Error())
	assert.Equal(t, "User not found", errors.NewNotFound("User").Error())
}

func TestValidationErrors(t *testing.T) {
	err := errors.NewValidation("", nil)
	require.NotNil(t, err.ValidationErrors())
	assert.Empty(t, err.ValidationErrors())

	err = errors.NewValidation("msg", map[string][]string{"a": {"x"}})
	assert.Equal(t, "msg", err.Message)
	assert.Equal(t, map[string][]string{"a": {"x"}}, err.ValidationErrors())
	assert.Equal(t, map[string][]string{"a": {"x"}}, err.Details["validationErrors"])
}

func TestClassify(t *testing.T) {
	c := errors.Classify(errors.NewValidation("bad input", nil))
	assert.True(t, c.Known)
	assert.True(t, c.Operational)
	require.NotNil(t, c.Err)
	assert.Equal(t, errors.CodeValidation, c.Err.Code)

	c = errors.Classify(stderrors.New("boom"))
	assert.False(t, c.Known)
	assert.False(t, c.Operational)
	assert.Nil(t, c.Err)

	c = errors.Classify(nil)
	assert.False(t, c.Known)
}

func TestClassifyWrapped(t *testing.T) {
	wrapped := fmt.Errorf("loading project: %w", errors.NewNotFound("Project", "p1"))
	c := errors.Classify(wrapped)
	assert.True(t, c.Known)
	assert.Equal(t, errors.CodeNotFound, c.Err.Code)
}

func TestFromCode(t *testing.T) {
	err := errors.FromCode(errors.CodeConflict, "email taken", 400)
	assert.Equal(t, errors.CodeConflict, err.Code)
	// Status is fixed by the kind, not the remote status.
	assert.Equal(t, 409, err.StatusCode)
	assert.Equal(t, "email taken", err.Message)

	err = errors.FromCode("SOMETHING_ELSE", "mystery", 502)
	assert.Equal(t, errors.CodeAPI, err.Code)
	assert.Equal(t, 502, err.StatusCode)
}

func TestDatabaseUnwrap(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	err := errors.NewDatabase("flush", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Database operation failed: flush: disk I/O error", err.Error())
}
