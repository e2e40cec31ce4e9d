// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/binscript/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "config_invalid_error",
			code:    errors.ErrConfigInvalid,
			message: "missing template parameter",
			wantStr: "[CONFIG_INVALID] missing template parameter",
		},
		{
			name:    "template_not_found_error",
			code:    errors.ErrTemplateNotFound,
			message: "template foo.sh does not exist",
			wantStr: "[TEMPLATE_NOT_FOUND] template foo.sh does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrContextKey, "template references undefined keys: %s", "a, b")
	assert.Equal(t, "template references undefined keys: a, b", err.Message)
	assert.Equal(t, errors.ErrContextKey, err.Code)
}

func TestWrap(t *testing.T) {
	t.Run("nil_error_stays_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrConfigLoad, "load"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrConfigLoad, "load %s", "x"))
	})

	t.Run("wrapped_error_is_reachable", func(t *testing.T) {
		base := stderrors.New("disk on fire")
		err := errors.Wrapf(base, errors.ErrConfigLoad, "failed to load %s", "buildout.cfg")

		require.NotNil(t, err)
		assert.Equal(t, "[CONFIG_LOAD] failed to load buildout.cfg: disk on fire", err.Error())
		assert.True(t, stderrors.Is(err, base))
		assert.Equal(t, base, stderrors.Unwrap(err))
	})
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.New(errors.ErrConfigInvalid, "missing template parameter"))

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrConfigInvalid, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrContextKey, "")))
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrContextKey, "missing").
		WithDetail("missing", []string{"a"}).
		WithDetails(map[string]interface{}{"template": "run.sh", "part": "app"})

	details := errors.GetErrorDetails(err)
	assert.Equal(t, []string{"a"}, details["missing"])
	assert.Equal(t, "run.sh", details["template"])
	assert.Equal(t, "app", details["part"])

	var zero errors.RecipeError
	zero.WithDetail("k", "v")
	assert.Equal(t, "v", zero.Details["k"])

	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestErrorCodeHelpers(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", errors.New(errors.ErrTemplateSyntax, "bad"))

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrTemplateSyntax))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrConfigInvalid))
	assert.Equal(t, errors.ErrTemplateSyntax, errors.GetErrorCode(wrapped))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}
