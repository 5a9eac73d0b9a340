package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
	}{
		{"config code", ErrCodeConfigInvalid, CategoryConfig},
		{"io code", ErrCodeCorruptIndex, CategoryIO},
		{"provider code", ErrCodeEmbedderUnavailable, CategoryProvider},
		{"validation code", ErrCodeQueryEmpty, CategoryValidation},
		{"internal code", ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestNew_ProviderErrorsAreRetryableWarnings(t *testing.T) {
	err := New(ErrCodeEmbedderUnavailable, "ollama not running", nil)

	assert.Equal(t, SeverityWarning, err.Severity)
	assert.True(t, err.Retryable)
	assert.True(t, IsRetryable(err))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrCodeCorruptIndex, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeCorruptIndex, nil))
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCodeQueryEmpty, "empty query", nil)
	b := New(ErrCodeQueryEmpty, "different message", nil)
	c := New(ErrCodeInvalidPath, "bad path", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestError_FormatIncludesCode(t *testing.T) {
	err := New(ErrCodeSearchFailed, "no index", nil)
	assert.Equal(t, fmt.Sprintf("[%s] no index", ErrCodeSearchFailed), err.Error())
}

func TestWithDetail_Chains(t *testing.T) {
	err := New(ErrCodeFileNotFound, "missing", nil).
		WithDetail("path", "a/b.go").
		WithDetail("op", "scan")

	assert.Equal(t, "a/b.go", err.Details["path"])
	assert.Equal(t, "scan", err.Details["op"])
}

func TestGetCode_NonScoutError(t *testing.T) {
	assert.Equal(t, "", GetCode(stderrors.New("plain")))
	assert.Equal(t, Category(""), GetCategory(stderrors.New("plain")))
}
