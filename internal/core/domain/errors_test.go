package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrExtractionFailed", ErrExtractionFailed},
		{"ErrEmptyCompletion", ErrEmptyCompletion},
		{"ErrNoMatchFound", ErrNoMatchFound},
		{"ErrBuildFailed", ErrBuildFailed},
		{"ErrNoCorpora", ErrNoCorpora},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	pipeline := []error{ErrExtractionFailed, ErrEmptyCompletion, ErrNoMatchFound, ErrBuildFailed}
	for i, a := range pipeline {
		for j, b := range pipeline {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrNoCorpora_IsNoMatch(t *testing.T) {
	assert.ErrorIs(t, ErrNoCorpora, ErrNoMatchFound)
	assert.False(t, errors.Is(ErrNoMatchFound, ErrNoCorpora))
}

func TestErrors_Wrapped(t *testing.T) {
	err := fmt.Errorf("build corpus %q: %w", "IPC", ErrBuildFailed)
	assert.True(t, errors.Is(err, ErrBuildFailed))
	assert.False(t, errors.Is(err, ErrExtractionFailed))
	assert.Contains(t, err.Error(), "index build failed")
}
