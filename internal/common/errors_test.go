package common

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors(t *testing.T) {
	cause := fs.ErrNotExist

	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"config", ConfigError("load rules", cause), ErrConfiguration, CodeConfig},
		{"document", DocumentReadError("a.pdf", cause), ErrDocumentRead, CodeDocumentRead},
		{"output", OutputWriteError("out.xlsx", cause), ErrOutputWrite, CodeOutputWrite},
		{"ledger", LedgerError("open", cause), ErrLedger, CodeLedger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, tt.err, cause)
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.Contains(t, tt.err.Error(), cause.Error())
		})
	}
}

func TestAppError_WithoutCause(t *testing.T) {
	err := ConfigError("no rules", nil)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "CONFIG_ERROR: no rules: configuration error", err.Error())
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("boom")))
	assert.Nil(t, WrapError(nil, "ctx"))
}
