package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"validation", Required("name"), CodeRequiredField},
		{"not found", NotFound("account", "id", "acc_x"), CodeNotFound},
		{"rule", Rule(CodeInsufficientBalance, "too poor"), CodeInsufficientBalance},
		{"storage", Storage("read accounts.json", errors.New("boom")), CodeStorage},
		{"untyped", errors.New("boom"), Code("")},
		{"nil", nil, Code("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("accounts[3]: %w", TooLong("name", 100))
	assert.Equal(t, CodeMaxLength, CodeOf(err))

	var v *ValidationError
	assert.True(t, errors.As(err, &v))
	assert.Equal(t, "name", v.Field)
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage("write transactions.json", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "write transactions.json")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("transaction", "id", "txn_x")))
	assert.False(t, IsNotFound(Required("id")))
	assert.False(t, IsNotFound(nil))
}
