package harden

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "repair without cause",
			err:  &RepairError{Path: "RegExp", Key: "input"},
			want: "harden: could not convert property input on object RegExp",
		},
		{
			name: "repair at root",
			err:  &RepairError{Key: "__proto__", Err: cause},
			want: "harden: could not convert property __proto__ on object <root>: boom",
		},
		{
			name: "freeze property",
			err:  &FreezeError{Path: "A.b", Key: "x", Err: cause},
			want: "harden: property x on object A.b could not be locked: boom",
		},
		{
			name: "freeze extensibility",
			err:  &FreezeError{Path: "A", Err: cause},
			want: "harden: object A could not be made non-extensible: boom",
		},
		{
			name: "traversal with key",
			err:  &TraversalError{Path: "A[Symbol(tag)]", Op: "getOwnPropertyDescriptor", Key: "y", Err: cause},
			want: "harden: getOwnPropertyDescriptor(y) failed on object A[Symbol(tag)]: boom",
		},
		{
			name: "traversal without key",
			err:  &TraversalError{Op: "getPrototypeOf", Err: cause},
			want: "harden: getPrototypeOf failed on object <root>: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")
	for _, err := range []error{
		&RepairError{Err: cause},
		&FreezeError{Err: cause},
		&TraversalError{Err: cause},
	} {
		assert.ErrorIs(t, err, cause)
	}
}

func TestDescriptorLocked(t *testing.T) {
	assert.True(t, Descriptor{Kind: DataKind}.Locked())
	assert.False(t, Descriptor{Kind: DataKind, Writable: true}.Locked())
	assert.False(t, Descriptor{Kind: DataKind, Configurable: true}.Locked())
	assert.True(t, Descriptor{Kind: AccessorKind}.Locked())
	assert.False(t, Descriptor{Kind: AccessorKind, Configurable: true}.Locked())
	assert.Equal(t, "accessor", AccessorKind.String())
	assert.Equal(t, "data", DataKind.String())
}
