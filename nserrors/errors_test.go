package nserrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := New(MalformedModel, "modelfile.Load", fmt.Errorf("bad magic"))
	assert.Equal(t, "modelfile.Load: malformed_model: bad magic", err.Error())

	bare := New(InvalidConfiguration, "decode.NewSession", nil)
	assert.Equal(t, "decode.NewSession: invalid_configuration", bare.Error())
}

func TestErrorsIsByKind(t *testing.T) {
	err := Wrap(ResourceExhausted, "kvcache.New", fmt.Errorf("mmap failed"))
	assert.True(t, errors.Is(err, ErrResourceExhausted))
	assert.False(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestErrorsAsUnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("truncated tensor")
	err := New(MalformedModel, "modelfile.Load", cause)

	var ns *Error
	require.True(t, errors.As(err, &ns))
	assert.Equal(t, MalformedModel, ns.Kind)
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf(New(NumericFault, "decode.Session.Step", nil))
	require.True(t, ok)
	assert.Equal(t, NumericFault, k)

	_, ok = KindOf(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		MalformedModel:        "malformed_model",
		InvalidConfiguration:  "invalid_configuration",
		ResourceExhausted:     "resource_exhausted",
		NumericFault:          "numeric_fault",
		Cancelled:             "cancelled",
		Internal:              "internal",
		Kind(99):              "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
