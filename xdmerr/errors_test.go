package xdmerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	require.Equal(t, "usage", Usage.String())
	require.Equal(t, "argument", Argument.String())
	require.Equal(t, "state", State.String())
	require.Equal(t, "io", IO.String())
	require.Equal(t, "threading", Threading.String())
	require.Equal(t, "unknown", Kind(99).String())
}

func TestNewCarriesKindAndMessage(t *testing.T) {
	err := New(Usage, "bad cursor kind %s", "text")
	require.EqualError(t, err, "bad cursor kind text")
	require.True(t, Is(err, Usage))
	require.False(t, Is(err, State))
}

func TestWrapOfNilReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(IO, nil, "reading record"))
}

func TestWrapPreservesCauseAndKind(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IO, cause, "writing page %d", 3)
	require.True(t, Is(err, IO))
	require.ErrorIs(t, err, cause)
}

func TestIsReturnsFalseForPlainErrors(t *testing.T) {
	require.False(t, Is(errors.New("plain"), Usage))
}
