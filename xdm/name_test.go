package xdm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameStringWithAndWithoutPrefix(t *testing.T) {
	require.Equal(t, "book", Name{Local: "book"}.String())
	require.Equal(t, "ns:book", Name{Prefix: "ns", Local: "book"}.String())
}

func TestValidateRejectsEmptyLocalName(t *testing.T) {
	require.Error(t, Name{}.Validate())
}

func TestValidateRejectsDigitLeadingLocalNameOrPrefix(t *testing.T) {
	require.Error(t, Name{Local: "1book"}.Validate())
	require.Error(t, Name{Prefix: "2ns", Local: "book"}.Validate())
}

func TestValidateRejectsDisallowedCharacters(t *testing.T) {
	require.Error(t, Name{Local: "a:b"}.Validate())
	require.Error(t, Name{Local: "a b"}.Validate())
	require.Error(t, Name{Local: "<bad>"}.Validate())
}

func TestValidateAcceptsWellFormedNames(t *testing.T) {
	require.NoError(t, Name{Local: "book"}.Validate())
	require.NoError(t, Name{Prefix: "ns", Local: "book"}.Validate())
}

func TestSameQNameComparesPrefixAndLocal(t *testing.T) {
	require.True(t, SameQName(Name{Prefix: "a", Local: "b"}, Name{Prefix: "a", Local: "b"}))
	require.False(t, SameQName(Name{Prefix: "a", Local: "b"}, Name{Prefix: "x", Local: "b"}))
	require.False(t, SameQName(Name{Local: "b"}, Name{Prefix: "a", Local: "b"}))
}
