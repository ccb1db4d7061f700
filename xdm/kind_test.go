package xdm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStringCoversEveryVariant(t *testing.T) {
	cases := map[Kind]string{
		KindDocument:  "document",
		KindElement:   "element",
		KindAttribute: "attribute",
		KindNamespace: "namespace",
		KindText:      "text",
		KindComment:   "comment",
		KindPI:        "pi",
	}
	for k, want := range cases {
		require.Equal(t, want, k.String())
	}
	require.Equal(t, "unknown", Kind(99).String())
}

func TestIsStructuralDistinguishesAttributesAndNamespaces(t *testing.T) {
	require.True(t, KindElement.IsStructural())
	require.True(t, KindText.IsStructural())
	require.False(t, KindAttribute.IsStructural())
	require.False(t, KindNamespace.IsStructural())
}

func TestIsNamedOnlyElementAttributeNamespacePI(t *testing.T) {
	require.True(t, KindElement.IsNamed())
	require.True(t, KindAttribute.IsNamed())
	require.True(t, KindNamespace.IsNamed())
	require.True(t, KindPI.IsNamed())
	require.False(t, KindText.IsNamed())
	require.False(t, KindDocument.IsNamed())
}

func TestIsValuedOnlyTextCommentAttributePI(t *testing.T) {
	require.True(t, KindText.IsValued())
	require.True(t, KindComment.IsValued())
	require.True(t, KindAttribute.IsValued())
	require.True(t, KindPI.IsValued())
	require.False(t, KindElement.IsValued())
	require.False(t, KindDocument.IsValued())
}
