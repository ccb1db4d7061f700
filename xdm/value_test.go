package xdm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetValueKeepsShortValuesUncompressed(t *testing.T) {
	r := &Record{}
	r.SetValue([]byte("hi"))
	require.False(t, r.Compressed)
	require.Equal(t, "hi", string(r.Value))
	require.Equal(t, "hi", string(r.DecodedValue()))
}

func TestSetValueCompressesValuesAboveThreshold(t *testing.T) {
	r := &Record{}
	long := strings.Repeat("x", compressThreshold+1)
	r.SetValue([]byte(long))
	require.True(t, r.Compressed)
	require.NotEqual(t, long, string(r.Value))
	require.Equal(t, long, string(r.DecodedValue()))
}

func TestSetValueCopiesInputSoCallerMutationDoesNotLeak(t *testing.T) {
	r := &Record{}
	buf := []byte("short")
	r.SetValue(buf)
	buf[0] = 'z'
	require.Equal(t, "short", string(r.Value))
}
