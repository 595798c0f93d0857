package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGo_Scalars(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	testCases := []struct {
		name string
		in   any
		want IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "abc", IRString("abc")},
		{"bool", true, IRBool(true)},
		{"int", 42, IRInt(42)},
		{"int32", int32(-7), IRInt(-7)},
		{"uint16", uint16(9), IRInt(9)},
		{"already ir", IRInt(3), IRInt(3)},
		{"bytes", []byte("xy"), IRBytes("xy")},
		{"timestamp", ts, IRTimestamp(ts.UTC())},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromGo(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromGo_Rejects(t *testing.T) {
	_, err := FromGo(1.5)
	assert.ErrorContains(t, err, "floats")

	_, err = FromGo(uint64(1 << 63))
	assert.ErrorContains(t, err, "out of int64 range")

	_, err = FromGo(struct{}{})
	assert.ErrorContains(t, err, "unsupported value type")
}

func TestFromGo_BytesAreCopied(t *testing.T) {
	src := []byte("abc")
	v, err := FromGo(src)
	require.NoError(t, err)

	src[0] = 'z'
	assert.Equal(t, IRBytes("abc"), v)
}

func TestNative_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, in := range []any{"s", int64(5), true, []byte("b"), ts} {
		v, err := FromGo(in)
		require.NoError(t, err)
		out, err := Native(v)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	out, err := Native(IRNull{})
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = Native(IRArray{IRInt(1)})
	assert.Error(t, err)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	obj := IRObject{
		"b":          IRInt(1),
		"a":          IRInt(2),
		"\U0001F600": IRInt(3), // surrogate pair sorts before U+FFFD in UTF-16
		"\uFFFD":     IRInt(4),
	}

	assert.Equal(t, []string{"a", "b", "\U0001F600", "\uFFFD"}, obj.SortedKeys())
}
