package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Params
	}{
		{
			name: "single pair",
			raw:  "page=1",
			want: Params{{Key: "page", Value: "1"}},
		},
		{
			name: "keeps order and duplicates",
			raw:  "b=2&a=1&a=3",
			want: Params{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}, {Key: "a", Value: "3"}},
		},
		{
			name: "empty value",
			raw:  "flag=",
			want: Params{{Key: "flag", Value: ""}},
		},
		{
			name: "value containing equals",
			raw:  "expr=a=b",
			want: Params{{Key: "expr", Value: "a=b"}},
		},
		{
			name: "percent decoding",
			raw:  "q=a%20b&name=J%C3%BCrgen",
			want: Params{{Key: "q", Value: "a b"}, {Key: "name", Value: "Jürgen"}},
		},
		{
			name: "skips empty segments",
			raw:  "a=1&&b=2&",
			want: Params{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseParams(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, params)
		})
	}
}

func TestParseParams_Malformed(t *testing.T) {
	for _, raw := range []string{"novalue", "a=1&oops", "=1", "a=%zz"} {
		t.Run(raw, func(t *testing.T) {
			params, err := ParseParams(raw)

			assert.Nil(t, params)
			assert.Equal(t, KindMalformedParam, KindOf(err))
		})
	}
}

func TestParams_Encode(t *testing.T) {
	params := Params{{Key: "b", Value: "2"}, {Key: "a", Value: "x y"}, {Key: "a", Value: "&"}}

	assert.Equal(t, "b=2&a=x+y&a=%26", params.Encode())
	assert.Equal(t, []string{"x y", "&"}, params.Values()["a"])
}

func TestBuildURL(t *testing.T) {
	params := Params{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}

	got, err := BuildURL("https://example.test/items", params)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/items?b=2&a=1", got)

	got, err = BuildURL("https://example.test/items?x=0", params)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/items?x=0&b=2&a=1", got)

	got, err = BuildURL("https://example.test/items", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/items", got)
}
