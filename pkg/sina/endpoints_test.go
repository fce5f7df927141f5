package sina

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexURL(t *testing.T) {
	e := NewEndpoints("")
	assert.Equal(t, "https://m.weibo.cn/api/container/getIndex?type=uid&value=1669879400", e.IndexURL("1669879400"))
}

func TestPageURL(t *testing.T) {
	e := NewEndpoints("http://127.0.0.1:8080/")

	u, err := url.Parse(e.PageURL("1076031669879400", 3))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", u.Host)
	assert.Equal(t, IndexEndpoint, u.Path)
	assert.Equal(t, "1076031669879400", u.Query().Get("containerid"))
	assert.Equal(t, "3", u.Query().Get("page"))
}

func TestIsValidUID(t *testing.T) {
	tests := []struct {
		uid  string
		want bool
	}{
		{"1669879400", true},
		{"", false},
		{"abc", false},
		{"12 34", false},
		{"123456789012345678901", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidUID(tt.uid), tt.uid)
	}
}
