package objectstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinObjectPath(t *testing.T) {
	assert.Equal(t, "a.txt", JoinObjectPath("", "a.txt"))
	assert.Equal(t, "docs/a.txt", JoinObjectPath("docs", "a.txt"))
	assert.Equal(t, "docs/a.txt", JoinObjectPath("/docs/", "a.txt"))

	dir, name := SplitObjectPath(JoinObjectPath("a/b", "c.txt"))
	assert.Equal(t, "a/b", dir)
	assert.Equal(t, "c.txt", name)
}

func TestParseResourcePath(t *testing.T) {
	tests := []struct {
		in   string
		want ResourcePath
	}{
		{"innoida/my-bucket", ResourcePath{DC: "innoida", Bucket: "my-bucket"}},
		{"innoida/my-bucket/hello.txt", ResourcePath{DC: "innoida", Bucket: "my-bucket", Name: "hello.txt"}},
		{"/innoida/my-bucket/docs/2024/report.pdf", ResourcePath{DC: "innoida", Bucket: "my-bucket", Dir: "docs/2024", Name: "report.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResourcePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "innoida", "innoida/", "/my-bucket"} {
		_, err := ParseResourcePath(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}

func TestResourcePath_String(t *testing.T) {
	assert.Equal(t, "innoida/b", ResourcePath{DC: "innoida", Bucket: "b"}.String())
	assert.Equal(t, "innoida/b/docs/a.txt", ResourcePath{DC: "innoida", Bucket: "b", Dir: "docs", Name: "a.txt"}.String())
	assert.Equal(t, "docs/a.txt", ResourcePath{Dir: "docs", Name: "a.txt"}.ObjectPath())
}
