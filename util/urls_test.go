package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUrl(t *testing.T) {
	assert.Equal(t, "https://example.org/a/b", MakeUrl("https://example.org", "a", "b"))
	assert.Equal(t, "https://example.org/a/b", MakeUrl("https://example.org/", "/a", "b/"))
	assert.Equal(t, "https://example.org/b", MakeUrl("https://example.org", "", "b"))
}

func TestGetSha256OfString(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", GetSha256OfString("hello"))
}
