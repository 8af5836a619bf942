package datastores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3UrlForUsesPublicBaseUrl(t *testing.T) {
	store, err := newS3Store(map[string]string{
		"endpoint":      "localhost:9000",
		"bucketName":    "media",
		"accessKeyId":   "key",
		"accessSecret":  "secret",
		"publicBaseUrl": "https://cdn.example.com/",
	})
	require.NoError(t, err)

	url := store.UrlFor(ObjectPath("alice", "a.png"))
	assert.Equal(t, "https://cdn.example.com/accounts/alice/media/a.png", url)

	// locate must invert UrlFor, or Get can't find what Put stored.
	location, err := store.locate(url)
	require.NoError(t, err)
	assert.Equal(t, "accounts/alice/media/a.png", location)
}
