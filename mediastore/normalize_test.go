package mediastore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promptvault/prompt-media-repo/tests/fakes"
)

func newNormalizeStore() *Store {
	return NewStore(fakes.NewMediaRepo(), Config{
		BlobHosts: []string{"store.example.com"},
	})
}

func TestNormalizeStripsQueryOnBlobHosts(t *testing.T) {
	s := newNormalizeStore()

	withToken := "https://store.example.com/o/img.png?token=abc123&alt=media"
	withoutToken := "https://store.example.com/o/img.png?alt=media"
	bare := "https://store.example.com/o/img.png"

	assert.Equal(t, bare, s.Normalize(withToken))
	assert.Equal(t, bare, s.Normalize(withoutToken))
	assert.Equal(t, bare, s.Normalize(bare))
}

func TestNormalizeDecodesPathAndTrailingSlash(t *testing.T) {
	s := newNormalizeStore()

	assert.Equal(t, "https://store.example.com/o/my image.png", s.Normalize("https://store.example.com/o/my%20image.png"))
	assert.Equal(t, "https://store.example.com/bucket", s.Normalize("https://store.example.com/bucket/"))
	assert.Equal(t, "https://store.example.com/bucket", s.Normalize("https://store.example.com/bucket/#frag"))
}

func TestNormalizeLeavesForeignHostsAlone(t *testing.T) {
	s := newNormalizeStore()

	// Unknown hosts only get whitespace trimmed - their query strings can be
	// load-bearing.
	assert.Equal(t, "https://example.org/img?page=2", s.Normalize("  https://example.org/img?page=2  "))
	assert.Equal(t, "not a url at all", s.Normalize(" not a url at all "))
}

func TestNormalizeMatchesHostWithPort(t *testing.T) {
	s := newNormalizeStore()

	assert.Equal(t, "https://store.example.com:9000/o/img.png", s.Normalize("https://store.example.com:9000/o/img.png?token=x"))
}

func TestRecordIDIsDeterministic(t *testing.T) {
	s := newNormalizeStore()

	a := s.RecordID("alice", "https://store.example.com/o/img.png?token=aaa")
	b := s.RecordID("alice", "https://store.example.com/o/img.png?token=bbb")
	c := s.RecordID("bob", "https://store.example.com/o/img.png?token=aaa")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
