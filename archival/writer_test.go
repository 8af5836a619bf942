package archival

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayFileNameStripsQueryAndFragment(t *testing.T) {
	assert.Equal(t, "img.png", displayFileName("https://store.example.com/o/img.png?token=abc&alt=media"))
	assert.Equal(t, "img.png", displayFileName("https://store.example.com/o/img.png#preview"))
	assert.Equal(t, "img.png", displayFileName("file:///tmp/media/img.png"))
	assert.Equal(t, "img.png", displayFileName("img.png"))
}
