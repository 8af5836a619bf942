package ids

import (
	"strings"

	"github.com/google/uuid"
)

// NewUniqueId is used anywhere a record needs a fresh identity, such as the
// prompt sets and versions minted when a share is accepted.
func NewUniqueId() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
