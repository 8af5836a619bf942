package datastores

import (
	"errors"
	"fmt"
	"io"

	"github.com/promptvault/prompt-media-repo/common/config"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
)

// BlobStore is the binary storage behind media records. Put at an existing
// path replaces the content and returns the same usable URL, which is what
// makes archive imports replayable.
type BlobStore interface {
	Put(ctx rcontext.RequestContext, path string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx rcontext.RequestContext, url string) (io.ReadCloser, error)

	// UrlFor predicts the URL Put would return for a path, without I/O.
	UrlFor(path string) string
}

func Create(cfg config.BlobStoreConfig) (BlobStore, error) {
	switch cfg.Type {
	case "s3":
		return newS3Store(cfg.Options)
	case "file":
		return newFileStore(cfg.Options["path"])
	default:
		return nil, errors.New("unknown blob store type: " + cfg.Type)
	}
}

// ObjectPath is the canonical layout for account-scoped media objects. Both
// copy-on-accept and archive imports derive target paths through this so the
// same logical object always lands at the same location.
func ObjectPath(accountId string, name string) string {
	return fmt.Sprintf("accounts/%s/media/%s", accountId, name)
}

// Copy duplicates the object behind srcUrl to dstPath, returning the new
// URL. The destination never aliases the source object.
func Copy(ctx rcontext.RequestContext, store BlobStore, srcUrl string, dstPath string, contentType string) (string, error) {
	r, err := store.Get(ctx, srcUrl)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return store.Put(ctx, dstPath, r, -1, contentType)
}
