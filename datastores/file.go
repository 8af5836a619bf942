package datastores

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
)

// fileStore keeps blobs on the local filesystem. Primarily for small
// deployments and tests; production installs should use s3.
type fileStore struct {
	root string
}

func newFileStore(root string) (*fileStore, error) {
	if root == "" {
		return nil, errors.New("file blob store requires a path option")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(abs, 0755); err != nil {
		return nil, err
	}
	return &fileStore{root: abs}, nil
}

func (s *fileStore) UrlFor(path string) string {
	return "file://" + filepath.ToSlash(filepath.Join(s.root, path))
}

func (s *fileStore) Put(ctx rcontext.RequestContext, path string, r io.Reader, size int64, contentType string) (string, error) {
	target, err := s.locate(s.UrlFor(path))
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return s.UrlFor(path), nil
}

func (s *fileStore) Get(ctx rcontext.RequestContext, url string) (io.ReadCloser, error) {
	target, err := s.locate(url)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

func (s *fileStore) locate(url string) (string, error) {
	if !strings.HasPrefix(url, "file://") {
		return "", errors.New("url does not belong to this blob store: " + url)
	}
	target := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(url, "file://")))
	if target != s.root && !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return "", errors.New("url escapes the blob store root")
	}
	return target, nil
}
