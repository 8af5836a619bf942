package archival

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
)

// container is a fully-read export archive: the manifest plus each media
// entry spooled to a temp file. Spooling means entry order inside the tar
// doesn't matter, including a manifest written after the blobs.
type container struct {
	Manifest *Manifest
	files    map[string]string // archived name -> temp file path
}

func readContainer(ctx rcontext.RequestContext, r io.Reader) (*container, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, common.ErrMalformed
	}
	defer func() {
		_ = gz.Close()
	}()

	c := &container{files: make(map[string]string)}
	tarFile := tar.NewReader(gz)
	for {
		header, err := tarFile.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.Cleanup()
			return nil, common.ErrMalformed
		}
		if header == nil || header.Typeflag != tar.TypeReg {
			continue
		}

		if header.Name == "metadata.json" {
			manifest := &Manifest{}
			if err = json.NewDecoder(tarFile).Decode(manifest); err != nil {
				c.Cleanup()
				return nil, common.ErrMalformed
			}
			if manifest.Version != ManifestVersion || manifest.Entries == nil {
				c.Cleanup()
				return nil, common.ErrMalformed
			}
			c.Manifest = manifest
			continue
		}

		if strings.HasPrefix(header.Name, "media/") {
			f, err := os.CreateTemp(os.TempDir(), "pr-import")
			if err != nil {
				c.Cleanup()
				return nil, err
			}
			if _, err = io.Copy(f, tarFile); err != nil {
				_ = f.Close()
				c.Cleanup()
				return nil, common.ErrMalformed
			}
			if err = f.Close(); err != nil {
				c.Cleanup()
				return nil, err
			}
			c.files[header.Name] = f.Name()
		}
	}

	if c.Manifest == nil {
		c.Cleanup()
		return nil, common.ErrMalformed
	}
	return c, nil
}

// OpenEntry returns the spooled blob for a manifest entry, or nil when the
// container is missing it.
func (c *container) OpenEntry(entry *ManifestEntry) (*os.File, int64, error) {
	p, ok := c.files[entry.ArchivedName]
	if !ok {
		return nil, 0, nil
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (c *container) Cleanup() {
	for _, p := range c.files {
		_ = os.Remove(p)
	}
}
