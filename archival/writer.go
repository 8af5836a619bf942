package archival

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/types"
	"github.com/promptvault/prompt-media-repo/util"
)

// Writer streams an export container: a gzip'd tar holding one blob per media
// record under media/ plus a trailing metadata.json manifest.
type Writer struct {
	ctx rcontext.RequestContext

	gz      *gzip.Writer
	tar     *tar.Writer
	entries []*ManifestEntry
	written int64
}

func NewWriter(ctx rcontext.RequestContext, w io.Writer) *Writer {
	gz := gzip.NewWriter(w)
	return &Writer{
		ctx:     ctx,
		gz:      gz,
		tar:     tar.NewWriter(gz),
		entries: make([]*ManifestEntry, 0),
	}
}

// AppendMedia adds the record's blob to the container and notes it in the
// manifest. The blob is spooled to disk first: tar headers need the size and
// the extension sniffed before any payload bytes go out.
func (w *Writer) AppendMedia(record *types.MediaRecord, file io.ReadCloser) error {
	defer file.Close()

	f, err := os.CreateTemp(os.TempDir(), "pr-archive")
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	size, err := io.Copy(f, file)
	if err != nil {
		return err
	}

	mime, err := mimetype.DetectFile(f.Name())
	if err != nil {
		return err
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	archivedName := path.Join("media", record.Id+mime.Extension())
	if err = w.putFile(f, archivedName, size, util.FromMillis(record.CreationTs)); err != nil {
		return err
	}

	w.entries = append(w.entries, &ManifestEntry{
		Id:           record.Id,
		FileName:     displayFileName(record.Url),
		ArchivedName: archivedName,
		OriginalUrl:  record.Url,
		PromptSetId:  record.SourcePromptSetId,
		VersionId:    record.SourceVersionId,
		OwnerId:      record.OwnerId,
		ContentType:  mime.String(),
		SizeBytes:    size,
		CreatedTs:    record.CreationTs,
	})
	return nil
}

// Finish writes the manifest and closes the container. The writer is not
// usable afterwards.
func (w *Writer) Finish() error {
	manifest := &Manifest{
		Version: ManifestVersion,
		Entries: w.entries,
	}
	buf, err := json.Marshal(manifest)
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    "metadata.json",
		Mode:    int64(0644),
		ModTime: time.Now(),
		Size:    int64(len(buf)),
	}
	if err = w.tar.WriteHeader(header); err != nil {
		return err
	}
	if _, err = w.tar.Write(buf); err != nil {
		return err
	}

	if err = w.tar.Close(); err != nil {
		return err
	}
	if err = w.gz.Close(); err != nil {
		return err
	}

	w.ctx.Log.Infof("Wrote archive of %d media entries (%s)", len(w.entries), humanize.Bytes(uint64(w.written)))
	return nil
}

// displayFileName is what conflict prompts show users: the last path segment
// of the record's URL, without query parameters or fragments.
func displayFileName(rawUrl string) string {
	u, err := url.Parse(rawUrl)
	if err != nil || u.Path == "" {
		return path.Base(rawUrl)
	}
	return path.Base(u.Path)
}

func (w *Writer) putFile(r io.Reader, name string, size int64, creationTime time.Time) error {
	header := &tar.Header{
		Name:    name,
		Mode:    int64(0644),
		ModTime: creationTime,
		Size:    size,
	}
	if err := w.tar.WriteHeader(header); err != nil {
		return err
	}
	n, err := io.Copy(w.tar, r)
	if err != nil {
		return err
	}
	if n != size {
		w.ctx.Log.Warnf("Size mismatch! Expected %d bytes but wrote %d instead", size, n)
	}
	w.written += n
	return nil
}
