package archival

import (
	"io"
	"path"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/datastores"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/metrics"
	"github.com/promptvault/prompt-media-repo/pool"
	"github.com/promptvault/prompt-media-repo/types"
)

type PromptSetRepository interface {
	ListByOwner(ctx rcontext.RequestContext, ownerId string) ([]*types.PromptSet, error)
	ListAll(ctx rcontext.RequestContext) ([]*types.PromptSet, error)
	Upsert(ctx rcontext.RequestContext, set *types.PromptSet) error
}

// Resolution is the caller's answer to an import conflict. The *All variants
// become sticky for the remainder of that import call.
type Resolution int

const (
	ResolutionUnset Resolution = iota
	ResolutionOverwrite
	ResolutionSkip
	ResolutionOverwriteAll
	ResolutionSkipAll
)

// ConflictFn suspends an import awaiting a decision, usually from a human. A
// returned error (cancelled prompt, dead UI) is treated as skip - imports
// never overwrite silently.
type ConflictFn func(fileName string, preview []byte) (Resolution, error)

type ImportResult struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

type ExportResult struct {
	Exported int `json:"exported"`
	Skipped  int `json:"skipped"`
}

type Service struct {
	media       *mediastore.Store
	blobs       datastores.BlobStore
	promptSets  PromptSetRepository
	workers     *pool.Queue
	previewSize int64
}

func NewService(media *mediastore.Store, blobs datastores.BlobStore, promptSets PromptSetRepository, workers *pool.Queue, previewSize int64) *Service {
	if previewSize <= 0 {
		previewSize = 32 * 1024
	}
	return &Service{
		media:       media,
		blobs:       blobs,
		promptSets:  promptSets,
		workers:     workers,
		previewSize: previewSize,
	}
}

// Export writes the records' blobs and manifest to w. A record whose blob
// cannot be fetched is logged and skipped; the rest of the archive is still
// produced.
func (s *Service) Export(ctx rcontext.RequestContext, records []*types.MediaRecord, w io.Writer) (*ExportResult, error) {
	result := &ExportResult{}
	writer := NewWriter(ctx, w)

	for _, record := range records {
		blob, err := s.blobs.Get(ctx, record.Url)
		if err != nil {
			ctx.Log.Warnf("Error fetching blob for %s, skipping: %v", record.Id, err)
			sentry.CaptureException(err)
			result.Skipped++
			metrics.ArchiveEntries.With(map[string]string{"action": "export_skipped"}).Inc()
			continue
		}
		if err = writer.AppendMedia(record, blob); err != nil {
			ctx.Log.Warnf("Error archiving blob for %s, skipping: %v", record.Id, err)
			sentry.CaptureException(err)
			result.Skipped++
			metrics.ArchiveEntries.With(map[string]string{"action": "export_skipped"}).Inc()
			continue
		}
		result.Exported++
		metrics.ArchiveEntries.With(map[string]string{"action": "exported"}).Inc()
	}

	if err := writer.Finish(); err != nil {
		return nil, err
	}
	return result, nil
}

// Import restores a container into the acting user's account. Target paths
// derive from (currentUser, entry id) - never the original owner - so
// re-importing the same container predicts the same media ids every time.
// Conflict decisions are taken in manifest order; the blob uploads behind
// overwrite decisions fan out on the worker queue.
func (s *Service) Import(ctx rcontext.RequestContext, r io.Reader, currentUserId string, conflictFn ConflictFn) (*ImportResult, error) {
	c, err := readContainer(ctx, r)
	if err != nil {
		return nil, err
	}
	defer c.Cleanup()

	restored := &atomic.Int64{}
	skipped := &atomic.Int64{}
	sticky := ResolutionUnset
	wg := &sync.WaitGroup{}

	for _, entry := range c.Manifest.Entries {
		targetPath := datastores.ObjectPath(currentUserId, entry.Id+path.Ext(entry.ArchivedName))
		predictedUrl := s.blobs.UrlFor(targetPath)

		exists, err := s.media.ExistsById(ctx, s.media.RecordID(currentUserId, predictedUrl))
		if err != nil {
			ctx.Log.Error("Error checking for conflicting record, skipping entry: ", err)
			sentry.CaptureException(err)
			skipped.Add(1)
			continue
		}
		if exists {
			resolution := sticky
			if resolution == ResolutionUnset {
				resolution, err = conflictFn(entry.FileName, s.preview(c, entry))
				if err != nil {
					ctx.Log.Warn("Conflict prompt abandoned, skipping entry: ", err)
					resolution = ResolutionSkip
				}
			}
			if resolution == ResolutionOverwriteAll || resolution == ResolutionSkipAll {
				sticky = resolution
			}
			if resolution != ResolutionOverwrite && resolution != ResolutionOverwriteAll {
				skipped.Add(1)
				metrics.ArchiveEntries.With(map[string]string{"action": "skipped"}).Inc()
				continue
			}
		}

		entry := entry
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := s.restoreEntry(ctx, c, entry, targetPath, currentUserId); err != nil {
				ctx.Log.Error("Error restoring archive entry, skipping: ", err)
				sentry.CaptureException(err)
				skipped.Add(1)
				return
			}
			restored.Add(1)
			metrics.ArchiveEntries.With(map[string]string{"action": "restored"}).Inc()
		}
		if s.workers == nil || s.workers.Schedule(task) != nil {
			task()
		}
	}
	wg.Wait()

	return &ImportResult{
		Restored: int(restored.Load()),
		Skipped:  int(skipped.Load()),
		Total:    len(c.Manifest.Entries),
	}, nil
}

func (s *Service) restoreEntry(ctx rcontext.RequestContext, c *container, entry *ManifestEntry, targetPath string, currentUserId string) error {
	f, size, err := c.OpenEntry(entry)
	if err != nil {
		return err
	}
	if f == nil {
		return errMissingBlob(entry)
	}
	defer f.Close()

	url, err := s.blobs.Put(ctx, targetPath, f, size, entry.ContentType)
	if err != nil {
		return err
	}

	_, err = s.media.Put(ctx, url, mediastore.PutMetadata{
		OwnerId:           currentUserId,
		SourcePromptSetId: entry.PromptSetId,
		SourceVersionId:   entry.VersionId,
		CreationTs:        entry.CreatedTs,
	}, true)
	return err
}

func (s *Service) preview(c *container, entry *ManifestEntry) []byte {
	f, size, err := c.OpenEntry(entry)
	if err != nil || f == nil {
		return nil
	}
	defer f.Close()
	if size > s.previewSize {
		size = s.previewSize
	}
	buf := make([]byte, size)
	n, _ := io.ReadFull(f, buf)
	return buf[:n]
}

type missingBlobError struct {
	name string
}

func errMissingBlob(entry *ManifestEntry) error {
	return &missingBlobError{name: entry.ArchivedName}
}

func (e *missingBlobError) Error() string {
	return "container is missing blob " + e.name
}
