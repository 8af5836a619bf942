package archival

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/config"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/datastores"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/tests/fakes"
	"github.com/promptvault/prompt-media-repo/types"
)

type archiveEnv struct {
	service    *Service
	media      *mediastore.Store
	mediaRepo  *fakes.MediaRepo
	promptSets *fakes.PromptSetRepo
	blobs      datastores.BlobStore
}

func newArchiveEnv(t *testing.T) *archiveEnv {
	t.Helper()
	blobs, err := datastores.Create(config.BlobStoreConfig{
		Type:    "file",
		Options: map[string]string{"path": t.TempDir()},
	})
	require.NoError(t, err)

	mediaRepo := fakes.NewMediaRepo()
	media := mediastore.NewStore(mediaRepo, mediastore.Config{})
	promptSets := fakes.NewPromptSetRepo()

	return &archiveEnv{
		service:    NewService(media, blobs, promptSets, nil, 0),
		media:      media,
		mediaRepo:  mediaRepo,
		promptSets: promptSets,
		blobs:      blobs,
	}
}

func (e *archiveEnv) seedRecord(t *testing.T, ctx rcontext.RequestContext, owner string, name string, payload []byte) *types.MediaRecord {
	t.Helper()
	url, err := e.blobs.Put(ctx, datastores.ObjectPath(owner, name), bytes.NewReader(payload), int64(len(payload)), "application/octet-stream")
	require.NoError(t, err)
	record, err := e.media.Put(ctx, url, mediastore.PutMetadata{OwnerId: owner}, false)
	require.NoError(t, err)
	return record
}

func failOnConflict(t *testing.T) ConflictFn {
	return func(fileName string, preview []byte) (Resolution, error) {
		t.Fatalf("unexpected conflict for %s", fileName)
		return ResolutionUnset, nil
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	payloadA := []byte("first image payload")
	payloadB := []byte("second image payload")
	recA := e.seedRecord(t, ctx, "alice", "a.png", payloadA)
	recB := e.seedRecord(t, ctx, "alice", "b.png", payloadB)

	buf := &bytes.Buffer{}
	exported, err := e.service.Export(ctx, []*types.MediaRecord{recA, recB}, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, exported.Exported)
	assert.Equal(t, 0, exported.Skipped)

	result, err := e.service.Import(ctx, buf, "bob", failOnConflict(t))
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Restored: 2, Skipped: 0, Total: 2}, result)

	records, err := e.media.ListForOwner(ctx, "bob", false)
	require.NoError(t, err)
	require.Len(t, records, 2)

	payloads := make(map[string]bool)
	for _, record := range records {
		assert.Equal(t, "bob", record.OwnerId)
		r, err := e.blobs.Get(ctx, record.Url)
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		_ = r.Close()
		require.NoError(t, err)
		payloads[string(data)] = true
	}
	assert.True(t, payloads[string(payloadA)])
	assert.True(t, payloads[string(payloadB)])
}

func TestImportIsReplaySafe(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	recA := e.seedRecord(t, ctx, "alice", "a.png", []byte("payload a"))
	recB := e.seedRecord(t, ctx, "alice", "b.png", []byte("payload b"))

	buf := &bytes.Buffer{}
	_, err := e.service.Export(ctx, []*types.MediaRecord{recA, recB}, buf)
	require.NoError(t, err)
	archive := buf.Bytes()

	first, err := e.service.Import(ctx, bytes.NewReader(archive), "bob", failOnConflict(t))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Restored)

	firstIds := make(map[string]bool)
	records, err := e.media.ListForOwner(ctx, "bob", false)
	require.NoError(t, err)
	for _, record := range records {
		firstIds[record.Id] = true
	}

	// Re-running with overwrite-all lands on the same two records.
	second, err := e.service.Import(ctx, bytes.NewReader(archive), "bob", func(fileName string, preview []byte) (Resolution, error) {
		return ResolutionOverwriteAll, nil
	})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Restored: 2, Skipped: 0, Total: 2}, second)

	records, err = e.media.ListForOwner(ctx, "bob", false)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.True(t, firstIds[record.Id])
	}
}

func TestImportSkipConflictLeavesExisting(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	rec := e.seedRecord(t, ctx, "alice", "a.png", []byte("payload"))
	buf := &bytes.Buffer{}
	_, err := e.service.Export(ctx, []*types.MediaRecord{rec}, buf)
	require.NoError(t, err)
	archive := buf.Bytes()

	_, err = e.service.Import(ctx, bytes.NewReader(archive), "bob", failOnConflict(t))
	require.NoError(t, err)

	called := 0
	result, err := e.service.Import(ctx, bytes.NewReader(archive), "bob", func(fileName string, preview []byte) (Resolution, error) {
		called++
		assert.NotEmpty(t, preview)
		return ResolutionSkip, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	assert.Equal(t, &ImportResult{Restored: 0, Skipped: 1, Total: 1}, result)
}

func TestImportStickyResolution(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	records := []*types.MediaRecord{
		e.seedRecord(t, ctx, "alice", "a.png", []byte("payload a")),
		e.seedRecord(t, ctx, "alice", "b.png", []byte("payload b")),
		e.seedRecord(t, ctx, "alice", "c.png", []byte("payload c")),
	}
	buf := &bytes.Buffer{}
	_, err := e.service.Export(ctx, records, buf)
	require.NoError(t, err)
	archive := buf.Bytes()

	_, err = e.service.Import(ctx, bytes.NewReader(archive), "bob", failOnConflict(t))
	require.NoError(t, err)

	// Skip-all answers once and is never asked again.
	called := 0
	result, err := e.service.Import(ctx, bytes.NewReader(archive), "bob", func(fileName string, preview []byte) (Resolution, error) {
		called++
		return ResolutionSkipAll, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	assert.Equal(t, &ImportResult{Restored: 0, Skipped: 3, Total: 3}, result)
}

func TestImportConflictErrorMeansSkip(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	rec := e.seedRecord(t, ctx, "alice", "a.png", []byte("payload"))
	buf := &bytes.Buffer{}
	_, err := e.service.Export(ctx, []*types.MediaRecord{rec}, buf)
	require.NoError(t, err)
	archive := buf.Bytes()

	_, err = e.service.Import(ctx, bytes.NewReader(archive), "bob", failOnConflict(t))
	require.NoError(t, err)

	result, err := e.service.Import(ctx, bytes.NewReader(archive), "bob", func(fileName string, preview []byte) (Resolution, error) {
		return ResolutionUnset, io.ErrUnexpectedEOF
	})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Restored: 0, Skipped: 1, Total: 1}, result)
}

func TestExportSkipsUnfetchableBlobs(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	good := e.seedRecord(t, ctx, "alice", "a.png", []byte("payload"))
	missing, err := e.media.Put(ctx, "https://elsewhere.example.org/gone.png", mediastore.PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	result, err := e.service.Export(ctx, []*types.MediaRecord{good, missing}, buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 1, result.Skipped)

	// The produced archive is still importable.
	imported, err := e.service.Import(ctx, buf, "bob", failOnConflict(t))
	require.NoError(t, err)
	assert.Equal(t, 1, imported.Restored)
}

func TestImportRejectsMalformedContainers(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	_, err := e.service.Import(ctx, strings.NewReader("not a gzip stream"), "bob", failOnConflict(t))
	assert.ErrorIs(t, err, common.ErrMalformed)

	// A valid container with no manifest is just as unusable.
	buf := &bytes.Buffer{}
	writer := NewWriter(rcontext.Initial(), buf)
	require.NoError(t, writer.tar.Close())
	require.NoError(t, writer.gz.Close())
	_, err = e.service.Import(ctx, buf, "bob", failOnConflict(t))
	assert.ErrorIs(t, err, common.ErrMalformed)
}

func TestManifestCarriesSourceMetadata(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	payload := []byte("payload")
	url, err := e.blobs.Put(ctx, datastores.ObjectPath("alice", "a.png"), bytes.NewReader(payload), int64(len(payload)), "application/octet-stream")
	require.NoError(t, err)
	record, err := e.media.Put(ctx, url, mediastore.PutMetadata{
		OwnerId:           "alice",
		SourcePromptSetId: "set1",
		SourceVersionId:   "v1",
	}, false)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	_, err = e.service.Export(ctx, []*types.MediaRecord{record}, buf)
	require.NoError(t, err)

	c, err := readContainer(ctx, buf)
	require.NoError(t, err)
	defer c.Cleanup()

	require.Len(t, c.Manifest.Entries, 1)
	entry := c.Manifest.Entries[0]
	assert.Equal(t, record.Id, entry.Id)
	assert.Equal(t, "alice", entry.OwnerId)
	assert.Equal(t, "set1", entry.PromptSetId)
	assert.Equal(t, "v1", entry.VersionId)
	assert.Equal(t, record.Url, entry.OriginalUrl)
	assert.Equal(t, int64(len(payload)), entry.SizeBytes)
	assert.True(t, strings.HasPrefix(entry.ArchivedName, "media/"))
}
