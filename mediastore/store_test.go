package mediastore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/tests/fakes"
	"github.com/promptvault/prompt-media-repo/types"
)

func newTestStore() (*Store, *fakes.MediaRepo) {
	repo := fakes.NewMediaRepo()
	return NewStore(repo, Config{
		MaxUrlLength: 256,
		BlobHosts:    []string{"store.example.com"},
	}), repo
}

func TestPutIsIdempotent(t *testing.T) {
	ctx := rcontext.Initial()
	s, repo := newTestStore()

	first, err := s.Put(ctx, "https://example.org/a.png", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)
	second, err := s.Put(ctx, "https://example.org/a.png", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, first.CreationTs, second.CreationTs)
	assert.Len(t, repo.Records, 1)
}

func TestPutDeduplicatesUrlVariants(t *testing.T) {
	ctx := rcontext.Initial()
	s, repo := newTestStore()

	_, err := s.Put(ctx, "https://store.example.com/o/img.png?token=abc123", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)
	_, err = s.Put(ctx, "https://store.example.com/o/img.png?token=zzz999&alt=media", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)

	assert.Len(t, repo.Records, 1)
}

func TestPutIsScopedPerOwner(t *testing.T) {
	ctx := rcontext.Initial()
	s, repo := newTestStore()

	_, err := s.Put(ctx, "https://example.org/a.png", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)
	_, err = s.Put(ctx, "https://example.org/a.png", PutMetadata{OwnerId: "bob"}, false)
	require.NoError(t, err)

	assert.Len(t, repo.Records, 2)
}

func TestPutRejectsOversizedUrl(t *testing.T) {
	ctx := rcontext.Initial()
	s, repo := newTestStore()

	_, err := s.Put(ctx, "https://example.org/"+strings.Repeat("x", 300), PutMetadata{OwnerId: "alice"}, false)
	assert.ErrorIs(t, err, common.ErrUrlTooLarge)
	assert.Len(t, repo.Records, 0)
}

func TestPutOverwriteReplacesSourceInfo(t *testing.T) {
	ctx := rcontext.Initial()
	s, _ := newTestStore()

	first, err := s.Put(ctx, "https://example.org/a.png", PutMetadata{OwnerId: "alice", SourcePromptSetId: "set1"}, false)
	require.NoError(t, err)

	updated, err := s.Put(ctx, "https://example.org/a.png", PutMetadata{OwnerId: "alice", SourcePromptSetId: "set2"}, true)
	require.NoError(t, err)
	assert.Equal(t, first.Id, updated.Id)

	stored, err := s.GetById(ctx, first.Id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "set2", stored.SourcePromptSetId)
}

func TestListForOwner(t *testing.T) {
	ctx := rcontext.Initial()
	s, _ := newTestStore()

	_, err := s.Put(ctx, "https://example.org/a.png", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)
	_, err = s.Put(ctx, "https://example.org/b.png", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)
	_, err = s.Put(ctx, "https://example.org/c.png", PutMetadata{OwnerId: "bob"}, false)
	require.NoError(t, err)

	mine, err := s.ListForOwner(ctx, "alice", false)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	everything, err := s.ListForOwner(ctx, "alice", true)
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}

func TestSyncFromSourceAddsOnlyNewRecords(t *testing.T) {
	ctx := rcontext.Initial()
	s, repo := newTestStore()

	_, err := s.Put(ctx, "https://example.org/existing.png", PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)

	candidates := []SourceCandidate{
		{OwnerId: "alice", Url: "https://example.org/existing.png", PromptSetId: "set1", VersionId: "v1"},
		{OwnerId: "alice", Url: "https://example.org/new.png", PromptSetId: "set1", VersionId: "v2"},
	}

	result, err := s.SyncFromSource(ctx, candidates)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 0, result.Cleaned)
	assert.Len(t, repo.Records, 2)

	// A second run finds nothing to do.
	result, err = s.SyncFromSource(ctx, candidates)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 0, result.Cleaned)
}

func TestSyncFromSourceSkipsOversizedUrls(t *testing.T) {
	ctx := rcontext.Initial()
	s, repo := newTestStore()

	result, err := s.SyncFromSource(ctx, []SourceCandidate{
		{OwnerId: "alice", Url: "https://example.org/" + strings.Repeat("x", 300)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Len(t, repo.Records, 0)
}

func TestSyncFromSourceCleansLegacyDuplicates(t *testing.T) {
	ctx := rcontext.Initial()
	s, repo := newTestStore()

	// A pre-deterministic-id row: random id, same normalized URL as the
	// candidate below.
	legacy := &types.MediaRecord{
		Id:      "legacy-random-id",
		OwnerId: "alice",
		Url:     "https://store.example.com/o/img.png?token=old",
	}
	created, err := repo.UpsertIfAbsent(ctx, legacy)
	require.NoError(t, err)
	require.True(t, created)

	result, err := s.SyncFromSource(ctx, []SourceCandidate{
		{OwnerId: "alice", Url: "https://store.example.com/o/img.png?token=new"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Cleaned)

	// The canonical row survives, the legacy one is gone.
	require.Len(t, repo.Records, 1)
	canonical, err := s.GetById(ctx, s.RecordID("alice", "https://store.example.com/o/img.png"))
	require.NoError(t, err)
	assert.NotNil(t, canonical)
}
