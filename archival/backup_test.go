package archival

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/types"
	"github.com/promptvault/prompt-media-repo/util/ids"
)

func TestBackupRoundTrip(t *testing.T) {
	ctx := rcontext.Initial()
	src := newArchiveEnv(t)

	set := &types.PromptSet{
		Id:      ids.NewUniqueId(),
		OwnerId: "alice",
		Title:   "Moody forest",
		Versions: []*types.PromptVersion{
			{Id: ids.NewUniqueId(), Text: "fog, tall pines"},
		},
	}
	require.NoError(t, src.promptSets.Insert(ctx, set))
	record := src.seedRecord(t, ctx, "alice", "a.png", []byte("payload"))

	buf := &bytes.Buffer{}
	require.NoError(t, src.service.WriteBackup(ctx, "alice", false, buf))

	dst := newArchiveEnv(t)
	result, err := dst.service.RestoreBackup(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, &RestoreResult{PromptSets: 1, Media: 1}, result)

	restoredSet, err := dst.promptSets.GetById(ctx, set.Id)
	require.NoError(t, err)
	require.NotNil(t, restoredSet)
	assert.Equal(t, "Moody forest", restoredSet.Title)
	assert.Equal(t, "fog, tall pines", restoredSet.Versions[0].Text)

	// Media records keep their original ids and URLs verbatim.
	restoredRecord, err := dst.media.GetById(ctx, record.Id)
	require.NoError(t, err)
	require.NotNil(t, restoredRecord)
	assert.Equal(t, record.Url, restoredRecord.Url)
}

func TestRestoreBackupMergesById(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	record := e.seedRecord(t, ctx, "alice", "a.png", []byte("payload"))

	buf := &bytes.Buffer{}
	require.NoError(t, e.service.WriteBackup(ctx, "alice", false, buf))

	// Drift the live record, then restore: the backup copy wins for its id
	// and everything else is left alone.
	drifted := *record
	drifted.SourcePromptSetId = "drifted"
	require.NoError(t, e.media.Restore(ctx, &drifted))
	other := e.seedRecord(t, ctx, "alice", "b.png", []byte("other"))

	result, err := e.service.RestoreBackup(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Media)

	merged, err := e.media.GetById(ctx, record.Id)
	require.NoError(t, err)
	require.NotNil(t, merged)
	assert.Equal(t, record.SourcePromptSetId, merged.SourcePromptSetId)

	untouched, err := e.media.GetById(ctx, other.Id)
	require.NoError(t, err)
	assert.NotNil(t, untouched)
}

func TestRestoreBackupRejectsGarbage(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	_, err := e.service.RestoreBackup(ctx, strings.NewReader("{truncated"))
	assert.ErrorIs(t, err, common.ErrMalformed)
}

func TestWriteBackupScopesToOwner(t *testing.T) {
	ctx := rcontext.Initial()
	e := newArchiveEnv(t)

	require.NoError(t, e.promptSets.Insert(ctx, &types.PromptSet{Id: ids.NewUniqueId(), OwnerId: "alice", Title: "Mine"}))
	require.NoError(t, e.promptSets.Insert(ctx, &types.PromptSet{Id: ids.NewUniqueId(), OwnerId: "bob", Title: "Theirs"}))
	_, err := e.media.Put(ctx, "https://example.org/a.png", mediastore.PutMetadata{OwnerId: "alice"}, false)
	require.NoError(t, err)
	_, err = e.media.Put(ctx, "https://example.org/b.png", mediastore.PutMetadata{OwnerId: "bob"}, false)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, e.service.WriteBackup(ctx, "alice", false, buf))
	dst := newArchiveEnv(t)
	result, err := dst.service.RestoreBackup(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, &RestoreResult{PromptSets: 1, Media: 1}, result)

	buf.Reset()
	require.NoError(t, e.service.WriteBackup(ctx, "alice", true, buf))
	dst = newArchiveEnv(t)
	result, err = dst.service.RestoreBackup(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, &RestoreResult{PromptSets: 2, Media: 2}, result)
}
