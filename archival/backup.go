package archival

import (
	"encoding/json"
	"io"

	"github.com/getsentry/sentry-go"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/types"
)

// Backup is the whole-account JSON snapshot format. Unlike archive import,
// restore is non-interactive and merges by the original record ids: existing
// ids are overwritten, unseen ids inserted.
type Backup struct {
	PromptSets []*types.PromptSet   `json:"promptSets"`
	Media      []*types.MediaRecord `json:"media"`
}

type RestoreResult struct {
	PromptSets int `json:"promptSets"`
	Media      int `json:"media"`
}

// WriteBackup serializes one owner's prompt sets and media records to w.
// includeAll is the admin view across every owner.
func (s *Service) WriteBackup(ctx rcontext.RequestContext, ownerId string, includeAll bool, w io.Writer) error {
	var sets []*types.PromptSet
	var err error
	if includeAll {
		sets, err = s.promptSets.ListAll(ctx)
	} else {
		sets, err = s.promptSets.ListByOwner(ctx, ownerId)
	}
	if err != nil {
		return err
	}

	media, err := s.media.ListForOwner(ctx, ownerId, includeAll)
	if err != nil {
		return err
	}

	return json.NewEncoder(w).Encode(&Backup{
		PromptSets: sets,
		Media:      media,
	})
}

// RestoreBackup merges a backup document into the store. A parse failure is
// fatal before any entry is touched; per-entry failures are logged and the
// merge continues.
func (s *Service) RestoreBackup(ctx rcontext.RequestContext, r io.Reader) (*RestoreResult, error) {
	backup := &Backup{}
	if err := json.NewDecoder(r).Decode(backup); err != nil {
		return nil, common.ErrMalformed
	}

	result := &RestoreResult{}
	for _, set := range backup.PromptSets {
		if err := s.promptSets.Upsert(ctx, set); err != nil {
			ctx.Log.Error("Error restoring prompt set from backup: ", err)
			sentry.CaptureException(err)
			continue
		}
		result.PromptSets++
	}
	for _, record := range backup.Media {
		if err := s.media.Restore(ctx, record); err != nil {
			ctx.Log.Error("Error restoring media record from backup: ", err)
			sentry.CaptureException(err)
			continue
		}
		result.Media++
	}

	return result, nil
}
