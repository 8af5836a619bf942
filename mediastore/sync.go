package mediastore

import (
	"github.com/getsentry/sentry-go"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/metrics"
	"github.com/promptvault/prompt-media-repo/types"
	"github.com/promptvault/prompt-media-repo/util"
)

type SourceCandidate struct {
	OwnerId     string
	Url         string
	PromptSetId string
	VersionId   string
	CreationTs  int64
}

type SyncResult struct {
	Added   int `json:"added"`
	Cleaned int `json:"cleaned"`
}

// SyncFromSource ingests image references discovered in prompt set versions.
// It is safe to re-run: candidates already present for their owner are left
// alone. It also sweeps out legacy duplicate rows that share a normalized URL
// (rows created before ids were deterministic), keeping the canonical one.
// Per-entry failures are logged and skipped; the summary is always complete.
func (s *Store) SyncFromSource(ctx rcontext.RequestContext, candidates []SourceCandidate) (*SyncResult, error) {
	result := &SyncResult{}
	owners := make(map[string]bool)

	for _, c := range candidates {
		owners[c.OwnerId] = true
		if len(c.Url) > s.maxUrlLength {
			ctx.Log.Warnf("Skipping oversized url for owner %s during sync", c.OwnerId)
			continue
		}
		ts := c.CreationTs
		if ts == 0 {
			ts = util.NowMillis()
		}
		record := &types.MediaRecord{
			Id:                s.RecordID(c.OwnerId, c.Url),
			OwnerId:           c.OwnerId,
			Url:               c.Url,
			SourcePromptSetId: c.PromptSetId,
			SourceVersionId:   c.VersionId,
			CreationTs:        ts,
		}
		created, err := s.repo.UpsertIfAbsent(ctx, record)
		if err != nil {
			ctx.Log.Error("Error ingesting media record during sync: ", err)
			sentry.CaptureException(err)
			continue
		}
		if created {
			result.Added++
			metrics.MediaSynced.With(map[string]string{"outcome": "added"}).Inc()
		}
	}

	for ownerId := range owners {
		cleaned, err := s.cleanDuplicates(ctx, ownerId)
		if err != nil {
			ctx.Log.Error("Error cleaning duplicate media records: ", err)
			sentry.CaptureException(err)
			continue
		}
		result.Cleaned += cleaned
	}

	return result, nil
}

// cleanDuplicates removes all but the canonical record when multiple rows for
// one owner normalize to the same URL. The canonical row is the one whose id
// matches the deterministic derivation; if none does, the first seen wins.
func (s *Store) cleanDuplicates(ctx rcontext.RequestContext, ownerId string) (int, error) {
	records, err := s.repo.ListByOwner(ctx, ownerId)
	if err != nil {
		return 0, err
	}

	byNormalized := make(map[string][]*types.MediaRecord)
	for _, r := range records {
		key := s.Normalize(r.Url)
		byNormalized[key] = append(byNormalized[key], r)
	}

	cleaned := 0
	for _, dupes := range byNormalized {
		if len(dupes) < 2 {
			continue
		}
		keep := dupes[0]
		for _, r := range dupes {
			if r.Id == s.RecordID(ownerId, r.Url) {
				keep = r
				break
			}
		}
		for _, r := range dupes {
			if r.Id == keep.Id {
				continue
			}
			if err := s.repo.Delete(ctx, r.Id); err != nil {
				ctx.Log.Error("Error removing duplicate media record: ", err)
				sentry.CaptureException(err)
				continue
			}
			cleaned++
			metrics.MediaSynced.With(map[string]string{"outcome": "cleaned"}).Inc()
		}
	}

	return cleaned, nil
}
