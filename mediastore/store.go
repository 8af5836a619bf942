package mediastore

import (
	"strings"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/metrics"
	"github.com/promptvault/prompt-media-repo/types"
	"github.com/promptvault/prompt-media-repo/util"
)

// Repository is the persistence contract for media records. UpsertIfAbsent
// must be atomic at the store layer so racing puts for the same id converge
// on a single row.
type Repository interface {
	UpsertIfAbsent(ctx rcontext.RequestContext, record *types.MediaRecord) (bool, error)
	Overwrite(ctx rcontext.RequestContext, record *types.MediaRecord) error
	GetById(ctx rcontext.RequestContext, id string) (*types.MediaRecord, error)
	ListByOwner(ctx rcontext.RequestContext, ownerId string) ([]*types.MediaRecord, error)
	ListAll(ctx rcontext.RequestContext) ([]*types.MediaRecord, error)
	Delete(ctx rcontext.RequestContext, id string) error
}

type Config struct {
	MaxUrlLength int
	BlobHosts    []string
}

// Store is the deduplicated, content-addressed index of image references per
// owner. Record ids are a pure function of (owner, normalized url), so the
// store needs no locks to stay consistent under retries.
type Store struct {
	repo         Repository
	maxUrlLength int
	blobHosts    map[string]bool
}

func NewStore(repo Repository, cfg Config) *Store {
	hosts := make(map[string]bool)
	for _, h := range cfg.BlobHosts {
		hosts[h] = true
	}
	maxLen := cfg.MaxUrlLength
	if maxLen <= 0 {
		maxLen = 2048
	}
	return &Store{
		repo:         repo,
		maxUrlLength: maxLen,
		blobHosts:    hosts,
	}
}

type PutMetadata struct {
	OwnerId           string
	SourcePromptSetId string
	SourceVersionId   string
	CreationTs        int64
}

// Put registers a URL for an owner. A repeat put for the same (owner, url)
// pair is an idempotent no-op returning the existing record, unless overwrite
// is set. URLs beyond the inline payload guard are rejected outright - they
// tend to be embedded base64 documents that would bloat the backing store.
func (s *Store) Put(ctx rcontext.RequestContext, rawUrl string, meta PutMetadata, overwrite bool) (*types.MediaRecord, error) {
	if len(rawUrl) > s.maxUrlLength {
		metrics.MediaPuts.With(map[string]string{"outcome": "rejected"}).Inc()
		return nil, common.ErrUrlTooLarge
	}

	record := &types.MediaRecord{
		Id:                s.RecordID(meta.OwnerId, rawUrl),
		OwnerId:           meta.OwnerId,
		Url:               strings.TrimSpace(rawUrl),
		SourcePromptSetId: meta.SourcePromptSetId,
		SourceVersionId:   meta.SourceVersionId,
		CreationTs:        meta.CreationTs,
	}
	if record.CreationTs == 0 {
		record.CreationTs = util.NowMillis()
	}

	if overwrite {
		if err := s.repo.Overwrite(ctx, record); err != nil {
			return nil, err
		}
		metrics.MediaPuts.With(map[string]string{"outcome": "overwritten"}).Inc()
		return record, nil
	}

	created, err := s.repo.UpsertIfAbsent(ctx, record)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.MediaPuts.With(map[string]string{"outcome": "created"}).Inc()
		return record, nil
	}

	existing, err := s.repo.GetById(ctx, record.Id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// deleted between the upsert and the read; our row is as good
		return record, nil
	}
	metrics.MediaPuts.With(map[string]string{"outcome": "deduplicated"}).Inc()
	return existing, nil
}

// Restore writes a record back verbatim, keeping its original id. Used by the
// JSON backup path, which merges by id rather than re-deriving it.
func (s *Store) Restore(ctx rcontext.RequestContext, record *types.MediaRecord) error {
	return s.repo.Overwrite(ctx, record)
}

func (s *Store) Exists(ctx rcontext.RequestContext, ownerId string, rawUrl string) (bool, error) {
	return s.ExistsById(ctx, s.RecordID(ownerId, rawUrl))
}

func (s *Store) ExistsById(ctx rcontext.RequestContext, id string) (bool, error) {
	record, err := s.repo.GetById(ctx, id)
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

func (s *Store) GetById(ctx rcontext.RequestContext, id string) (*types.MediaRecord, error) {
	return s.repo.GetById(ctx, id)
}

// ListForOwner returns the owner's records. includeAll is the elevated view
// across every owner; enforcing who may request it is the caller's concern.
func (s *Store) ListForOwner(ctx rcontext.RequestContext, ownerId string, includeAll bool) ([]*types.MediaRecord, error) {
	if includeAll {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, ownerId)
}
