// Package fakes holds in-memory repository implementations for tests. They
// mirror the database accessors' semantics, including value-copy reads so a
// test mutating a returned struct can't accidentally reach stored state.
package fakes

import (
	"sync"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/notifier"
	"github.com/promptvault/prompt-media-repo/types"
)

type MediaRepo struct {
	mu      sync.Mutex
	Records map[string]*types.MediaRecord
}

func NewMediaRepo() *MediaRepo {
	return &MediaRepo{Records: make(map[string]*types.MediaRecord)}
}

func (r *MediaRepo) UpsertIfAbsent(ctx rcontext.RequestContext, record *types.MediaRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Records[record.Id]; ok {
		return false, nil
	}
	c := *record
	r.Records[record.Id] = &c
	return true, nil
}

func (r *MediaRepo) Overwrite(ctx rcontext.RequestContext, record *types.MediaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *record
	r.Records[record.Id] = &c
	return nil
}

func (r *MediaRepo) GetById(ctx rcontext.RequestContext, id string) (*types.MediaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.Records[id]
	if !ok {
		return nil, nil
	}
	c := *record
	return &c, nil
}

func (r *MediaRepo) ListByOwner(ctx rcontext.RequestContext, ownerId string) ([]*types.MediaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]*types.MediaRecord, 0)
	for _, record := range r.Records {
		if record.OwnerId == ownerId {
			c := *record
			results = append(results, &c)
		}
	}
	return results, nil
}

func (r *MediaRepo) ListAll(ctx rcontext.RequestContext) ([]*types.MediaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]*types.MediaRecord, 0)
	for _, record := range r.Records {
		c := *record
		results = append(results, &c)
	}
	return results, nil
}

func (r *MediaRepo) Delete(ctx rcontext.RequestContext, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Records, id)
	return nil
}

type PromptSetRepo struct {
	mu   sync.Mutex
	Sets map[string]*types.PromptSet
}

func NewPromptSetRepo() *PromptSetRepo {
	return &PromptSetRepo{Sets: make(map[string]*types.PromptSet)}
}

func (r *PromptSetRepo) GetById(ctx rcontext.RequestContext, id string) (*types.PromptSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.Sets[id]
	if !ok {
		return nil, nil
	}
	return set.Clone(), nil
}

func (r *PromptSetRepo) Insert(ctx rcontext.RequestContext, set *types.PromptSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sets[set.Id] = set.Clone()
	return nil
}

func (r *PromptSetRepo) Upsert(ctx rcontext.RequestContext, set *types.PromptSet) error {
	return r.Insert(ctx, set)
}

func (r *PromptSetRepo) ListByOwner(ctx rcontext.RequestContext, ownerId string) ([]*types.PromptSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]*types.PromptSet, 0)
	for _, set := range r.Sets {
		if set.OwnerId == ownerId {
			results = append(results, set.Clone())
		}
	}
	return results, nil
}

func (r *PromptSetRepo) ListAll(ctx rcontext.RequestContext) ([]*types.PromptSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]*types.PromptSet, 0)
	for _, set := range r.Sets {
		results = append(results, set.Clone())
	}
	return results, nil
}

type OfferRepo struct {
	mu     sync.Mutex
	Offers map[string]*types.ShareOffer
}

func NewOfferRepo() *OfferRepo {
	return &OfferRepo{Offers: make(map[string]*types.ShareOffer)}
}

func cloneOffer(offer *types.ShareOffer) *types.ShareOffer {
	c := *offer
	if offer.Snapshot != nil {
		c.Snapshot = offer.Snapshot.Clone()
	}
	return &c
}

func (r *OfferRepo) Insert(ctx rcontext.RequestContext, offer *types.ShareOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Offers[offer.Id] = cloneOffer(offer)
	return nil
}

func (r *OfferRepo) UpdateState(ctx rcontext.RequestContext, offerId string, state types.OfferState, respondedTs int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offer, ok := r.Offers[offerId]; ok {
		offer.State = state
		offer.RespondedTs = respondedTs
	}
	return nil
}

func (r *OfferRepo) GetById(ctx rcontext.RequestContext, id string) (*types.ShareOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.Offers[id]
	if !ok {
		return nil, nil
	}
	return cloneOffer(offer), nil
}

func (r *OfferRepo) ListByRecipient(ctx rcontext.RequestContext, recipientId string, state types.OfferState) ([]*types.ShareOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]*types.ShareOffer, 0)
	for _, offer := range r.Offers {
		if offer.RecipientId == recipientId && (state == "" || offer.State == state) {
			results = append(results, cloneOffer(offer))
		}
	}
	return results, nil
}

func (r *OfferRepo) ListBySender(ctx rcontext.RequestContext, senderId string, state types.OfferState) ([]*types.ShareOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]*types.ShareOffer, 0)
	for _, offer := range r.Offers {
		if offer.SenderId == senderId && (state == "" || offer.State == state) {
			results = append(results, cloneOffer(offer))
		}
	}
	return results, nil
}

type Accounts struct {
	mu    sync.Mutex
	Known map[string]*types.Account
}

func NewAccounts(ids ...string) *Accounts {
	a := &Accounts{Known: make(map[string]*types.Account)}
	for _, id := range ids {
		a.Known[id] = &types.Account{Id: id}
	}
	return a
}

func (a *Accounts) Exists(ctx rcontext.RequestContext, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.Known[id]
	return ok, nil
}

func (a *Accounts) GetById(ctx rcontext.RequestContext, id string) (*types.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	account, ok := a.Known[id]
	if !ok {
		return nil, nil
	}
	c := *account
	return &c, nil
}

type Notification struct {
	UserId    string
	Kind      notifier.Kind
	Message   string
	RelatedId string
}

// RecordingSink captures notifications for assertions. Deliveries are async,
// so tests read through Sent() which takes the lock.
type RecordingSink struct {
	mu   sync.Mutex
	sent []Notification
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{sent: make([]Notification, 0)}
}

func (s *RecordingSink) Notify(ctx rcontext.RequestContext, userId string, kind notifier.Kind, message string, relatedId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Notification{UserId: userId, Kind: kind, Message: message, RelatedId: relatedId})
	return nil
}

func (s *RecordingSink) Sent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification{}, s.sent...)
}
