package sharing

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/patrickmn/go-cache"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/datastores"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/metrics"
	"github.com/promptvault/prompt-media-repo/notifier"
	"github.com/promptvault/prompt-media-repo/pool"
	"github.com/promptvault/prompt-media-repo/types"
	"github.com/promptvault/prompt-media-repo/util"
	"github.com/promptvault/prompt-media-repo/util/ids"
)

type OfferRepository interface {
	Insert(ctx rcontext.RequestContext, offer *types.ShareOffer) error
	UpdateState(ctx rcontext.RequestContext, offerId string, state types.OfferState, respondedTs int64) error
	GetById(ctx rcontext.RequestContext, id string) (*types.ShareOffer, error)
	ListByRecipient(ctx rcontext.RequestContext, recipientId string, state types.OfferState) ([]*types.ShareOffer, error)
	ListBySender(ctx rcontext.RequestContext, senderId string, state types.OfferState) ([]*types.ShareOffer, error)
}

type PromptSetRepository interface {
	GetById(ctx rcontext.RequestContext, id string) (*types.PromptSet, error)
	Insert(ctx rcontext.RequestContext, set *types.PromptSet) error
}

type AccountDirectory interface {
	Exists(ctx rcontext.RequestContext, id string) (bool, error)
}

// Broker runs the cross-account sharing handshake. An offer snapshots the
// prompt set at offer time; acceptance copies data (and blobs) into the
// recipient's ownership rather than aliasing the sender's.
type Broker struct {
	offers     OfferRepository
	promptSets PromptSetRepository
	accounts   AccountDirectory
	media      *mediastore.Store
	blobs      datastores.BlobStore
	sink       notifier.Sink
	workers    *pool.Queue

	accountCache *cache.Cache
}

func NewBroker(offers OfferRepository, promptSets PromptSetRepository, accounts AccountDirectory, media *mediastore.Store, blobs datastores.BlobStore, sink notifier.Sink, workers *pool.Queue) *Broker {
	return &Broker{
		offers:       offers,
		promptSets:   promptSets,
		accounts:     accounts,
		media:        media,
		blobs:        blobs,
		sink:         sink,
		workers:      workers,
		accountCache: cache.New(1*time.Minute, 2*time.Minute),
	}
}

// Offer snapshots the sender's prompt set and parks it in transit for the
// recipient. The snapshot is a value copy - later edits to the live set do
// not leak into the offer.
func (b *Broker) Offer(ctx rcontext.RequestContext, senderId string, promptSetId string, recipientId string) (*types.ShareOffer, error) {
	if recipientId == senderId {
		return nil, common.ErrUnauthorized
	}

	set, err := b.promptSets.GetById(ctx, promptSetId)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, common.ErrNotFound
	}
	if set.OwnerId != senderId {
		return nil, common.ErrUnauthorized
	}

	known, err := b.accountExists(ctx, recipientId)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, common.ErrNotFound
	}

	offer := &types.ShareOffer{
		Id:          ids.NewUniqueId(),
		SenderId:    senderId,
		RecipientId: recipientId,
		State:       types.OfferInTransit,
		Snapshot:    set.Clone(),
		CreationTs:  util.NowMillis(),
	}
	if err = b.offers.Insert(ctx, offer); err != nil {
		return nil, err
	}
	metrics.SharesOffered.Inc()

	b.notifyAsync(ctx, recipientId, notifier.KindShareReceived, "You received a shared prompt set: "+set.Title, offer.Id)
	return offer, nil
}

// Reject closes the offer without copying anything. Only the recipient of an
// in-transit offer may reject it.
func (b *Broker) Reject(ctx rcontext.RequestContext, offerId string, actingUserId string) error {
	offer, err := b.offers.GetById(ctx, offerId)
	if err != nil {
		return err
	}
	if offer == nil {
		return common.ErrNotFound
	}
	if offer.State != types.OfferInTransit {
		return common.ErrInvalidState
	}
	if offer.RecipientId != actingUserId {
		return common.ErrUnauthorized
	}

	if err = b.offers.UpdateState(ctx, offerId, types.OfferRejected, util.NowMillis()); err != nil {
		return err
	}
	metrics.SharesResolved.With(map[string]string{"state": string(types.OfferRejected)}).Inc()

	b.notifyAsync(ctx, offer.SenderId, notifier.KindShareRejected, "Your shared prompt set was declined", offerId)
	return nil
}

// GetOffer is readable by the two parties only.
func (b *Broker) GetOffer(ctx rcontext.RequestContext, offerId string, actingUserId string) (*types.ShareOffer, error) {
	offer, err := b.offers.GetById(ctx, offerId)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, common.ErrNotFound
	}
	if offer.SenderId != actingUserId && offer.RecipientId != actingUserId {
		return nil, common.ErrUnauthorized
	}
	return offer, nil
}

func (b *Broker) ListIncoming(ctx rcontext.RequestContext, userId string, state types.OfferState) ([]*types.ShareOffer, error) {
	return b.offers.ListByRecipient(ctx, userId, state)
}

func (b *Broker) ListOutgoing(ctx rcontext.RequestContext, userId string, state types.OfferState) ([]*types.ShareOffer, error) {
	return b.offers.ListBySender(ctx, userId, state)
}

func (b *Broker) accountExists(ctx rcontext.RequestContext, id string) (bool, error) {
	if _, ok := b.accountCache.Get(id); ok {
		return true, nil
	}
	exists, err := b.accounts.Exists(ctx, id)
	if err != nil {
		return false, err
	}
	if exists {
		b.accountCache.SetDefault(id, true)
	}
	return exists, nil
}

// notifyAsync must never fail or delay the transition that triggered it.
func (b *Broker) notifyAsync(ctx rcontext.RequestContext, userId string, kind notifier.Kind, message string, relatedId string) {
	task := func() {
		if err := b.sink.Notify(ctx, userId, kind, message, relatedId); err != nil {
			ctx.Log.Warn("Non-fatal error delivering notification: ", err)
			sentry.CaptureException(err)
		}
	}
	if b.workers == nil || b.workers.Schedule(task) != nil {
		go task()
	}
}
