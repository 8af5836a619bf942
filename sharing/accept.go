package sharing

import (
	"mime"
	"net/url"
	"path"
	"sync"

	"github.com/getsentry/sentry-go"

	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/datastores"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/metrics"
	"github.com/promptvault/prompt-media-repo/notifier"
	"github.com/promptvault/prompt-media-repo/types"
	"github.com/promptvault/prompt-media-repo/util"
	"github.com/promptvault/prompt-media-repo/util/ids"
)

// Accept materializes the snapshot as a brand new prompt set owned by the
// acting user. Every version image is duplicated into recipient-scoped
// storage (copy-on-accept); a failed duplication falls back to the sender's
// URL for that version only, and the accept still succeeds. Blob copies for
// different versions run concurrently; the offer transitions exactly once,
// after all of them settle.
func (b *Broker) Accept(ctx rcontext.RequestContext, offerId string, actingUserId string) (*types.PromptSet, error) {
	offer, err := b.offers.GetById(ctx, offerId)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, common.ErrNotFound
	}
	if offer.State != types.OfferInTransit {
		return nil, common.ErrInvalidState
	}
	if offer.RecipientId != actingUserId {
		return nil, common.ErrUnauthorized
	}

	snapshot := offer.Snapshot
	now := util.NowMillis()
	newSet := &types.PromptSet{
		Id:         ids.NewUniqueId(),
		OwnerId:    actingUserId,
		Title:      snapshot.Title,
		Versions:   make([]*types.PromptVersion, len(snapshot.Versions)),
		CreationTs: now,
		UpdatedTs:  now,
	}

	newUrls := make([]string, len(snapshot.Versions))
	wg := &sync.WaitGroup{}
	for i, v := range snapshot.Versions {
		newSet.Versions[i] = &types.PromptVersion{
			Id:         ids.NewUniqueId(),
			Text:       v.Text,
			CreationTs: v.CreationTs,
		}
		if v.ImageUrl == "" {
			continue
		}

		i := i
		srcUrl := v.ImageUrl
		dstPath := datastores.ObjectPath(actingUserId, newSet.Versions[i].Id+extensionFor(srcUrl))
		wg.Add(1)
		task := func() {
			defer wg.Done()
			copied, err := datastores.Copy(ctx, b.blobs, srcUrl, dstPath, contentTypeFor(srcUrl))
			if err != nil {
				// Partial-failure policy: reuse the sender's URL for this
				// version rather than failing the whole accept. The recipient
				// then references storage they don't own - see Degraded
				// handling notes in DESIGN.md.
				ctx.Log.Warnf("Error copying blob for shared version, reusing original url: %v", err)
				sentry.CaptureException(err)
				newUrls[i] = srcUrl
				return
			}
			newUrls[i] = copied
		}
		if b.workers == nil || b.workers.Schedule(task) != nil {
			go task()
		}
	}
	wg.Wait()

	for i, v := range newSet.Versions {
		v.ImageUrl = newUrls[i]
	}

	if err = b.promptSets.Insert(ctx, newSet); err != nil {
		return nil, err
	}

	// Register the recipient's copies in their media index. Put is
	// idempotent, so a retried accept converges instead of double-counting.
	for _, v := range newSet.Versions {
		if v.ImageUrl == "" {
			continue
		}
		_, err := b.media.Put(ctx, v.ImageUrl, mediastore.PutMetadata{
			OwnerId:           actingUserId,
			SourcePromptSetId: newSet.Id,
			SourceVersionId:   v.Id,
		}, false)
		if err != nil {
			ctx.Log.Warn("Non-fatal error indexing copied media: ", err)
			sentry.CaptureException(err)
		}
	}

	if err = b.offers.UpdateState(ctx, offerId, types.OfferAccepted, util.NowMillis()); err != nil {
		return nil, err
	}
	metrics.SharesResolved.With(map[string]string{"state": string(types.OfferAccepted)}).Inc()

	b.notifyAsync(ctx, offer.SenderId, notifier.KindShareAccepted, "Your shared prompt set was accepted", offerId)
	return newSet, nil
}

func extensionFor(rawUrl string) string {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

func contentTypeFor(rawUrl string) string {
	return mime.TypeByExtension(extensionFor(rawUrl))
}
