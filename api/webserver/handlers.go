package webserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/promptvault/prompt-media-repo/archival"
	"github.com/promptvault/prompt-media-repo/common"
	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/mediastore"
	"github.com/promptvault/prompt-media-repo/types"
)

type handlers struct {
	deps *Dependencies
}

func (h *handlers) isAdmin(ctx rcontext.RequestContext, userId string) bool {
	account, err := h.deps.Accounts.GetById(ctx, userId)
	if err != nil || account == nil {
		return false
	}
	return account.Admin
}

func (h *handlers) listMedia(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	includeAll := r.URL.Query().Get("all") == "true"
	if includeAll && !h.isAdmin(ctx, userId) {
		return common.ErrUnauthorized
	}
	records, err := h.deps.Media.ListForOwner(ctx, userId, includeAll)
	if err != nil {
		return err
	}
	return records
}

func (h *handlers) syncMedia(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	if !h.isAdmin(ctx, userId) {
		return common.ErrUnauthorized
	}
	candidates := make([]mediastore.SourceCandidate, 0)
	if err := json.NewDecoder(r.Body).Decode(&candidates); err != nil {
		return common.ErrMalformed
	}
	result, err := h.deps.Media.SyncFromSource(ctx, candidates)
	if err != nil {
		return err
	}
	return result
}

type offerShareRequest struct {
	PromptSetId string `json:"promptSetId"`
	RecipientId string `json:"recipientId"`
}

func (h *handlers) offerShare(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	req := &offerShareRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return common.ErrMalformed
	}
	offer, err := h.deps.Broker.Offer(ctx, userId, req.PromptSetId, req.RecipientId)
	if err != nil {
		return err
	}
	return offer
}

func (h *handlers) listIncoming(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	offers, err := h.deps.Broker.ListIncoming(ctx, userId, types.OfferState(r.URL.Query().Get("state")))
	if err != nil {
		return err
	}
	return offers
}

func (h *handlers) listOutgoing(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	offers, err := h.deps.Broker.ListOutgoing(ctx, userId, types.OfferState(r.URL.Query().Get("state")))
	if err != nil {
		return err
	}
	return offers
}

func (h *handlers) getShare(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	offer, err := h.deps.Broker.GetOffer(ctx, mux.Vars(r)["offerId"], userId)
	if err != nil {
		return err
	}
	return offer
}

func (h *handlers) acceptShare(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	set, err := h.deps.Broker.Accept(ctx, mux.Vars(r)["offerId"], userId)
	if err != nil {
		return err
	}
	return set
}

func (h *handlers) rejectShare(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	if err := h.deps.Broker.Reject(ctx, mux.Vars(r)["offerId"], userId); err != nil {
		return err
	}
	return map[string]bool{"rejected": true}
}

type exportRequest struct {
	MediaIds []string `json:"mediaIds"`
}

func (h *handlers) exportArchive(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	req := &exportRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return common.ErrMalformed
	}

	admin := h.isAdmin(ctx, userId)
	records := make([]*types.MediaRecord, 0, len(req.MediaIds))
	for _, id := range req.MediaIds {
		record, err := h.deps.Media.GetById(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return common.ErrNotFound
		}
		if record.OwnerId != userId && !admin {
			return common.ErrUnauthorized
		}
		records = append(records, record)
	}

	return &streamResponse{
		contentType: "application/gzip",
		writeFn: func(w io.Writer) error {
			_, err := h.deps.Archives.Export(ctx, records, w)
			return err
		},
	}
}

// importArchive is the non-interactive HTTP flavor: the sticky decision is
// made up front via the onConflict query parameter. Interactive resolution is
// for embedders driving archival.Service directly.
func (h *handlers) importArchive(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	resolution := archival.ResolutionSkipAll
	if r.URL.Query().Get("onConflict") == "overwrite" {
		resolution = archival.ResolutionOverwriteAll
	}
	result, err := h.deps.Archives.Import(ctx, r.Body, userId, func(fileName string, preview []byte) (archival.Resolution, error) {
		return resolution, nil
	})
	if err != nil {
		return err
	}
	return result
}

func (h *handlers) writeBackup(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	includeAll := r.URL.Query().Get("all") == "true"
	if includeAll && !h.isAdmin(ctx, userId) {
		return common.ErrUnauthorized
	}
	return &streamResponse{
		contentType: "application/json",
		writeFn: func(w io.Writer) error {
			return h.deps.Archives.WriteBackup(ctx, userId, includeAll, w)
		},
	}
}

func (h *handlers) restoreBackup(r *http.Request, ctx rcontext.RequestContext, userId string) interface{} {
	if !h.isAdmin(ctx, userId) {
		return common.ErrUnauthorized
	}
	result, err := h.deps.Archives.RestoreBackup(ctx, r.Body)
	if err != nil {
		return err
	}
	return result
}
