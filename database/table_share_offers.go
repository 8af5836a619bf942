package database

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/promptvault/prompt-media-repo/common/rcontext"
	"github.com/promptvault/prompt-media-repo/types"
)

const insertShareOffer = "INSERT INTO share_offers (offer_id, sender_id, recipient_id, state, snapshot, creation_ts, responded_ts) VALUES ($1, $2, $3, $4, $5, $6, $7);"
const updateShareOfferState = "UPDATE share_offers SET state = $2, responded_ts = $3 WHERE offer_id = $1;"
const selectShareOfferById = "SELECT offer_id, sender_id, recipient_id, state, snapshot, creation_ts, responded_ts FROM share_offers WHERE offer_id = $1;"
const selectShareOffersByRecipient = "SELECT offer_id, sender_id, recipient_id, state, snapshot, creation_ts, responded_ts FROM share_offers WHERE recipient_id = $1 AND ($2 = '' OR state = $2) ORDER BY creation_ts DESC;"
const selectShareOffersBySender = "SELECT offer_id, sender_id, recipient_id, state, snapshot, creation_ts, responded_ts FROM share_offers WHERE sender_id = $1 AND ($2 = '' OR state = $2) ORDER BY creation_ts DESC;"

type shareOffersTableStatements struct {
	insertShareOffer             *sql.Stmt
	updateShareOfferState        *sql.Stmt
	selectShareOfferById         *sql.Stmt
	selectShareOffersByRecipient *sql.Stmt
	selectShareOffersBySender    *sql.Stmt
}

type ShareOffersTable struct {
	statements *shareOffersTableStatements
}

func prepareShareOffersTable(db *sql.DB) (*ShareOffersTable, error) {
	var err error
	stmts := &shareOffersTableStatements{}

	if stmts.insertShareOffer, err = db.Prepare(insertShareOffer); err != nil {
		return nil, errors.New("error preparing insertShareOffer: " + err.Error())
	}
	if stmts.updateShareOfferState, err = db.Prepare(updateShareOfferState); err != nil {
		return nil, errors.New("error preparing updateShareOfferState: " + err.Error())
	}
	if stmts.selectShareOfferById, err = db.Prepare(selectShareOfferById); err != nil {
		return nil, errors.New("error preparing selectShareOfferById: " + err.Error())
	}
	if stmts.selectShareOffersByRecipient, err = db.Prepare(selectShareOffersByRecipient); err != nil {
		return nil, errors.New("error preparing selectShareOffersByRecipient: " + err.Error())
	}
	if stmts.selectShareOffersBySender, err = db.Prepare(selectShareOffersBySender); err != nil {
		return nil, errors.New("error preparing selectShareOffersBySender: " + err.Error())
	}

	return &ShareOffersTable{statements: stmts}, nil
}

func (t *ShareOffersTable) Insert(ctx rcontext.RequestContext, offer *types.ShareOffer) error {
	snapshot, err := json.Marshal(offer.Snapshot)
	if err != nil {
		return err
	}
	_, err = t.statements.insertShareOffer.ExecContext(ctx, offer.Id, offer.SenderId, offer.RecipientId, string(offer.State), snapshot, offer.CreationTs, offer.RespondedTs)
	return err
}

// UpdateState stamps the terminal state and response time. Snapshot and
// party columns never change after insert.
func (t *ShareOffersTable) UpdateState(ctx rcontext.RequestContext, offerId string, state types.OfferState, respondedTs int64) error {
	_, err := t.statements.updateShareOfferState.ExecContext(ctx, offerId, string(state), respondedTs)
	return err
}

func (t *ShareOffersTable) GetById(ctx rcontext.RequestContext, id string) (*types.ShareOffer, error) {
	row := t.statements.selectShareOfferById.QueryRowContext(ctx, id)
	offer, err := scanShareOffer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (t *ShareOffersTable) ListByRecipient(ctx rcontext.RequestContext, recipientId string, state types.OfferState) ([]*types.ShareOffer, error) {
	return t.scanOffers(t.statements.selectShareOffersByRecipient.QueryContext(ctx, recipientId, string(state)))
}

func (t *ShareOffersTable) ListBySender(ctx rcontext.RequestContext, senderId string, state types.OfferState) ([]*types.ShareOffer, error) {
	return t.scanOffers(t.statements.selectShareOffersBySender.QueryContext(ctx, senderId, string(state)))
}

func (t *ShareOffersTable) scanOffers(rows *sql.Rows, err error) ([]*types.ShareOffer, error) {
	results := make([]*types.ShareOffer, 0)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return results, nil
		}
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		offer, err := scanShareOffer(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, offer)
	}

	return results, rows.Err()
}

func scanShareOffer(scan func(dest ...interface{}) error) (*types.ShareOffer, error) {
	offer := &types.ShareOffer{}
	var state string
	var snapshot []byte
	if err := scan(&offer.Id, &offer.SenderId, &offer.RecipientId, &state, &snapshot, &offer.CreationTs, &offer.RespondedTs); err != nil {
		return nil, err
	}
	offer.State = types.OfferState(state)
	if len(snapshot) > 0 {
		offer.Snapshot = &types.PromptSet{}
		if err := json.Unmarshal(snapshot, offer.Snapshot); err != nil {
			return nil, err
		}
	}
	return offer, nil
}
