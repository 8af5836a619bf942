package types

type OfferState string

const (
	OfferInTransit OfferState = "in_transit"
	OfferAccepted  OfferState = "accepted"
	OfferRejected  OfferState = "rejected"
)

// Terminal reports whether no further transition is permitted from the state.
func (s OfferState) Terminal() bool {
	return s == OfferAccepted || s == OfferRejected
}

type ShareOffer struct {
	Id          string
	SenderId    string
	RecipientId string
	State       OfferState
	Snapshot    *PromptSet
	CreationTs  int64
	RespondedTs int64 // zero until the offer reaches a terminal state
}
