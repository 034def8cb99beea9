package domain

import "time"

// Winner is a finalized outcome, distinct from a WINNING bid which is merely
// currently leading. Winners are immutable once created and unique per
// (prize, bidder); deleting one is the only way to undo a confirmation.
type Winner struct {
	ID         uint      `json:"id"`
	BidID      uint      `json:"bid_id"`
	PrizeID    uint      `json:"prize_id"`
	BidderID   uint      `json:"bidder_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}
