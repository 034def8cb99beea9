package domain

import "time"

type BidStatus string

const (
	// BidStatusWinning marks a bid currently inside the leading set of its prize.
	BidStatusWinning BidStatus = "WINNING"
	// BidStatusOutbid marks a bid displaced from the leading set by a later bid.
	BidStatusOutbid BidStatus = "OUTBID"
	// BidStatusWon and BidStatusLost are terminal statuses applied once the
	// prize is finalized.
	BidStatusWon  BidStatus = "WON"
	BidStatusLost BidStatus = "LOST"
)

func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusWinning, BidStatusOutbid, BidStatusWon, BidStatusLost:
		return true
	}

	return false
}

// IsTerminal reports whether the status can never change again.
func (s BidStatus) IsTerminal() bool {
	return s == BidStatusWon || s == BidStatusLost
}

type Bid struct {
	ID        uint      `json:"id"`
	PrizeID   uint      `json:"prize_id"`
	BidderID  uint      `json:"bidder_id"`
	Amount    int       `json:"amount"`
	Status    BidStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
