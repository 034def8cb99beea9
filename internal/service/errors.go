package service

import (
	"fmt"
	"strings"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
)

// BidTooLowError rejects a bid below the floor and carries the fresh minimum
// so the caller can re-prompt immediately.
type BidTooLowError struct {
	MinimumNextBid int
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low, minimum next bid is %d", e.MinimumNextBid)
}

// StateTransitionError rejects an illegal lifecycle move and carries the
// allowed next states.
type StateTransitionError struct {
	From    domain.AuctionState
	To      domain.AuctionState
	Allowed []domain.AuctionState
}

func (e *StateTransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, string(s))
	}

	return fmt.Sprintf("cannot transition from %v to %v, allowed: %v", e.From, e.To, strings.Join(allowed, ", "))
}
