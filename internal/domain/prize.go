package domain

import "time"

type Prize struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	MinimumBid int `json:"minimum_bid"`
	// CurrentHighestBid is the denormalized amount of the highest WINNING bid
	// (0 if none). It is written in the same transaction as the bid it
	// reflects, never recomputed lazily in the hot path.
	CurrentHighestBid int `json:"current_highest_bid"`

	MultiWinnerEligible bool `json:"multi_winner_eligible"`
	// MultiWinnerSlots is the leading-set capacity for multi-winner prizes.
	// 0 means unlimited.
	MultiWinnerSlots int `json:"multi_winner_slots"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotCapacity returns the size of the leading set: 1 for regular prizes,
// the configured slot count for multi-winner prizes, 0 for unlimited.
func (p Prize) SlotCapacity() int {
	if !p.MultiWinnerEligible {
		return 1
	}

	return p.MultiWinnerSlots
}
