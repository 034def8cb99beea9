package response

import "github.com/schradoc/rgs-silent-auction-sub000/internal/domain"

type AuctionStateResponse struct {
	PreviousState    string                 `json:"previous_state"`
	Settings         domain.AuctionSettings `json:"settings"`
	WinnersConfirmed *int                   `json:"winners_confirmed,omitempty"`
}

type AuctionStatusResponse struct {
	Settings           domain.AuctionSettings   `json:"settings"`
	AllowedTransitions []string                 `json:"allowed_transitions"`
	RecentTransitions  []domain.StateTransition `json:"recent_transitions"`
}

type PrizeResponse struct {
	domain.Prize

	// MinimumNextBid is the display floor, computed outside any lock; the
	// processor recomputes the authoritative value at commit time.
	MinimumNextBid int `json:"minimum_next_bid"`
}

type RemoveWinnerResponse struct {
	Success bool `json:"success"`
}
