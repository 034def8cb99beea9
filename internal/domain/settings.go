package domain

import "time"

type AuctionState string

const (
	AuctionStateDraft     AuctionState = "DRAFT"
	AuctionStateTesting   AuctionState = "TESTING"
	AuctionStatePrelaunch AuctionState = "PRELAUNCH"
	AuctionStateLive      AuctionState = "LIVE"
	AuctionStateClosed    AuctionState = "CLOSED"
)

// allowedTransitions is the adjacency set of the auction lifecycle. Anything
// outside it requires the administrative force flag.
var allowedTransitions = map[AuctionState][]AuctionState{
	AuctionStateDraft:     {AuctionStateTesting, AuctionStatePrelaunch},
	AuctionStateTesting:   {AuctionStateDraft, AuctionStatePrelaunch},
	AuctionStatePrelaunch: {AuctionStateTesting, AuctionStateLive},
	AuctionStateLive:      {AuctionStateClosed},
	AuctionStateClosed:    {AuctionStateLive},
}

func (s AuctionState) IsValid() bool {
	_, ok := allowedTransitions[s]

	return ok
}

func (s AuctionState) AllowedTransitions() []AuctionState {
	return allowedTransitions[s]
}

func (s AuctionState) CanTransitionTo(next AuctionState) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// AuctionSettings is the singleton lifecycle record gating every bid.
type AuctionSettings struct {
	ID           uint         `json:"id"`
	AuctionState AuctionState `json:"auction_state"`
	// IsAuctionOpen is derived: true iff AuctionState is LIVE.
	IsAuctionOpen    bool       `json:"is_auction_open"`
	AuctionStartTime *time.Time `json:"auction_start_time,omitempty"`
	AuctionEndTime   *time.Time `json:"auction_end_time,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// StateTransition is one immutable audit-log entry for a lifecycle move.
type StateTransition struct {
	ID        uint         `json:"id"`
	FromState AuctionState `json:"from_state"`
	ToState   AuctionState `json:"to_state"`
	Forced    bool         `json:"forced"`
	CreatedAt time.Time    `json:"created_at"`
}
