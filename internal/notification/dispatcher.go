package notification

import "context"

type Event string

const (
	EventOutbid  Event = "OUTBID"
	EventWinning Event = "WINNING"
	EventWon     Event = "WON"
)

// Payload is the context delivered alongside an event. Delivery mechanics
// (email/SMS/WhatsApp rendering) belong to the downstream consumer.
type Payload struct {
	PrizeID        uint   `json:"prize_id"`
	PrizeName      string `json:"prize_name,omitempty"`
	Amount         int    `json:"amount,omitempty"`
	MinimumNextBid int    `json:"minimum_next_bid,omitempty"`
}

// Dispatcher is the fire-and-forget outbound side of the engine. Callers must
// never let a dispatch failure affect a committed bid: log and move on.
type Dispatcher interface {
	Notify(ctx context.Context, bidderID uint, event Event, payload Payload) error
}
