package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher records events instead of delivering them. Used when no redis
// endpoint is configured (local development, tests).
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) Notify(_ context.Context, bidderID uint, event Event, payload Payload) error {
	zap.L().Info("notification dispatched",
		zap.Uint("bidder_id", bidderID),
		zap.String("event", string(event)),
		zap.Uint("prize_id", payload.PrizeID),
		zap.Int("amount", payload.Amount),
	)

	return nil
}
