package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateAuctionStateRequest struct {
	NewState string `json:"new_state" binding:"required"`
	// Force bypasses the lifecycle adjacency check for administrative
	// recovery.
	Force              bool `json:"force"`
	AutoConfirmWinners bool `json:"auto_confirm_winners"`
}

func (req *UpdateAuctionStateRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.NewState, validation.Required,
			validation.In("DRAFT", "TESTING", "PRELAUNCH", "LIVE", "CLOSED")),
	)
}

type ConfirmWinnerRequest struct {
	PrizeID          uint `json:"prize_id" binding:"required"`
	BidID            uint `json:"bid_id" binding:"required"`
	BidderID         uint `json:"bidder_id" binding:"required"`
	SendNotification bool `json:"send_notification"`
}

func (req *ConfirmWinnerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PrizeID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.BidID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.BidderID, validation.Required, validation.Min(uint(1))),
	)
}
