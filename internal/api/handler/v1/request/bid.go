package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type PlaceBidRequest struct {
	PrizeID uint `json:"prize_id" binding:"required"`
	Amount  int  `json:"amount" binding:"required"`
}

func (req *PlaceBidRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PrizeID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Amount, validation.Required, validation.Min(1)),
	)
}
