package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes surfaced to clients. The UI keys its re-prompt behavior off
// these, so they are part of the API contract.
const (
	CodeBidTooLow         = "BID_TOO_LOW"
	CodeAuctionNotLive    = "AUCTION_NOT_LIVE"
	CodePrizeInactive     = "PRIZE_INACTIVE"
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
	CodeAlreadyConfirmed  = "ALREADY_CONFIRMED"
	CodeStaleBid          = "STALE_BID"
	CodeLockTimeout       = "LOCK_TIMEOUT"
)

type Err struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	ErrorMsg   string `json:"error"`

	// MinimumBid accompanies BID_TOO_LOW so the caller can retry immediately
	// against the fresh floor.
	MinimumBid int `json:"minimum_bid,omitempty"`
	// AllowedTransitions accompanies INVALID_STATE_TRANSITION.
	AllowedTransitions []string `json:"allowed_transitions,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorMsg
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.StatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		ErrorMsg:   err.Error(),
	}
}

func ErrNotFound(what, key string, value interface{}) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		ErrorMsg:   fmt.Sprintf("%v not found by %v (%v)", what, key, value),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		ErrorMsg:   err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		StatusCode: http.StatusInternalServerError,
		ErrorMsg:   "internal server error",
	}
}

func ErrBidTooLow(minimumBid int) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		Code:       CodeBidTooLow,
		ErrorMsg:   fmt.Sprintf("bid too low, minimum next bid is %v", minimumBid),
		MinimumBid: minimumBid,
	}
}

func ErrAuctionNotLive() *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Code:       CodeAuctionNotLive,
		ErrorMsg:   "the auction is not currently accepting bids",
	}
}

func ErrPrizeInactive() *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Code:       CodePrizeInactive,
		ErrorMsg:   "this prize is not active",
	}
}

func ErrInvalidTransition(err error, allowed []string) *Err {
	return &Err{
		StatusCode:         http.StatusBadRequest,
		Code:               CodeInvalidTransition,
		ErrorMsg:           err.Error(),
		AllowedTransitions: allowed,
	}
}

func ErrAlreadyConfirmed() *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Code:       CodeAlreadyConfirmed,
		ErrorMsg:   "a winner is already confirmed for this prize and bidder",
	}
}

func ErrStaleBid() *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		Code:       CodeStaleBid,
		ErrorMsg:   "the bid is no longer winning; refresh and try again",
	}
}

func ErrLockTimeout() *Err {
	return &Err{
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodeLockTimeout,
		ErrorMsg:   "the prize is busy, please retry",
	}
}
