package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/api/handler/v1/request"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/api/handler/v1/response"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/service"
)

type BidService interface {
	PlaceBid(ctx context.Context, prizeID, bidderID uint, amount int) (domain.Bid, error)
	GetBidsByPrizeID(ctx context.Context, prizeID uint) ([]domain.Bid, error)
	GetActivePrizes(ctx context.Context) ([]domain.Prize, error)
}

type BidHandler struct {
	svc BidService
}

func NewBidHandler(svc BidService) *BidHandler {
	return &BidHandler{
		svc: svc,
	}
}

// HandlePlaceBid godoc
// @Summary      Place a bid on a prize
// @Description  Validates the bid against the live auction gate and the prize's current floor, then commits it atomically. A rejected bid carries the fresh minimum so the bidder can retry immediately.
// @Tags         bids
// @Accept       json
// @Produce      json
// @Param        request  body      request.PlaceBidRequest  true  "bid details"
// @Success      200      {object}  domain.Bid
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      503      {object}  response.Err
// @Router       /bids [post]
// @Security     BearerAuth
func (h *BidHandler) HandlePlaceBid(ctx *gin.Context) {
	bidderID, respErr := getBidderID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.PlaceBidRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	bid, err := h.svc.PlaceBid(ctx.Request.Context(), req.PrizeID, bidderID, req.Amount)
	if err != nil {
		var tooLow *service.BidTooLowError
		switch {
		case errors.As(err, &tooLow):
			response.RenderErr(ctx, response.ErrBidTooLow(tooLow.MinimumNextBid))
		case errors.Is(err, service.ErrAuctionNotLive):
			response.RenderErr(ctx, response.ErrAuctionNotLive())
		case errors.Is(err, service.ErrPrizeInactive):
			response.RenderErr(ctx, response.ErrPrizeInactive())
		case errors.Is(err, service.ErrPrizeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("prize", "prizeID", req.PrizeID))
		case errors.Is(err, service.ErrInvalidAmount):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrLockTimeout):
			response.RenderErr(ctx, response.ErrLockTimeout())
		default:
			err = fmt.Errorf("v1.HandlePlaceBid -> h.svc.PlaceBid -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, bid)
}

// HandleGetBids godoc
// @Summary      List bids for a prize
// @Description  Returns every bid on the prize with its status, best first, for UI and audit.
// @Tags         bids
// @Produce      json
// @Param        prizeId  query     int  true  "Prize ID"
// @Success      200      {array}   domain.Bid
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /bids [get]
// @Security     BearerAuth
func (h *BidHandler) HandleGetBids(ctx *gin.Context) {
	prizeID, err := strconv.ParseUint(ctx.Query("prizeId"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid prize ID: %w", err)))
		return
	}

	bids, err := h.svc.GetBidsByPrizeID(ctx.Request.Context(), uint(prizeID))
	if err != nil {
		if errors.Is(err, service.ErrPrizeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("prize", "prizeID", prizeID))
			return
		}

		err = fmt.Errorf("v1.HandleGetBids -> h.svc.GetBidsByPrizeID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, bids)
}

// HandleGetPrizes godoc
// @Summary      List active prizes
// @Description  Returns active prizes with their display floor. The floor shown here is advisory; the processor recomputes it under the prize lock at commit time.
// @Tags         prizes
// @Produce      json
// @Success      200  {array}   response.PrizeResponse
// @Failure      500  {object}  response.Err
// @Router       /prizes [get]
// @Security     BearerAuth
func (h *BidHandler) HandleGetPrizes(ctx *gin.Context) {
	prizes, err := h.svc.GetActivePrizes(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetPrizes -> h.svc.GetActivePrizes -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	result := make([]response.PrizeResponse, 0, len(prizes))
	for _, prize := range prizes {
		result = append(result, response.PrizeResponse{
			Prize:          prize,
			MinimumNextBid: domain.MinimumNextBid(prize.CurrentHighestBid, prize.MinimumBid),
		})
	}

	ctx.JSON(http.StatusOK, result)
}
