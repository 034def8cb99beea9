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

type AuctionService interface {
	GetSettings(ctx context.Context) (domain.AuctionSettings, error)
	GetTransitionLog(ctx context.Context, limit int) ([]domain.StateTransition, error)
	TransitionState(ctx context.Context, params service.TransitionParams) (service.TransitionResult, error)
}

type WinnerService interface {
	ConfirmWinner(ctx context.Context, prizeID, bidID, bidderID uint, notify bool) (domain.Winner, error)
	RemoveWinner(ctx context.Context, winnerID uint) error
}

type AdminHandler struct {
	auctionSvc AuctionService
	winnerSvc  WinnerService
}

func NewAdminHandler(auctionSvc AuctionService, winnerSvc WinnerService) *AdminHandler {
	return &AdminHandler{
		auctionSvc: auctionSvc,
		winnerSvc:  winnerSvc,
	}
}

const transitionLogTail = 20

// HandleGetAuctionState godoc
// @Summary      Get the auction lifecycle state
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.AuctionStatusResponse
// @Failure      500  {object}  response.Err
// @Router       /admin/auction-state [get]
// @Security     BearerAuth
func (h *AdminHandler) HandleGetAuctionState(ctx *gin.Context) {
	settings, err := h.auctionSvc.GetSettings(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetAuctionState -> h.auctionSvc.GetSettings -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	transitions, err := h.auctionSvc.GetTransitionLog(ctx.Request.Context(), transitionLogTail)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetAuctionState -> h.auctionSvc.GetTransitionLog -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	allowed := make([]string, 0)
	for _, state := range settings.AuctionState.AllowedTransitions() {
		allowed = append(allowed, string(state))
	}

	ctx.JSON(http.StatusOK, response.AuctionStatusResponse{
		Settings:           settings,
		AllowedTransitions: allowed,
		RecentTransitions:  transitions,
	})
}

// HandleUpdateAuctionState godoc
// @Summary      Transition the auction lifecycle state
// @Description  Moves the auction through DRAFT/TESTING/PRELAUNCH/LIVE/CLOSED. Illegal moves return the allowed next states; force bypasses the adjacency check. Closing with auto_confirm_winners runs the winner confirmation sweep.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.UpdateAuctionStateRequest  true  "transition details"
// @Success      200      {object}  response.AuctionStateResponse
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/auction-state [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleUpdateAuctionState(ctx *gin.Context) {
	var req request.UpdateAuctionStateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.auctionSvc.TransitionState(ctx.Request.Context(), service.TransitionParams{
		NewState:           domain.AuctionState(req.NewState),
		Force:              req.Force,
		AutoConfirmWinners: req.AutoConfirmWinners,
	})
	if err != nil {
		var transitionErr *service.StateTransitionError
		switch {
		case errors.As(err, &transitionErr):
			allowed := make([]string, 0, len(transitionErr.Allowed))
			for _, state := range transitionErr.Allowed {
				allowed = append(allowed, string(state))
			}
			response.RenderErr(ctx, response.ErrInvalidTransition(err, allowed))
		case errors.Is(err, service.ErrUnknownState), errors.Is(err, service.ErrNoActivePrizes):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateAuctionState -> h.auctionSvc.TransitionState -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.AuctionStateResponse{
		PreviousState:    string(result.PreviousState),
		Settings:         result.Settings,
		WinnersConfirmed: result.WinnersConfirmed,
	})
}

// HandleConfirmWinner godoc
// @Summary      Confirm a winning bid
// @Description  Finalizes a leading bid into an immutable Winner record. The bid is re-validated: confirming one that has since been outbid fails with STALE_BID.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.ConfirmWinnerRequest  true  "winner details"
// @Success      200      {object}  domain.Winner
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/winners [post]
// @Security     BearerAuth
func (h *AdminHandler) HandleConfirmWinner(ctx *gin.Context) {
	var req request.ConfirmWinnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	winner, err := h.winnerSvc.ConfirmWinner(ctx.Request.Context(), req.PrizeID, req.BidID, req.BidderID, req.SendNotification)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyConfirmed):
			response.RenderErr(ctx, response.ErrAlreadyConfirmed())
		case errors.Is(err, service.ErrStaleBid):
			response.RenderErr(ctx, response.ErrStaleBid())
		case errors.Is(err, service.ErrBidNotFound):
			response.RenderErr(ctx, response.ErrNotFound("bid", "bidID", req.BidID))
		case errors.Is(err, service.ErrBidderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("bidder", "bidderID", req.BidderID))
		case errors.Is(err, service.ErrBidMismatch):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleConfirmWinner -> h.winnerSvc.ConfirmWinner -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, winner)
}

// HandleRemoveWinner godoc
// @Summary      Remove a confirmed winner
// @Description  Hard-deletes a Winner record to undo a confirmation. The underlying bid is untouched.
// @Tags         admin
// @Produce      json
// @Param        winnerId  query     int  true  "Winner ID"
// @Success      200       {object}  response.RemoveWinnerResponse
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /admin/winners [delete]
// @Security     BearerAuth
func (h *AdminHandler) HandleRemoveWinner(ctx *gin.Context) {
	winnerID, err := strconv.ParseUint(ctx.Query("winnerId"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid winner ID: %w", err)))
		return
	}

	if err := h.winnerSvc.RemoveWinner(ctx.Request.Context(), uint(winnerID)); err != nil {
		if errors.Is(err, service.ErrWinnerNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("winner", "winnerID", winnerID))
			return
		}

		err = fmt.Errorf("v1.HandleRemoveWinner -> h.winnerSvc.RemoveWinner -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.RemoveWinnerResponse{Success: true})
}
