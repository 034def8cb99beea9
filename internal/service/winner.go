package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/notification"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository"
)

var (
	ErrBidNotFound    = repository.ErrBidNotFound
	ErrWinnerNotFound = repository.ErrWinnerNotFound
	ErrBidderNotFound = repository.ErrBidderNotFound

	ErrAlreadyConfirmed = errors.New("winner already confirmed for this prize and bidder")
	// ErrStaleBid rejects confirmation of a bid that is no longer in the
	// leading set; the admin view that proposed it was out of date.
	ErrStaleBid    = errors.New("bid is no longer winning")
	ErrBidMismatch = errors.New("bid does not belong to the given prize and bidder")
)

type WinnerRepository interface {
	FindBidByID(ctx context.Context, bidID uint) (domain.Bid, error)
	InsertConfirmed(ctx context.Context, winner domain.Winner) (domain.Winner, error)
	FindByID(ctx context.Context, id uint) (domain.Winner, error)
	FindByPrizeAndBidder(ctx context.Context, prizeID, bidderID uint) (domain.Winner, error)
	CountByPrizeID(ctx context.Context, prizeID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
	RetireOutbidBids(ctx context.Context, prizeID uint) (int64, error)
}

type PrizeReader interface {
	FindByID(ctx context.Context, id uint) (domain.Prize, error)
	FindActive(ctx context.Context) ([]domain.Prize, error)
	FindWinningBids(ctx context.Context, prizeID uint) ([]domain.Bid, error)
}

type BidderReader interface {
	FindByID(ctx context.Context, id uint) (domain.Bidder, error)
}

// WinnerService finalizes leading bids into immutable Winner records,
// individually or in the close-time sweep.
type WinnerService struct {
	repo       WinnerRepository
	prizeRepo  PrizeReader
	bidderRepo BidderReader
	dispatcher notification.Dispatcher
}

func NewWinnerService(repo WinnerRepository, prizeRepo PrizeReader, bidderRepo BidderReader, dispatcher notification.Dispatcher) *WinnerService {
	return &WinnerService{
		repo:       repo,
		prizeRepo:  prizeRepo,
		bidderRepo: bidderRepo,
		dispatcher: dispatcher,
	}
}

// ConfirmWinner finalizes one leading bid. The bid is re-validated at
// confirmation time: confirming a bid that has since been outbid fails with
// ErrStaleBid rather than crowning a displaced bidder from a stale view.
func (s *WinnerService) ConfirmWinner(ctx context.Context, prizeID, bidID, bidderID uint, notify bool) (domain.Winner, error) {
	bid, err := s.repo.FindBidByID(ctx, bidID)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("s.repo.FindBidByID -> %w", err)
	}
	if bid.PrizeID != prizeID || bid.BidderID != bidderID {
		return domain.Winner{}, ErrBidMismatch
	}

	// A bidder removed after bidding must not be crowned.
	if _, err = s.bidderRepo.FindByID(ctx, bidderID); err != nil {
		if errors.Is(err, ErrBidderNotFound) {
			return domain.Winner{}, ErrBidderNotFound
		}

		return domain.Winner{}, fmt.Errorf("s.bidderRepo.FindByID -> %w", err)
	}

	if _, err = s.repo.FindByPrizeAndBidder(ctx, prizeID, bidderID); err == nil {
		return domain.Winner{}, ErrAlreadyConfirmed
	} else if !errors.Is(err, ErrWinnerNotFound) {
		return domain.Winner{}, fmt.Errorf("s.repo.FindByPrizeAndBidder -> %w", err)
	}

	if bid.Status != domain.BidStatusWinning {
		return domain.Winner{}, ErrStaleBid
	}

	winner, err := s.repo.InsertConfirmed(ctx, domain.Winner{
		BidID:      bidID,
		PrizeID:    prizeID,
		BidderID:   bidderID,
		AcceptedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrWinnerExists) {
			return domain.Winner{}, ErrAlreadyConfirmed
		}

		return domain.Winner{}, fmt.Errorf("s.repo.InsertConfirmed -> %w", err)
	}

	if notify {
		s.notifyWon(bid, s.prizeName(ctx, prizeID))
	}

	return winner, nil
}

// prizeName is best-effort enrichment for the WON payload; a lookup failure
// never blocks confirmation.
func (s *WinnerService) prizeName(ctx context.Context, prizeID uint) string {
	prize, err := s.prizeRepo.FindByID(ctx, prizeID)
	if err != nil {
		return ""
	}

	return prize.Name
}

// AutoConfirmSweep finalizes every active prize that has a leading bid and no
// Winner yet. Prizes are processed independently: a failure on one is logged
// and the sweep moves on. Returns how many Winners were created.
func (s *WinnerService) AutoConfirmSweep(ctx context.Context) (int, error) {
	prizes, err := s.prizeRepo.FindActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.prizeRepo.FindActive -> %w", err)
	}

	confirmed := 0
	for _, prize := range prizes {
		confirmed += s.sweepPrize(ctx, prize)
	}

	return confirmed, nil
}

func (s *WinnerService) sweepPrize(ctx context.Context, prize domain.Prize) int {
	winning, err := s.prizeRepo.FindWinningBids(ctx, prize.ID)
	if err != nil {
		zap.L().Error("sweep: failed to load winning bids",
			zap.Uint("prize_id", prize.ID), zap.Error(err))

		return 0
	}
	if len(winning) == 0 {
		return 0
	}

	confirmed := 0
	for _, bid := range winning {
		if _, err = s.repo.FindByPrizeAndBidder(ctx, prize.ID, bid.BidderID); err == nil {
			continue
		} else if !errors.Is(err, ErrWinnerNotFound) {
			zap.L().Error("sweep: failed to check existing winner",
				zap.Uint("prize_id", prize.ID), zap.Uint("bidder_id", bid.BidderID), zap.Error(err))

			continue
		}

		if _, err = s.repo.InsertConfirmed(ctx, domain.Winner{
			BidID:      bid.ID,
			PrizeID:    prize.ID,
			BidderID:   bid.BidderID,
			AcceptedAt: time.Now().UTC(),
		}); err != nil {
			if !errors.Is(err, repository.ErrWinnerExists) {
				zap.L().Error("sweep: failed to confirm winner",
					zap.Uint("prize_id", prize.ID), zap.Uint("bid_id", bid.ID), zap.Error(err))
			}

			continue
		}

		confirmed++
		s.notifyWon(bid, prize.Name)
	}

	if _, err = s.repo.RetireOutbidBids(ctx, prize.ID); err != nil {
		zap.L().Error("sweep: failed to retire outbid bids",
			zap.Uint("prize_id", prize.ID), zap.Error(err))
	}

	return confirmed
}

// RemoveWinner undoes a confirmation by hard-deleting the Winner row. The
// underlying bid is left untouched.
func (s *WinnerService) RemoveWinner(ctx context.Context, winnerID uint) error {
	if err := s.repo.Delete(ctx, winnerID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *WinnerService) notifyWon(bid domain.Bid, prizeName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		err := s.dispatcher.Notify(ctx, bid.BidderID, notification.EventWon, notification.Payload{
			PrizeID:   bid.PrizeID,
			PrizeName: prizeName,
			Amount:    bid.Amount,
		})
		if err != nil {
			zap.L().Warn("failed to dispatch WON notification",
				zap.Uint("bidder_id", bid.BidderID),
				zap.Uint("prize_id", bid.PrizeID),
				zap.Error(err))
		}
	}()
}
