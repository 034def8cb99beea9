package repository

import (
	"context"
	"fmt"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository/dao"
)

var (
	ErrWinnerExists   = dao.ErrWinnerExists
	ErrWinnerNotFound = dao.ErrWinnerNotFound
)

type WinnerDAO interface {
	InsertConfirmed(ctx context.Context, winner dao.Winner) (dao.Winner, error)
	FindByID(ctx context.Context, id uint) (dao.Winner, error)
	FindByPrizeAndBidder(ctx context.Context, prizeID, bidderID uint) (dao.Winner, error)
	CountByPrizeID(ctx context.Context, prizeID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type WinnerRepository struct {
	dao    WinnerDAO
	bidDAO BidDAO
}

func NewWinnerRepository(dao WinnerDAO, bidDAO BidDAO) *WinnerRepository {
	return &WinnerRepository{
		dao:    dao,
		bidDAO: bidDAO,
	}
}

func (r *WinnerRepository) FindBidByID(ctx context.Context, bidID uint) (domain.Bid, error) {
	found, err := r.bidDAO.FindByID(ctx, bidID)
	if err != nil {
		return domain.Bid{}, fmt.Errorf("r.bidDAO.FindByID -> %w", err)
	}

	return bidDaoToDomain(found), nil
}

// InsertConfirmed persists the finalized outcome and flips the winning bid to
// WON. ErrWinnerExists surfaces the (prize, bidder) uniqueness invariant.
func (r *WinnerRepository) InsertConfirmed(ctx context.Context, winner domain.Winner) (domain.Winner, error) {
	created, err := r.dao.InsertConfirmed(ctx, dao.Winner{
		BidID:      winner.BidID,
		PrizeID:    winner.PrizeID,
		BidderID:   winner.BidderID,
		AcceptedAt: winner.AcceptedAt,
	})
	if err != nil {
		return domain.Winner{}, fmt.Errorf("r.dao.InsertConfirmed -> %w", err)
	}

	return winnerDaoToDomain(created), nil
}

func (r *WinnerRepository) FindByID(ctx context.Context, id uint) (domain.Winner, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return winnerDaoToDomain(found), nil
}

func (r *WinnerRepository) FindByPrizeAndBidder(ctx context.Context, prizeID, bidderID uint) (domain.Winner, error) {
	found, err := r.dao.FindByPrizeAndBidder(ctx, prizeID, bidderID)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("r.dao.FindByPrizeAndBidder -> %w", err)
	}

	return winnerDaoToDomain(found), nil
}

func (r *WinnerRepository) CountByPrizeID(ctx context.Context, prizeID uint) (int64, error) {
	count, err := r.dao.CountByPrizeID(ctx, prizeID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountByPrizeID -> %w", err)
	}

	return count, nil
}

func (r *WinnerRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// RetireOutbidBids marks every remaining OUTBID bid on the prize LOST; used
// by the close-time sweep once the prize's outcome is settled.
func (r *WinnerRepository) RetireOutbidBids(ctx context.Context, prizeID uint) (int64, error) {
	moved, err := r.bidDAO.UpdateStatusWhere(ctx, prizeID, string(domain.BidStatusOutbid), string(domain.BidStatusLost))
	if err != nil {
		return 0, fmt.Errorf("r.bidDAO.UpdateStatusWhere -> %w", err)
	}

	return moved, nil
}

func winnerDaoToDomain(w dao.Winner) domain.Winner {
	return domain.Winner{
		ID:         w.ID,
		BidID:      w.BidID,
		PrizeID:    w.PrizeID,
		BidderID:   w.BidderID,
		AcceptedAt: w.AcceptedAt,
	}
}
