package repository

import (
	"context"
	"fmt"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository/dao"
)

var (
	ErrPrizeNotFound  = dao.ErrPrizeNotFound
	ErrBidNotFound    = dao.ErrBidNotFound
	ErrWriteConflict  = dao.ErrWriteConflict
	ErrAuctionNotLive = dao.ErrAuctionNotLive
	ErrBidderNotFound = dao.ErrBidderNotFound
)

type PrizeDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Prize, error)
	FindActive(ctx context.Context) ([]dao.Prize, error)
	CountActive(ctx context.Context) (int64, error)
}

type BidDAO interface {
	Commit(ctx context.Context, commit dao.BidCommit) (dao.Bid, error)
	FindByID(ctx context.Context, id uint) (dao.Bid, error)
	FindByPrizeID(ctx context.Context, prizeID uint) ([]dao.Bid, error)
	FindWinningByPrizeID(ctx context.Context, prizeID uint) ([]dao.Bid, error)
	UpdateStatus(ctx context.Context, bidID uint, status string) error
	UpdateStatusWhere(ctx context.Context, prizeID uint, fromStatus, toStatus string) (int64, error)
}

// BidCommit carries one validated bid placement into the store.
type BidCommit struct {
	Bid          domain.Bid
	DemoteBidIDs []uint
	// ExpectedHighest is the aggregate snapshot the caller validated against;
	// the commit aborts with ErrWriteConflict if the row moved past it.
	ExpectedHighest int
	NewHighest      int
}

type PrizeRepository struct {
	prizeDAO PrizeDAO
	bidDAO   BidDAO
}

func NewPrizeRepository(prizeDAO PrizeDAO, bidDAO BidDAO) *PrizeRepository {
	return &PrizeRepository{
		prizeDAO: prizeDAO,
		bidDAO:   bidDAO,
	}
}

func (r *PrizeRepository) FindByID(ctx context.Context, id uint) (domain.Prize, error) {
	found, err := r.prizeDAO.FindByID(ctx, id)
	if err != nil {
		return domain.Prize{}, fmt.Errorf("r.prizeDAO.FindByID -> %w", err)
	}

	return prizeDaoToDomain(found), nil
}

func (r *PrizeRepository) FindActive(ctx context.Context) ([]domain.Prize, error) {
	found, err := r.prizeDAO.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.prizeDAO.FindActive -> %w", err)
	}

	prizes := make([]domain.Prize, 0, len(found))
	for _, p := range found {
		prizes = append(prizes, prizeDaoToDomain(p))
	}

	return prizes, nil
}

func (r *PrizeRepository) CountActive(ctx context.Context) (int64, error) {
	count, err := r.prizeDAO.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.prizeDAO.CountActive -> %w", err)
	}

	return count, nil
}

func (r *PrizeRepository) CommitBid(ctx context.Context, commit BidCommit) (domain.Bid, error) {
	created, err := r.bidDAO.Commit(ctx, dao.BidCommit{
		Bid:             bidDomainToDao(commit.Bid),
		DemoteBidIDs:    commit.DemoteBidIDs,
		ExpectedHighest: commit.ExpectedHighest,
		NewHighest:      commit.NewHighest,
	})
	if err != nil {
		return domain.Bid{}, fmt.Errorf("r.bidDAO.Commit -> %w", err)
	}

	return bidDaoToDomain(created), nil
}

func (r *PrizeRepository) FindBidsByPrizeID(ctx context.Context, prizeID uint) ([]domain.Bid, error) {
	found, err := r.bidDAO.FindByPrizeID(ctx, prizeID)
	if err != nil {
		return nil, fmt.Errorf("r.bidDAO.FindByPrizeID -> %w", err)
	}

	return bidsDaoToDomain(found), nil
}

func (r *PrizeRepository) FindWinningBids(ctx context.Context, prizeID uint) ([]domain.Bid, error) {
	found, err := r.bidDAO.FindWinningByPrizeID(ctx, prizeID)
	if err != nil {
		return nil, fmt.Errorf("r.bidDAO.FindWinningByPrizeID -> %w", err)
	}

	return bidsDaoToDomain(found), nil
}

func prizeDaoToDomain(p dao.Prize) domain.Prize {
	return domain.Prize{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		MinimumBid:          p.MinimumBid,
		CurrentHighestBid:   p.CurrentHighestBid,
		MultiWinnerEligible: p.MultiWinnerEligible,
		MultiWinnerSlots:    p.MultiWinnerSlots,
		IsActive:            p.IsActive,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func bidDomainToDao(b domain.Bid) dao.Bid {
	return dao.Bid{
		ID:        b.ID,
		PrizeID:   b.PrizeID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bidDaoToDomain(b dao.Bid) domain.Bid {
	return domain.Bid{
		ID:        b.ID,
		PrizeID:   b.PrizeID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Status:    domain.BidStatus(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bidsDaoToDomain(found []dao.Bid) []domain.Bid {
	bids := make([]domain.Bid, 0, len(found))
	for _, b := range found {
		bids = append(bids, bidDaoToDomain(b))
	}

	return bids
}
