package repository

import (
	"context"
	"fmt"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository/dao"
)

type BidderDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Bidder, error)
}

type BidderRepository struct {
	dao BidderDAO
}

func NewBidderRepository(dao BidderDAO) *BidderRepository {
	return &BidderRepository{
		dao: dao,
	}
}

func (r *BidderRepository) FindByID(ctx context.Context, id uint) (domain.Bidder, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Bidder{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return domain.Bidder{
		ID:        found.ID,
		Email:     found.Email,
		Name:      found.Name,
		Phone:     found.Phone,
		Role:      found.Role,
		NotifyVia: domain.NotificationChannel(found.NotifyVia),
		CreatedAt: found.CreatedAt,
	}, nil
}
