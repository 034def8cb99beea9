package repository

import (
	"context"
	"fmt"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository/dao"
)

var ErrSettingsNotFound = dao.ErrSettingsNotFound

type SettingsDAO interface {
	EnsureExists(ctx context.Context) error
	Get(ctx context.Context) (dao.AuctionSettings, error)
	UpdateState(ctx context.Context, settings dao.AuctionSettings, transition dao.StateTransition) (dao.AuctionSettings, error)
	ListTransitions(ctx context.Context, limit int) ([]dao.StateTransition, error)
}

type SettingsRepository struct {
	dao SettingsDAO
}

func NewSettingsRepository(dao SettingsDAO) *SettingsRepository {
	return &SettingsRepository{
		dao: dao,
	}
}

func (r *SettingsRepository) EnsureExists(ctx context.Context) error {
	if err := r.dao.EnsureExists(ctx); err != nil {
		return fmt.Errorf("r.dao.EnsureExists -> %w", err)
	}

	return nil
}

// Get always hits the store; the lifecycle gate must never be answered from
// a cached copy.
func (r *SettingsRepository) Get(ctx context.Context) (domain.AuctionSettings, error) {
	found, err := r.dao.Get(ctx)
	if err != nil {
		return domain.AuctionSettings{}, fmt.Errorf("r.dao.Get -> %w", err)
	}

	return settingsDaoToDomain(found), nil
}

func (r *SettingsRepository) UpdateState(ctx context.Context, settings domain.AuctionSettings, transition domain.StateTransition) (domain.AuctionSettings, error) {
	updated, err := r.dao.UpdateState(ctx,
		dao.AuctionSettings{
			ID:               settings.ID,
			AuctionState:     string(settings.AuctionState),
			IsAuctionOpen:    settings.IsAuctionOpen,
			AuctionStartTime: settings.AuctionStartTime,
			AuctionEndTime:   settings.AuctionEndTime,
		},
		dao.StateTransition{
			FromState: string(transition.FromState),
			ToState:   string(transition.ToState),
			Forced:    transition.Forced,
		},
	)
	if err != nil {
		return domain.AuctionSettings{}, fmt.Errorf("r.dao.UpdateState -> %w", err)
	}

	return settingsDaoToDomain(updated), nil
}

func (r *SettingsRepository) ListTransitions(ctx context.Context, limit int) ([]domain.StateTransition, error) {
	found, err := r.dao.ListTransitions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListTransitions -> %w", err)
	}

	transitions := make([]domain.StateTransition, 0, len(found))
	for _, t := range found {
		transitions = append(transitions, domain.StateTransition{
			ID:        t.ID,
			FromState: domain.AuctionState(t.FromState),
			ToState:   domain.AuctionState(t.ToState),
			Forced:    t.Forced,
			CreatedAt: t.CreatedAt,
		})
	}

	return transitions, nil
}

func settingsDaoToDomain(s dao.AuctionSettings) domain.AuctionSettings {
	return domain.AuctionSettings{
		ID:               s.ID,
		AuctionState:     domain.AuctionState(s.AuctionState),
		IsAuctionOpen:    s.IsAuctionOpen,
		AuctionStartTime: s.AuctionStartTime,
		AuctionEndTime:   s.AuctionEndTime,
		UpdatedAt:        s.UpdatedAt,
	}
}
