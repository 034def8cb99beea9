package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository"
)

var (
	ErrSettingsNotFound = repository.ErrSettingsNotFound

	ErrUnknownState   = errors.New("unknown auction state")
	ErrNoActivePrizes = errors.New("cannot go live without at least one active prize")
)

type SettingsRepository interface {
	EnsureExists(ctx context.Context) error
	Get(ctx context.Context) (domain.AuctionSettings, error)
	UpdateState(ctx context.Context, settings domain.AuctionSettings, transition domain.StateTransition) (domain.AuctionSettings, error)
	ListTransitions(ctx context.Context, limit int) ([]domain.StateTransition, error)
}

type PrizeCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// WinnerSweeper finalizes outstanding leading bids when the auction closes.
type WinnerSweeper interface {
	AutoConfirmSweep(ctx context.Context) (int, error)
}

// AuctionService drives the global lifecycle: DRAFT, TESTING, PRELAUNCH,
// LIVE, CLOSED. Every transition is audited; the force flag bypasses the
// adjacency check for administrative recovery.
type AuctionService struct {
	repo      SettingsRepository
	prizeRepo PrizeCounter
	sweeper   WinnerSweeper
}

func NewAuctionService(repo SettingsRepository, prizeRepo PrizeCounter, sweeper WinnerSweeper) *AuctionService {
	return &AuctionService{
		repo:      repo,
		prizeRepo: prizeRepo,
		sweeper:   sweeper,
	}
}

type TransitionParams struct {
	NewState           domain.AuctionState
	Force              bool
	AutoConfirmWinners bool
}

type TransitionResult struct {
	PreviousState    domain.AuctionState
	Settings         domain.AuctionSettings
	WinnersConfirmed *int
}

// EnsureSettings seeds the singleton settings row; called once at startup.
func (s *AuctionService) EnsureSettings(ctx context.Context) error {
	if err := s.repo.EnsureExists(ctx); err != nil {
		return fmt.Errorf("s.repo.EnsureExists -> %w", err)
	}

	return nil
}

func (s *AuctionService) GetSettings(ctx context.Context) (domain.AuctionSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return domain.AuctionSettings{}, fmt.Errorf("s.repo.Get -> %w", err)
	}

	return settings, nil
}

func (s *AuctionService) GetTransitionLog(ctx context.Context, limit int) ([]domain.StateTransition, error) {
	transitions, err := s.repo.ListTransitions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListTransitions -> %w", err)
	}

	return transitions, nil
}

// TransitionState moves the auction to a new lifecycle state. Going LIVE
// requires at least one active prize and stamps the start time exactly once;
// closing clears the open flag, stamps the end time, and optionally runs the
// winner confirmation sweep. A sweep failure never rolls back the transition.
func (s *AuctionService) TransitionState(ctx context.Context, params TransitionParams) (TransitionResult, error) {
	if !params.NewState.IsValid() {
		return TransitionResult{}, ErrUnknownState
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return TransitionResult{}, fmt.Errorf("s.repo.Get -> %w", err)
	}

	previous := settings.AuctionState

	if !params.Force && !previous.CanTransitionTo(params.NewState) {
		return TransitionResult{}, &StateTransitionError{
			From:    previous,
			To:      params.NewState,
			Allowed: previous.AllowedTransitions(),
		}
	}

	now := time.Now().UTC()
	settings.AuctionState = params.NewState
	settings.IsAuctionOpen = params.NewState == domain.AuctionStateLive

	switch params.NewState {
	case domain.AuctionStateLive:
		count, err := s.prizeRepo.CountActive(ctx)
		if err != nil {
			return TransitionResult{}, fmt.Errorf("s.prizeRepo.CountActive -> %w", err)
		}
		if count == 0 {
			return TransitionResult{}, ErrNoActivePrizes
		}
		if settings.AuctionStartTime == nil {
			settings.AuctionStartTime = &now
		}
		settings.AuctionEndTime = nil
	case domain.AuctionStateClosed:
		settings.AuctionEndTime = &now
	}

	updated, err := s.repo.UpdateState(ctx, settings, domain.StateTransition{
		FromState: previous,
		ToState:   params.NewState,
		Forced:    params.Force,
	})
	if err != nil {
		return TransitionResult{}, fmt.Errorf("s.repo.UpdateState -> %w", err)
	}

	result := TransitionResult{
		PreviousState: previous,
		Settings:      updated,
	}

	if params.NewState == domain.AuctionStateClosed && params.AutoConfirmWinners {
		confirmed, err := s.sweeper.AutoConfirmSweep(ctx)
		if err != nil {
			zap.L().Error("auto-confirm sweep failed after close", zap.Error(err))
		}
		result.WinnersConfirmed = &confirmed
	}

	return result, nil
}
