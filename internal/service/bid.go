package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/notification"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository"
)

var (
	ErrPrizeNotFound = repository.ErrPrizeNotFound
	ErrWriteConflict = repository.ErrWriteConflict
	// ErrAuctionNotLive originates in the store: the commit transaction is the
	// authoritative gate check, the service reads are fail-fast copies of it.
	ErrAuctionNotLive = repository.ErrAuctionNotLive

	ErrInvalidAmount = errors.New("bid amount must be a positive integer")
	ErrPrizeInactive = errors.New("prize is not active")
	// ErrLockTimeout is retryable: the per-prize serialization point could not
	// be acquired within the bounded wait.
	ErrLockTimeout = errors.New("timed out waiting for prize lock")
)

const notifyTimeout = 5 * time.Second

type PrizeRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Prize, error)
	FindActive(ctx context.Context) ([]domain.Prize, error)
	FindBidsByPrizeID(ctx context.Context, prizeID uint) ([]domain.Bid, error)
	FindWinningBids(ctx context.Context, prizeID uint) ([]domain.Bid, error)
	CommitBid(ctx context.Context, commit repository.BidCommit) (domain.Bid, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (domain.AuctionSettings, error)
}

// BidService is the bid transaction processor: it validates each bid against
// a freshly read lifecycle gate and prize snapshot, and serializes the
// read-validate-write sequence per prize so at most one commit runs at a time
// for any prize while distinct prizes proceed in parallel.
type BidService struct {
	repo         PrizeRepository
	settingsRepo SettingsReader
	dispatcher   notification.Dispatcher

	lockWait time.Duration

	mu    sync.Mutex
	locks map[uint]*semaphore.Weighted
}

func NewBidService(repo PrizeRepository, settingsRepo SettingsReader, dispatcher notification.Dispatcher, lockWait time.Duration) *BidService {
	return &BidService{
		repo:         repo,
		settingsRepo: settingsRepo,
		dispatcher:   dispatcher,
		lockWait:     lockWait,
		locks:        make(map[uint]*semaphore.Weighted),
	}
}

// prizeLock returns the serialization point for one prize.
func (s *BidService) prizeLock(prizeID uint) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[prizeID]
	if !ok {
		lock = semaphore.NewWeighted(1)
		s.locks[prizeID] = lock
	}

	return lock
}

// PlaceBid validates and commits one bid. Preconditions are rejected before
// any lock is taken; the lifecycle gate and the prize snapshot are re-read
// under the per-prize lock so a bid racing a close transition lands
// unambiguously on one side.
func (s *BidService) PlaceBid(ctx context.Context, prizeID, bidderID uint, amount int) (domain.Bid, error) {
	if amount <= 0 {
		return domain.Bid{}, ErrInvalidAmount
	}

	prize, err := s.repo.FindByID(ctx, prizeID)
	if err != nil {
		return domain.Bid{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !prize.IsActive {
		return domain.Bid{}, ErrPrizeInactive
	}

	// Fail fast before queueing on the lock; the authoritative gate check
	// happens again under the lock.
	if err = s.checkAuctionOpen(ctx); err != nil {
		return domain.Bid{}, err
	}

	lock := s.prizeLock(prizeID)
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	if err = lock.Acquire(lockCtx, 1); err != nil {
		return domain.Bid{}, ErrLockTimeout
	}

	bid, demoted, nextFloor, err := s.placeBidLocked(ctx, prizeID, bidderID, amount)
	if errors.Is(err, ErrWriteConflict) {
		// The store reported a lost update. Retry the validate-then-write
		// sequence once against a fresh read before surfacing anything.
		bid, demoted, nextFloor, err = s.placeBidLocked(ctx, prizeID, bidderID, amount)
	}
	lock.Release(1)

	if err != nil {
		return domain.Bid{}, err
	}

	// Dispatch outside the lock; failures are logged, never rolled back.
	s.notifyBidOutcome(prize.Name, bid, demoted, nextFloor)

	return bid, nil
}

func (s *BidService) checkAuctionOpen(ctx context.Context) error {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("s.settingsRepo.Get -> %w", err)
	}
	if settings.AuctionState != domain.AuctionStateLive || !settings.IsAuctionOpen {
		return ErrAuctionNotLive
	}

	return nil
}

// placeBidLocked runs the read-validate-write sequence and reports the floor
// that holds after the commit, for the outbid notifications. The caller holds
// the per-prize lock.
func (s *BidService) placeBidLocked(ctx context.Context, prizeID, bidderID uint, amount int) (domain.Bid, []domain.Bid, int, error) {
	if err := s.checkAuctionOpen(ctx); err != nil {
		return domain.Bid{}, nil, 0, err
	}

	prize, err := s.repo.FindByID(ctx, prizeID)
	if err != nil {
		return domain.Bid{}, nil, 0, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !prize.IsActive {
		return domain.Bid{}, nil, 0, ErrPrizeInactive
	}

	winning, err := s.repo.FindWinningBids(ctx, prizeID)
	if err != nil {
		return domain.Bid{}, nil, 0, fmt.Errorf("s.repo.FindWinningBids -> %w", err)
	}

	floor := bidFloor(prize, winning)
	if amount < floor {
		return domain.Bid{}, nil, 0, &BidTooLowError{MinimumNextBid: floor}
	}

	newBid := domain.Bid{
		PrizeID:   prizeID,
		BidderID:  bidderID,
		Amount:    amount,
		Status:    domain.BidStatusWinning,
		CreatedAt: time.Now().UTC(),
	}

	leading, demoted := rankLeadingSet(prize, winning, newBid)
	if !leadingContainsCandidate(leading) {
		// Outranked by the bidder's own standing bid; record it, demote nothing.
		newBid.Status = domain.BidStatusOutbid
	}

	newHighest := prize.CurrentHighestBid
	if len(leading) > 0 {
		newHighest = leading[0].Amount
	}

	demoteIDs := make([]uint, 0, len(demoted))
	for _, d := range demoted {
		demoteIDs = append(demoteIDs, d.ID)
	}

	committed, err := s.repo.CommitBid(ctx, repository.BidCommit{
		Bid:             newBid,
		DemoteBidIDs:    demoteIDs,
		ExpectedHighest: prize.CurrentHighestBid,
		NewHighest:      newHighest,
	})
	if err != nil {
		return domain.Bid{}, nil, 0, err
	}

	// The floor a demoted bidder must now clear, derived from the committed
	// leading set (leading is sorted best-first, worst last).
	after := prize
	after.CurrentHighestBid = newHighest
	nextFloor := bidFloor(after, leading)

	return committed, demoted, nextFloor, nil
}

// bidFloor computes the minimum acceptable amount from the committed state.
// Single-winner prizes floor off the denormalized aggregate; slot-limited
// prizes floor off the worst currently-winning amount once every slot is
// taken; unlimited multi-winner prizes always floor at the minimum bid.
func bidFloor(prize domain.Prize, winning []domain.Bid) int {
	if !prize.MultiWinnerEligible {
		return domain.MinimumNextBid(prize.CurrentHighestBid, prize.MinimumBid)
	}

	capacity := prize.SlotCapacity()
	if capacity == 0 || len(winning) < capacity {
		return prize.MinimumBid
	}

	kthHighest := winning[len(winning)-1].Amount

	return domain.MinimumNextBid(kthHighest, prize.MinimumBid)
}

// rankLeadingSet recomputes the leading set after a candidate bid joins. The
// set holds the top-K distinct-bidder amounts (ties broken by earliest
// creation); previously-winning bids that drop out come back as the demotion
// list. The candidate is returned inside leading when it ranks.
func rankLeadingSet(prize domain.Prize, winning []domain.Bid, newBid domain.Bid) (leading, demoted []domain.Bid) {
	// One slot per bidder: keep each bidder's best candidate only.
	bestByBidder := make(map[uint]domain.Bid, len(winning)+1)
	for _, b := range append(append([]domain.Bid{}, winning...), newBid) {
		current, ok := bestByBidder[b.BidderID]
		if !ok || betterRanked(b, current) {
			bestByBidder[b.BidderID] = b
		}
	}

	candidates := make([]domain.Bid, 0, len(bestByBidder))
	for _, b := range bestByBidder {
		candidates = append(candidates, b)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return betterRanked(candidates[i], candidates[j])
	})

	capacity := prize.SlotCapacity()
	cut := len(candidates)
	if capacity > 0 && capacity < cut {
		cut = capacity
	}
	leading = candidates[:cut]

	inLeading := make(map[uint]bool, len(leading))
	for _, b := range leading {
		// The candidate has no ID yet; key zero is safe because persisted
		// bids always carry one.
		inLeading[b.ID] = true
	}

	for _, b := range winning {
		if !inLeading[b.ID] {
			demoted = append(demoted, b)
		}
	}

	return leading, demoted
}

// leadingContainsCandidate reports whether the not-yet-persisted candidate
// (the one bid with no ID) made the leading set.
func leadingContainsCandidate(leading []domain.Bid) bool {
	for _, b := range leading {
		if b.ID == 0 {
			return true
		}
	}

	return false
}

func betterRanked(a, b domain.Bid) bool {
	if a.Amount != b.Amount {
		return a.Amount > b.Amount
	}

	return a.CreatedAt.Before(b.CreatedAt)
}

func (s *BidService) notifyBidOutcome(prizeName string, bid domain.Bid, demoted []domain.Bid, nextFloor int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		payload := notification.Payload{
			PrizeID:   bid.PrizeID,
			PrizeName: prizeName,
			Amount:    bid.Amount,
		}

		for _, d := range demoted {
			if d.BidderID == bid.BidderID {
				continue
			}
			outbid := payload
			outbid.MinimumNextBid = nextFloor
			if err := s.dispatcher.Notify(ctx, d.BidderID, notification.EventOutbid, outbid); err != nil {
				zap.L().Warn("failed to dispatch OUTBID notification",
					zap.Uint("bidder_id", d.BidderID),
					zap.Uint("prize_id", bid.PrizeID),
					zap.Error(err))
			}
		}

		if bid.Status == domain.BidStatusWinning {
			if err := s.dispatcher.Notify(ctx, bid.BidderID, notification.EventWinning, payload); err != nil {
				zap.L().Warn("failed to dispatch WINNING notification",
					zap.Uint("bidder_id", bid.BidderID),
					zap.Uint("prize_id", bid.PrizeID),
					zap.Error(err))
			}
		}
	}()
}

// GetBidsByPrizeID lists every bid on a prize for display and audit.
func (s *BidService) GetBidsByPrizeID(ctx context.Context, prizeID uint) ([]domain.Bid, error) {
	if _, err := s.repo.FindByID(ctx, prizeID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	bids, err := s.repo.FindBidsByPrizeID(ctx, prizeID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindBidsByPrizeID -> %w", err)
	}

	return bids, nil
}

// GetActivePrizes lists active prizes for display; callers derive the display
// floor with the increment policy outside any lock.
func (s *BidService) GetActivePrizes(ctx context.Context) ([]domain.Prize, error) {
	prizes, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindActive -> %w", err)
	}

	return prizes, nil
}
