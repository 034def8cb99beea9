package service

import (
	"context"
	"sort"
	"sync"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/notification"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository"
)

// fakePrizeRepo is an in-memory PrizeRepository with the same commit
// semantics as the real one: the lifecycle gate is re-read and the aggregate
// snapshot compared before any mutation, failing with ErrAuctionNotLive or
// ErrWriteConflict respectively.
type fakePrizeRepo struct {
	mu        sync.Mutex
	prizes    map[uint]domain.Prize
	bids      map[uint]domain.Bid
	nextBidID uint

	// settings, when set, is re-read inside every commit the way the real
	// store re-reads the lifecycle gate in the commit transaction.
	settings *fakeSettingsRepo

	// conflicts forces the next N commits to fail with ErrWriteConflict.
	conflicts int
	// commitGate, when set, blocks every commit until the channel is closed;
	// commitEntered, when set, receives one signal as each commit parks there.
	commitGate    chan struct{}
	commitEntered chan struct{}
	commits       int
}

func newFakePrizeRepo(prizes ...domain.Prize) *fakePrizeRepo {
	f := &fakePrizeRepo{
		prizes: make(map[uint]domain.Prize),
		bids:   make(map[uint]domain.Bid),
	}
	for _, p := range prizes {
		f.prizes[p.ID] = p
	}

	return f
}

func (f *fakePrizeRepo) FindByID(_ context.Context, id uint) (domain.Prize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prize, ok := f.prizes[id]
	if !ok {
		return domain.Prize{}, repository.ErrPrizeNotFound
	}

	return prize, nil
}

func (f *fakePrizeRepo) FindActive(_ context.Context) ([]domain.Prize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var prizes []domain.Prize
	for _, p := range f.prizes {
		if p.IsActive {
			prizes = append(prizes, p)
		}
	}
	sort.Slice(prizes, func(i, j int) bool { return prizes[i].ID < prizes[j].ID })

	return prizes, nil
}

func (f *fakePrizeRepo) CountActive(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, p := range f.prizes {
		if p.IsActive {
			count++
		}
	}

	return count, nil
}

func (f *fakePrizeRepo) FindBidsByPrizeID(_ context.Context, prizeID uint) ([]domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sortedBids(prizeID, ""), nil
}

func (f *fakePrizeRepo) FindWinningBids(_ context.Context, prizeID uint) ([]domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sortedBids(prizeID, domain.BidStatusWinning), nil
}

func (f *fakePrizeRepo) sortedBids(prizeID uint, status domain.BidStatus) []domain.Bid {
	var bids []domain.Bid
	for _, b := range f.bids {
		if b.PrizeID != prizeID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		bids = append(bids, b)
	}
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].Amount != bids[j].Amount {
			return bids[i].Amount > bids[j].Amount
		}

		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})

	return bids
}

func (f *fakePrizeRepo) CommitBid(_ context.Context, commit repository.BidCommit) (domain.Bid, error) {
	if f.commitEntered != nil {
		f.commitEntered <- struct{}{}
	}
	if f.commitGate != nil {
		<-f.commitGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.commits++

	if f.settings != nil {
		settings, _ := f.settings.Get(context.Background())
		if settings.AuctionState != domain.AuctionStateLive || !settings.IsAuctionOpen {
			return domain.Bid{}, repository.ErrAuctionNotLive
		}
	}

	if f.conflicts > 0 {
		f.conflicts--

		return domain.Bid{}, repository.ErrWriteConflict
	}

	prize, ok := f.prizes[commit.Bid.PrizeID]
	if !ok {
		return domain.Bid{}, repository.ErrPrizeNotFound
	}
	if prize.CurrentHighestBid != commit.ExpectedHighest {
		return domain.Bid{}, repository.ErrWriteConflict
	}

	f.nextBidID++
	bid := commit.Bid
	bid.ID = f.nextBidID
	f.bids[bid.ID] = bid

	for _, id := range commit.DemoteBidIDs {
		demoted := f.bids[id]
		demoted.Status = domain.BidStatusOutbid
		f.bids[id] = demoted
	}

	prize.CurrentHighestBid = commit.NewHighest
	f.prizes[prize.ID] = prize

	return bid, nil
}

func (f *fakePrizeRepo) winningBids(prizeID uint) []domain.Bid {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sortedBids(prizeID, domain.BidStatusWinning)
}

func (f *fakePrizeRepo) prize(id uint) domain.Prize {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.prizes[id]
}

func (f *fakePrizeRepo) bidCount(prizeID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sortedBids(prizeID, ""))
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings domain.AuctionSettings
	getCalls int
}

func newFakeSettingsRepo(state domain.AuctionState) *fakeSettingsRepo {
	return &fakeSettingsRepo{
		settings: domain.AuctionSettings{
			ID:            1,
			AuctionState:  state,
			IsAuctionOpen: state == domain.AuctionStateLive,
		},
	}
}

func (f *fakeSettingsRepo) Get(_ context.Context) (domain.AuctionSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++

	return f.settings, nil
}

func (f *fakeSettingsRepo) setState(state domain.AuctionState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.settings.AuctionState = state
	f.settings.IsAuctionOpen = state == domain.AuctionStateLive
}

func (f *fakeSettingsRepo) gets() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.getCalls
}

type dispatchedEvent struct {
	BidderID uint
	Event    notification.Event
	Payload  notification.Payload
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events []dispatchedEvent
	err    error
}

func (f *fakeDispatcher) Notify(_ context.Context, bidderID uint, event notification.Event, payload notification.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, dispatchedEvent{BidderID: bidderID, Event: event, Payload: payload})

	return f.err
}

func (f *fakeDispatcher) recorded() []dispatchedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]dispatchedEvent{}, f.events...)
}
