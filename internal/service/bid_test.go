package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/domain"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/notification"
)

func newBidServiceForTest(repo *fakePrizeRepo, settings *fakeSettingsRepo, dispatcher *fakeDispatcher) *BidService {
	repo.settings = settings

	return NewBidService(repo, settings, dispatcher, 2*time.Second)
}

func singleWinnerPrize(id uint, minimumBid int) domain.Prize {
	return domain.Prize{
		ID:         id,
		Name:       "Spa Day",
		MinimumBid: minimumBid,
		IsActive:   true,
	}
}

func multiWinnerPrize(id uint, minimumBid, slots int) domain.Prize {
	return domain.Prize{
		ID:                  id,
		Name:                "Wine Tasting",
		MinimumBid:          minimumBid,
		IsActive:            true,
		MultiWinnerEligible: true,
		MultiWinnerSlots:    slots,
	}
}

func TestPlaceBidRejectsNonPositiveAmount(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	for _, amount := range []int{0, -500} {
		_, err := svc.PlaceBid(context.Background(), 1, 10, amount)

		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Zero(t, repo.bidCount(1))
}

func TestPlaceBidUnknownPrize(t *testing.T) {
	repo := newFakePrizeRepo()
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	_, err := svc.PlaceBid(context.Background(), 99, 10, 3000)

	assert.ErrorIs(t, err, ErrPrizeNotFound)
}

func TestPlaceBidInactivePrize(t *testing.T) {
	prize := singleWinnerPrize(1, 3000)
	prize.IsActive = false
	repo := newFakePrizeRepo(prize)
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	_, err := svc.PlaceBid(context.Background(), 1, 10, 3000)

	assert.ErrorIs(t, err, ErrPrizeInactive)
	assert.Zero(t, repo.bidCount(1))
}

func TestPlaceBidRejectedWhenAuctionNotLive(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))

	for _, state := range []domain.AuctionState{
		domain.AuctionStateDraft,
		domain.AuctionStateTesting,
		domain.AuctionStatePrelaunch,
		domain.AuctionStateClosed,
	} {
		svc := newBidServiceForTest(repo, newFakeSettingsRepo(state), &fakeDispatcher{})

		_, err := svc.PlaceBid(context.Background(), 1, 10, 3000)

		assert.ErrorIsf(t, err, ErrAuctionNotLive, "state %v", state)
	}
	assert.Zero(t, repo.bidCount(1))
	assert.Zero(t, repo.prize(1).CurrentHighestBid)
}

func TestPlaceBidRejectedWhenClosedMidCommit(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	repo.commitGate = make(chan struct{})
	repo.commitEntered = make(chan struct{})
	settings := newFakeSettingsRepo(domain.AuctionStateLive)
	svc := newBidServiceForTest(repo, settings, &fakeDispatcher{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.PlaceBid(context.Background(), 1, 10, 3000)
		done <- err
	}()

	// The bid has passed the fail-fast gate reads and is parked at the commit.
	// Close the auction before letting the commit proceed.
	<-repo.commitEntered
	settings.setState(domain.AuctionStateClosed)
	close(repo.commitGate)

	err := <-done
	assert.ErrorIs(t, err, ErrAuctionNotLive)
	assert.Zero(t, repo.bidCount(1))
	assert.Zero(t, repo.prize(1).CurrentHighestBid)

	// The commit re-read the gate rather than trusting the earlier reads.
	assert.GreaterOrEqual(t, settings.gets(), 3)
}

func TestPlaceBidFirstBidAtMinimum(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	bid, err := svc.PlaceBid(context.Background(), 1, 10, 3000)

	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusWinning, bid.Status)
	assert.Equal(t, 3000, repo.prize(1).CurrentHighestBid)
}

func TestPlaceBidBelowFloorReturnsFreshMinimum(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	_, err := svc.PlaceBid(context.Background(), 1, 10, 10000)
	require.NoError(t, err)

	_, err = svc.PlaceBid(context.Background(), 1, 11, 10999)

	var tooLow *BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.Equal(t, 11000, tooLow.MinimumNextBid)

	// Rejection must leave nothing behind.
	assert.Equal(t, 1, repo.bidCount(1))
	assert.Equal(t, 10000, repo.prize(1).CurrentHighestBid)

	// A bid exactly at the stated minimum is accepted.
	bid, err := svc.PlaceBid(context.Background(), 1, 11, 11000)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusWinning, bid.Status)
}

func TestPlaceBidDemotesPreviousLeader(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	dispatcher := &fakeDispatcher{}
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), dispatcher)

	first, err := svc.PlaceBid(context.Background(), 1, 10, 3000)
	require.NoError(t, err)

	second, err := svc.PlaceBid(context.Background(), 1, 11, 3500)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusWinning, second.Status)

	winning := repo.winningBids(1)
	require.Len(t, winning, 1)
	assert.Equal(t, second.ID, winning[0].ID)
	assert.Equal(t, 3500, repo.prize(1).CurrentHighestBid)

	all, err := svc.GetBidsByPrizeID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, b := range all {
		if b.ID == first.ID {
			assert.Equal(t, domain.BidStatusOutbid, b.Status)
		}
	}

	assert.Eventually(t, func() bool {
		var sawOutbid, sawWinning bool
		for _, e := range dispatcher.recorded() {
			if e.Event == notification.EventOutbid && e.BidderID == 10 {
				// The payload carries the floor that holds after the commit,
				// one increment above the new leading amount.
				assert.Equal(t, 4000, e.Payload.MinimumNextBid)
				sawOutbid = true
			}
			if e.Event == notification.EventWinning && e.BidderID == 11 {
				sawWinning = true
			}
		}

		return sawOutbid && sawWinning
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPlaceBidConcurrentSingleWinner(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 50000))
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	const bidders = 20
	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Rejections with BID_TOO_LOW are an expected race outcome here.
			_, _ = svc.PlaceBid(context.Background(), 1, uint(100+i), 50000+500*i)
		}(i)
	}
	wg.Wait()

	winning := repo.winningBids(1)
	require.Len(t, winning, 1)
	assert.Equal(t, repo.prize(1).CurrentHighestBid, winning[0].Amount)
	assert.GreaterOrEqual(t, winning[0].Amount, 50000)
}

func TestPlaceBidRetriesOnceOnWriteConflict(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	repo.conflicts = 1
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	bid, err := svc.PlaceBid(context.Background(), 1, 10, 3000)

	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusWinning, bid.Status)
	assert.Equal(t, 2, repo.commits)
}

func TestPlaceBidSurfacesConflictAfterSecondFailure(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	repo.conflicts = 2
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	_, err := svc.PlaceBid(context.Background(), 1, 10, 3000)

	assert.ErrorIs(t, err, ErrWriteConflict)
	assert.Equal(t, 2, repo.commits)
	assert.Zero(t, repo.bidCount(1))
}

func TestPlaceBidLockTimeout(t *testing.T) {
	repo := newFakePrizeRepo(singleWinnerPrize(1, 3000))
	repo.commitGate = make(chan struct{})
	svc := NewBidService(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{}, 50*time.Millisecond)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.PlaceBid(context.Background(), 1, 10, 3000)
		firstDone <- err
	}()

	// Wait until the first bid is parked inside the commit, holding the lock.
	lock := svc.prizeLock(1)
	assert.Eventually(t, func() bool {
		if lock.TryAcquire(1) {
			lock.Release(1)

			return false
		}

		return true
	}, time.Second, 5*time.Millisecond)

	_, err := svc.PlaceBid(context.Background(), 1, 11, 3500)
	assert.ErrorIs(t, err, ErrLockTimeout)

	close(repo.commitGate)
	require.NoError(t, <-firstDone)
}

func TestPlaceBidMultiWinnerFillsSlotsThenRaisesFloor(t *testing.T) {
	repo := newFakePrizeRepo(multiWinnerPrize(1, 1000, 2))
	dispatcher := &fakeDispatcher{}
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), dispatcher)

	bidA, err := svc.PlaceBid(context.Background(), 1, 10, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusWinning, bidA.Status)

	// Second slot is still free, so the minimum bid is enough.
	bidB, err := svc.PlaceBid(context.Background(), 1, 11, 1200)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusWinning, bidB.Status)

	// Both slots taken: the floor moves to one increment above the worst
	// winning amount.
	_, err = svc.PlaceBid(context.Background(), 1, 12, 1400)
	var tooLow *BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.Equal(t, 1500, tooLow.MinimumNextBid)

	bidC, err := svc.PlaceBid(context.Background(), 1, 12, 1500)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusWinning, bidC.Status)

	winning := repo.winningBids(1)
	require.Len(t, winning, 2)
	assert.Equal(t, bidC.ID, winning[0].ID)
	assert.Equal(t, bidB.ID, winning[1].ID)
	assert.Equal(t, 1500, repo.prize(1).CurrentHighestBid)

	all, err := svc.GetBidsByPrizeID(context.Background(), 1)
	require.NoError(t, err)
	for _, b := range all {
		if b.ID == bidA.ID {
			assert.Equal(t, domain.BidStatusOutbid, b.Status)
		}
	}

	// The demoted bidder is told the floor derived from the new Kth-highest
	// winning amount, not from their own displaced bid.
	assert.Eventually(t, func() bool {
		for _, e := range dispatcher.recorded() {
			if e.Event == notification.EventOutbid && e.BidderID == 10 {
				assert.Equal(t, 1700, e.Payload.MinimumNextBid)

				return true
			}
		}

		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPlaceBidMultiWinnerUnlimitedSlots(t *testing.T) {
	repo := newFakePrizeRepo(multiWinnerPrize(1, 1000, 0))
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	for i, amount := range []int{5000, 1000, 2500} {
		bid, err := svc.PlaceBid(context.Background(), 1, uint(10+i), amount)

		require.NoError(t, err)
		assert.Equal(t, domain.BidStatusWinning, bid.Status)
	}

	assert.Len(t, repo.winningBids(1), 3)
	assert.Equal(t, 5000, repo.prize(1).CurrentHighestBid)
}

func TestPlaceBidOwnStandingBidOutranksNewOne(t *testing.T) {
	repo := newFakePrizeRepo(multiWinnerPrize(1, 1000, 2))
	svc := newBidServiceForTest(repo, newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	_, err := svc.PlaceBid(context.Background(), 1, 10, 5000)
	require.NoError(t, err)

	// A lower re-bid by the same bidder clears the floor (a slot is free) but
	// cannot outrank their own standing bid.
	low, err := svc.PlaceBid(context.Background(), 1, 10, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusOutbid, low.Status)

	winning := repo.winningBids(1)
	require.Len(t, winning, 1)
	assert.Equal(t, 5000, winning[0].Amount)
	assert.Equal(t, 5000, repo.prize(1).CurrentHighestBid)
}

func TestGetBidsUnknownPrize(t *testing.T) {
	svc := newBidServiceForTest(newFakePrizeRepo(), newFakeSettingsRepo(domain.AuctionStateLive), &fakeDispatcher{})

	_, err := svc.GetBidsByPrizeID(context.Background(), 42)

	assert.True(t, errors.Is(err, ErrPrizeNotFound))
}
