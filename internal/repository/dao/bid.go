package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBidNotFound = errors.New("bid not found")
	// ErrWriteConflict reports that the prize aggregate moved between the
	// caller's validated snapshot and the commit attempt.
	ErrWriteConflict = errors.New("prize aggregate changed since snapshot")
	// ErrAuctionNotLive reports that the lifecycle gate was no longer open at
	// commit time.
	ErrAuctionNotLive = errors.New("auction is not accepting bids")
)

type Bid struct {
	ID       uint   `gorm:"primaryKey"`
	PrizeID  uint   `gorm:"not null;index"`
	BidderID uint   `gorm:"not null;index"`
	Amount   int    `gorm:"not null"`
	Status   string `gorm:"not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BidCommit is the atomic unit of bid placement: insert the new bid, demote
// displaced leaders, refresh the denormalized aggregate.
type BidCommit struct {
	Bid             Bid
	DemoteBidIDs    []uint
	ExpectedHighest int
	NewHighest      int
}

type BidDAO struct {
	db *gorm.DB
}

func NewBidDAO(db *gorm.DB) *BidDAO {
	return &BidDAO{
		db: db,
	}
}

// Commit runs the insert-demote-update sequence in one transaction. The prize
// row is re-locked FOR UPDATE, the lifecycle gate is re-read inside the same
// transaction so a bid racing a close transition lands on exactly one side,
// and the denormalized aggregate is compared against the snapshot the caller
// validated; any mismatch aborts and mutates nothing.
func (d *BidDAO) Commit(ctx context.Context, commit BidCommit) (Bid, error) {
	bid := commit.Bid

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prize Prize
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&prize, bid.PrizeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPrizeNotFound
			}

			return err
		}

		var settings AuctionSettings
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			First(&settings, SettingsID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAuctionNotLive
			}

			return err
		}
		if settings.AuctionState != "LIVE" || !settings.IsAuctionOpen {
			return ErrAuctionNotLive
		}

		if prize.CurrentHighestBid != commit.ExpectedHighest {
			return ErrWriteConflict
		}

		if err := tx.Create(&bid).Error; err != nil {
			return err
		}

		if len(commit.DemoteBidIDs) > 0 {
			if err := tx.Model(&Bid{}).
				Where("id IN ?", commit.DemoteBidIDs).
				Update("status", "OUTBID").Error; err != nil {
				return err
			}
		}

		return tx.Model(&Prize{}).
			Where("id = ?", bid.PrizeID).
			Update("current_highest_bid", commit.NewHighest).Error
	})
	if err != nil {
		return Bid{}, err
	}

	return bid, nil
}

func (d *BidDAO) FindByID(ctx context.Context, id uint) (Bid, error) {
	var bid Bid

	result := d.db.WithContext(ctx).First(&bid, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Bid{}, ErrBidNotFound
		}

		return Bid{}, result.Error
	}

	return bid, nil
}

func (d *BidDAO) FindByPrizeID(ctx context.Context, prizeID uint) ([]Bid, error) {
	var bids []Bid

	result := d.db.WithContext(ctx).
		Where("prize_id = ?", prizeID).
		Order("amount DESC, created_at ASC").
		Find(&bids)
	if result.Error != nil {
		return nil, result.Error
	}

	return bids, nil
}

// FindWinningByPrizeID returns the current leading set ordered best-first,
// ties broken by earliest creation.
func (d *BidDAO) FindWinningByPrizeID(ctx context.Context, prizeID uint) ([]Bid, error) {
	var bids []Bid

	result := d.db.WithContext(ctx).
		Where("prize_id = ? AND status = ?", prizeID, "WINNING").
		Order("amount DESC, created_at ASC").
		Find(&bids)
	if result.Error != nil {
		return nil, result.Error
	}

	return bids, nil
}

func (d *BidDAO) UpdateStatus(ctx context.Context, bidID uint, status string) error {
	result := d.db.WithContext(ctx).
		Model(&Bid{}).
		Where("id = ?", bidID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBidNotFound
	}

	return nil
}

// UpdateStatusWhere flips every bid on the prize currently in fromStatus to
// toStatus, returning how many rows moved.
func (d *BidDAO) UpdateStatusWhere(ctx context.Context, prizeID uint, fromStatus, toStatus string) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&Bid{}).
		Where("prize_id = ? AND status = ?", prizeID, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
