package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrWinnerExists   = errors.New("winner already confirmed for this prize and bidder")
	ErrWinnerNotFound = errors.New("winner not found")
)

type Winner struct {
	ID         uint      `gorm:"primaryKey"`
	BidID      uint      `gorm:"not null"`
	PrizeID    uint      `gorm:"not null;uniqueIndex:uni_winners_prize_bidder"`
	BidderID   uint      `gorm:"not null;uniqueIndex:uni_winners_prize_bidder"`
	AcceptedAt time.Time `gorm:"not null"`
}

type WinnerDAO struct {
	db *gorm.DB
}

func NewWinnerDAO(db *gorm.DB) *WinnerDAO {
	return &WinnerDAO{
		db: db,
	}
}

// InsertConfirmed creates the Winner row, flips the confirmed bid to WON, and
// refreshes the prize's denormalized aggregate, all in one transaction. The
// (prize_id, bidder_id) unique index is the authoritative guard against
// double confirmation; the prize row is locked FOR UPDATE so the refresh
// serializes with concurrent bid commits.
func (d *WinnerDAO) InsertConfirmed(ctx context.Context, winner Winner) (Winner, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prize Prize
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&prize, winner.PrizeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPrizeNotFound
			}

			return err
		}

		if err := tx.Create(&winner).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrWinnerExists
			}

			return err
		}

		if err := tx.Model(&Bid{}).
			Where("id = ?", winner.BidID).
			Update("status", "WON").Error; err != nil {
			return err
		}

		// The aggregate tracks the highest WINNING bid, 0 once none remain.
		var highest int
		if err := tx.Model(&Bid{}).
			Where("prize_id = ? AND status = ?", winner.PrizeID, "WINNING").
			Select("COALESCE(MAX(amount), 0)").
			Scan(&highest).Error; err != nil {
			return err
		}

		return tx.Model(&Prize{}).
			Where("id = ?", winner.PrizeID).
			Update("current_highest_bid", highest).Error
	})
	if err != nil {
		return Winner{}, err
	}

	return winner, nil
}

func (d *WinnerDAO) FindByID(ctx context.Context, id uint) (Winner, error) {
	var winner Winner

	result := d.db.WithContext(ctx).First(&winner, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Winner{}, ErrWinnerNotFound
		}

		return Winner{}, result.Error
	}

	return winner, nil
}

func (d *WinnerDAO) FindByPrizeAndBidder(ctx context.Context, prizeID, bidderID uint) (Winner, error) {
	var winner Winner

	result := d.db.WithContext(ctx).
		Where("prize_id = ? AND bidder_id = ?", prizeID, bidderID).
		First(&winner)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Winner{}, ErrWinnerNotFound
		}

		return Winner{}, result.Error
	}

	return winner, nil
}

func (d *WinnerDAO) CountByPrizeID(ctx context.Context, prizeID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Winner{}).
		Where("prize_id = ?", prizeID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// Delete hard-deletes a Winner row to undo a confirmation. The underlying bid
// is deliberately left untouched.
func (d *WinnerDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Winner{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWinnerNotFound
	}

	return nil
}
