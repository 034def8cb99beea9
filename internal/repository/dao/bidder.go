package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrBidderNotFound = errors.New("bidder not found")

type Bidder struct {
	ID    uint   `gorm:"primaryKey"`
	Email string `gorm:"unique;not null"`
	Name  string `gorm:"not null"`
	Phone string

	Role      string `gorm:"not null;default:bidder"` // "bidder" or "admin"
	NotifyVia string `gorm:"not null;default:email"`

	CreatedAt time.Time `gorm:"not null"`
}

type BidderDAO struct {
	db *gorm.DB
}

func NewBidderDAO(db *gorm.DB) *BidderDAO {
	return &BidderDAO{
		db: db,
	}
}

func (d *BidderDAO) FindByID(ctx context.Context, id uint) (Bidder, error) {
	var bidder Bidder

	result := d.db.WithContext(ctx).First(&bidder, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Bidder{}, ErrBidderNotFound
		}

		return Bidder{}, result.Error
	}

	return bidder, nil
}
