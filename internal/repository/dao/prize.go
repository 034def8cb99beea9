package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrPrizeNotFound = errors.New("prize not found")

type Prize struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string

	MinimumBid        int `gorm:"not null"`
	CurrentHighestBid int `gorm:"not null;default:0"`

	MultiWinnerEligible bool `gorm:"not null;default:false"`
	MultiWinnerSlots    int  `gorm:"not null;default:0"` // 0 = unlimited

	IsActive bool `gorm:"not null;default:true"`

	Bids []Bid `gorm:"foreignKey:PrizeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PrizeDAO struct {
	db *gorm.DB
}

func NewPrizeDAO(db *gorm.DB) *PrizeDAO {
	return &PrizeDAO{
		db: db,
	}
}

func (d *PrizeDAO) FindByID(ctx context.Context, id uint) (Prize, error) {
	var prize Prize

	result := d.db.WithContext(ctx).First(&prize, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Prize{}, ErrPrizeNotFound
		}

		return Prize{}, result.Error
	}

	return prize, nil
}

func (d *PrizeDAO) FindActive(ctx context.Context) ([]Prize, error) {
	var prizes []Prize

	result := d.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&prizes)
	if result.Error != nil {
		return nil, result.Error
	}

	return prizes, nil
}

func (d *PrizeDAO) CountActive(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Prize{}).
		Where("is_active = ?", true).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
