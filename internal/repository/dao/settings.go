package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsID is the fixed primary key of the singleton auction_settings row.
const SettingsID uint = 1

var ErrSettingsNotFound = errors.New("auction settings not found")

type AuctionSettings struct {
	ID               uint   `gorm:"primaryKey"`
	AuctionState     string `gorm:"not null"`
	IsAuctionOpen    bool   `gorm:"not null;default:false"`
	AuctionStartTime *time.Time
	AuctionEndTime   *time.Time
	UpdatedAt        time.Time
}

func (AuctionSettings) TableName() string {
	return "auction_settings"
}

type StateTransition struct {
	ID        uint   `gorm:"primaryKey"`
	FromState string `gorm:"not null"`
	ToState   string `gorm:"not null"`
	Forced    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (StateTransition) TableName() string {
	return "auction_state_transitions"
}

type SettingsDAO struct {
	db *gorm.DB
}

func NewSettingsDAO(db *gorm.DB) *SettingsDAO {
	return &SettingsDAO{
		db: db,
	}
}

// EnsureExists seeds the singleton row in DRAFT if it is missing.
func (d *SettingsDAO) EnsureExists(ctx context.Context) error {
	settings := AuctionSettings{
		ID:           SettingsID,
		AuctionState: "DRAFT",
	}

	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&settings).Error
}

// Get reads the latest committed settings row. Callers in the bidding hot
// path must call this on every request; the open flag is never cached.
func (d *SettingsDAO) Get(ctx context.Context) (AuctionSettings, error) {
	var settings AuctionSettings

	result := d.db.WithContext(ctx).First(&settings, SettingsID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AuctionSettings{}, ErrSettingsNotFound
		}

		return AuctionSettings{}, result.Error
	}

	return settings, nil
}

// UpdateState persists the new lifecycle state and appends the audit entry in
// one transaction, so the log never disagrees with the settings row.
func (d *SettingsDAO) UpdateState(ctx context.Context, settings AuctionSettings, transition StateTransition) (AuctionSettings, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&settings).Error; err != nil {
			return err
		}

		return tx.Create(&transition).Error
	})
	if err != nil {
		return AuctionSettings{}, err
	}

	return settings, nil
}

func (d *SettingsDAO) ListTransitions(ctx context.Context, limit int) ([]StateTransition, error) {
	var transitions []StateTransition

	result := d.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&transitions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transitions, nil
}
