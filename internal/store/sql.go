package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
)

// TableRecord is one saved table, keyed by the storage key
type TableRecord struct {
	ID          string `gorm:"primaryKey;size:64"`
	PlayerCount int    `gorm:"not null"`
	UpdatedAt   time.Time
}

func (TableRecord) TableName() string { return "blackjack_tables" }

// SeatRecord is one seat's bankroll and counters
type SeatRecord struct {
	TableID  string `gorm:"primaryKey;size:64"`
	Seat     int    `gorm:"primaryKey;autoIncrement:false"`
	Bankroll int    `gorm:"not null"`
	Wins     int    `gorm:"not null;default:0"`
	Losses   int    `gorm:"not null;default:0"`
	Ties     int    `gorm:"not null;default:0"`
}

func (SeatRecord) TableName() string { return "blackjack_seats" }

// SQLStore keeps the saved state in a SQL database through gorm
type SQLStore struct {
	db  *gorm.DB
	key string
}

// OpenSQL connects with the sqlite or postgres dialector and migrates the
// schema
func OpenSQL(driver, dsn, key string) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return NewSQLStore(db, key)
}

// NewSQLStore wraps an open database, creating the tables if needed
func NewSQLStore(db *gorm.DB, key string) (*SQLStore, error) {
	if err := db.AutoMigrate(&TableRecord{}, &SeatRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLStore{db: db, key: key}, nil
}

func (s *SQLStore) Load(ctx context.Context) (game.SavedState, error) {
	db := s.db.WithContext(ctx)

	var table TableRecord
	err := db.First(&table, "id = ?", s.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.SavedState{}, ErrNotFound
	}
	if err != nil {
		return game.SavedState{}, fmt.Errorf("failed to load table: %w", err)
	}

	var seats []SeatRecord
	if err := db.Where("table_id = ?", s.key).Order("seat").Find(&seats).Error; err != nil {
		return game.SavedState{}, fmt.Errorf("failed to load seats: %w", err)
	}

	state := game.SavedState{PlayerCount: table.PlayerCount}
	for _, seat := range seats {
		state.Players = append(state.Players, game.SavedPlayer{
			Bankroll: seat.Bankroll,
			Stats:    statistics.Stats{Wins: seat.Wins, Losses: seat.Losses, Ties: seat.Ties},
		})
	}
	return state, nil
}

func (s *SQLStore) Save(ctx context.Context, state game.SavedState) error {
	seats := make([]SeatRecord, len(state.Players))
	for i, p := range state.Players {
		seats[i] = SeatRecord{
			TableID:  s.key,
			Seat:     i,
			Bankroll: p.Bankroll,
			Wins:     p.Stats.Wins,
			Losses:   p.Stats.Losses,
			Ties:     p.Stats.Ties,
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&TableRecord{ID: s.key, PlayerCount: state.PlayerCount}).Error; err != nil {
			return fmt.Errorf("failed to save table: %w", err)
		}
		if err := tx.Where("table_id = ?", s.key).Delete(&SeatRecord{}).Error; err != nil {
			return fmt.Errorf("failed to replace seats: %w", err)
		}
		if len(seats) == 0 {
			return nil
		}
		if err := tx.Create(&seats).Error; err != nil {
			return fmt.Errorf("failed to save seats: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", s.key).Delete(&SeatRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear seats: %w", err)
		}
		if err := tx.Where("id = ?", s.key).Delete(&TableRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
