package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/web3guy0/digitbot/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// JOURNAL - Contract and trade persistence
// ═══════════════════════════════════════════════════════════════════════════════
//
// postgres:// or postgresql:// URLs use PostgreSQL, anything else is a SQLite path.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Contract status values
const (
	StatusOpen = "open"
	StatusWon  = "won"
	StatusLost = "lost"
)

// ErrContractNotFound is returned when settling a contract that was never saved
var ErrContractNotFound = errors.New("contract not found")

type Journal struct {
	db *gorm.DB
}

// Models

type ContractEntry struct {
	ID         string `gorm:"primaryKey"`
	SessionID  string `gorm:"index"`
	Symbol     string `gorm:"index"`
	Type       string // DIGITOVER, DIGITDIFF, ...
	Prediction int
	Stake      decimal.Decimal `gorm:"type:decimal(20,6)"`
	Payout     float64
	Confidence float64
	Reason     string
	Status     string `gorm:"index"` // "open", "won", "lost"
	ExitPrice  float64
	ExitDigit  *int
	Profit     decimal.Decimal `gorm:"type:decimal(20,6)"`
	OpenedAt   time.Time
	SettledAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TradeEntry struct {
	ID            string          `gorm:"primaryKey"`
	SessionID     string          `gorm:"index"`
	ContractID    string          `gorm:"index"`
	Stake         decimal.Decimal `gorm:"type:decimal(20,6)"`
	Profit        decimal.Decimal `gorm:"type:decimal(20,6)"`
	IsWin         bool
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,6)"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,6)"`
	RecoveryLevel int
	IsRecovery    bool
	Timestamp     time.Time `gorm:"index"`
	CreatedAt     time.Time
}

// SessionStats aggregates the trades of one engine session
type SessionStats struct {
	Trades int64
	Wins   int64
	Losses int64
	Profit decimal.Decimal
}

// Open connects to the journal database and migrates the schema
func Open(dbPath string) (*Journal, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if strings.HasPrefix(dbPath, "postgres://") || strings.HasPrefix(dbPath, "postgresql://") {
		db, err = gorm.Open(postgres.Open(dbPath), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres journal: %w", err)
		}
		log.Info().Msg("💾 Journal connected (PostgreSQL)")
	} else {
		if !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return nil, fmt.Errorf("create journal dir: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(dbPath), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite journal: %w", err)
		}
		log.Info().Str("path", dbPath).Msg("💾 Journal initialized (SQLite)")
	}

	if err := db.AutoMigrate(&ContractEntry{}, &TradeEntry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the underlying connection pool
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Contract operations

// SaveContract stores a newly opened contract
func (j *Journal) SaveContract(c types.Contract) error {
	entry := ContractEntry{
		ID:         c.ID,
		SessionID:  c.SessionID,
		Symbol:     c.Symbol,
		Type:       c.Type,
		Prediction: c.Prediction,
		Stake:      c.Stake,
		Payout:     c.Payout,
		Confidence: c.Confidence,
		Reason:     c.Reason,
		Status:     StatusOpen,
		OpenedAt:   c.OpenedAt,
	}
	return j.db.Create(&entry).Error
}

// GetContract retrieves a single contract by ID
func (j *Journal) GetContract(id string) (*ContractEntry, error) {
	var entry ContractEntry
	err := j.db.First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	return &entry, err
}

// OpenContracts lists contracts of a session that were never settled
func (j *Journal) OpenContracts(sessionID string) ([]ContractEntry, error) {
	var entries []ContractEntry
	err := j.db.Where("session_id = ? AND status = ?", sessionID, StatusOpen).
		Order("opened_at ASC").Find(&entries).Error
	return entries, err
}

// Trade operations

// SaveSettlement closes the contract and records the trade in one transaction
func (j *Journal) SaveSettlement(s types.Settlement) error {
	status := StatusLost
	if s.Won {
		status = StatusWon
	}
	digit := s.ExitDigit
	settledAt := s.SettledAt

	return j.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ContractEntry{}).Where("id = ?", s.Contract.ID).Updates(map[string]interface{}{
			"status":     status,
			"exit_price": s.ExitPrice,
			"exit_digit": &digit,
			"profit":     s.Profit,
			"settled_at": &settledAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrContractNotFound, s.Contract.ID)
		}

		trade := TradeEntry{
			ID:            s.Trade.ID,
			SessionID:     s.Contract.SessionID,
			ContractID:    s.Contract.ID,
			Stake:         s.Trade.Stake,
			Profit:        s.Trade.Profit,
			IsWin:         s.Trade.IsWin,
			BalanceBefore: s.Trade.BalanceBefore,
			BalanceAfter:  s.Trade.BalanceAfter,
			RecoveryLevel: s.Trade.RecoveryLevel,
			IsRecovery:    s.Trade.IsRecovery,
			Timestamp:     s.Trade.Timestamp,
		}
		return tx.Create(&trade).Error
	})
}

// RecentTrades returns the last N trades, newest first
func (j *Journal) RecentTrades(limit int) ([]types.TradeRecord, error) {
	var entries []TradeEntry
	if err := j.db.Order("timestamp DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}

	result := make([]types.TradeRecord, len(entries))
	for i, t := range entries {
		result[i] = types.TradeRecord{
			ID:            t.ID,
			Timestamp:     t.Timestamp,
			Stake:         t.Stake,
			Profit:        t.Profit,
			IsWin:         t.IsWin,
			BalanceBefore: t.BalanceBefore,
			BalanceAfter:  t.BalanceAfter,
			RecoveryLevel: t.RecoveryLevel,
			IsRecovery:    t.IsRecovery,
		}
	}
	return result, nil
}

// Stats operations

// SessionStats aggregates trade counts and profit for a session
func (j *Journal) SessionStats(sessionID string) (SessionStats, error) {
	var stats SessionStats

	q := j.db.Model(&TradeEntry{}).Where("session_id = ?", sessionID)
	if err := q.Count(&stats.Trades).Error; err != nil {
		return stats, err
	}
	if err := j.db.Model(&TradeEntry{}).Where("session_id = ? AND is_win = ?", sessionID, true).
		Count(&stats.Wins).Error; err != nil {
		return stats, err
	}
	stats.Losses = stats.Trades - stats.Wins

	var profitResult struct {
		Total decimal.Decimal
	}
	if err := j.db.Model(&TradeEntry{}).Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(profit), 0) as total").Scan(&profitResult).Error; err != nil {
		return stats, err
	}
	stats.Profit = profitResult.Total

	return stats, nil
}
