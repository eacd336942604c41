// Package journal is the service layer of the trading journal: every read
// and write goes through here, scoped to a user ID at the call boundary
// rather than by caller convention.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/money"
	"trade-journal-go/internal/stats"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAccountHasTrades = errors.New("account still has trades")
)

// Mirror pushes journal mutations to a remote backend. Implementations must
// be safe for concurrent use; failures are logged and never block the
// journaling path.
type Mirror interface {
	PushTrade(ctx context.Context, trade models.Trade) error
	RemoveTrade(ctx context.Context, userID, tradeID string) error
}

// Service owns all journal operations for accounts, instruments, trades,
// challenges and checklists, plus the memoized statistics.
type Service struct {
	log    *zap.Logger
	db     *gorm.DB
	mirror Mirror // may be nil

	mu         sync.Mutex
	statsCache map[string]stats.Stats // userID + "\x00" + account filter
}

// NewService creates a journal service. mirror may be nil to disable
// remote mirroring.
func NewService(log *zap.Logger, db *gorm.DB, mirror Mirror) *Service {
	return &Service{
		log:        log,
		db:         db,
		mirror:     mirror,
		statsCache: make(map[string]stats.Stats),
	}
}

// ---- Accounts ----

// AccountInput is the payload for creating an account.
type AccountInput struct {
	Name           string      `json:"name"`
	Broker         string      `json:"broker"`
	Type           string      `json:"type"`
	InitialBalance money.Value `json:"initial_balance"`
	Notes          string      `json:"notes"`
}

// CreateAccount registers a new trading account for the user.
func (s *Service) CreateAccount(userID string, in AccountInput) (models.Account, error) {
	if in.Name == "" {
		return models.Account{}, fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}
	if in.Type == "" {
		in.Type = models.AccountTypeDemo
	}

	account := models.Account{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           in.Name,
		Broker:         in.Broker,
		Type:           in.Type,
		InitialBalance: in.InitialBalance.Float64(),
		Notes:          in.Notes,
		CreatedAt:      time.Now(),
	}
	if err := s.db.Create(&account).Error; err != nil {
		return models.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Info("Account created",
		zap.String("user", userID),
		zap.String("account", account.ID),
		zap.String("name", account.Name))
	return account, nil
}

// ListAccounts returns the user's accounts, oldest first.
func (s *Service) ListAccounts(userID string) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeleteAccount removes an account. If the account still has trades the
// delete fails with ErrAccountHasTrades unless cascade is set, in which
// case the trades are deleted in the same transaction. Silent orphaning is
// never an option.
func (s *Service) DeleteAccount(userID, accountID string, cascade bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		err := tx.Where("user_id = ? AND id = ?", userID, accountID).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var tradeCount int64
		if err := tx.Model(&models.Trade{}).
			Where("user_id = ? AND account_id = ?", userID, accountID).
			Count(&tradeCount).Error; err != nil {
			return err
		}
		if tradeCount > 0 {
			if !cascade {
				return fmt.Errorf("%w: %d trades", ErrAccountHasTrades, tradeCount)
			}
			if err := tx.Where("user_id = ? AND account_id = ?", userID, accountID).
				Delete(&models.Trade{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&account).Error
	})
	if err != nil {
		return err
	}

	s.invalidateStats(userID)
	s.log.Info("Account deleted",
		zap.String("user", userID),
		zap.String("account", accountID),
		zap.Bool("cascade", cascade))
	return nil
}

// ---- Instruments ----

// InstrumentInput is the payload for creating an instrument definition.
type InstrumentInput struct {
	Symbol       string      `json:"symbol"`
	Name         string      `json:"name"`
	AssetClass   string      `json:"asset_class"`
	Market       string      `json:"market"`
	TickSize     money.Value `json:"tick_size"`
	ValuePerTick money.Value `json:"value_per_tick"`
	ContractSize money.Value `json:"contract_size"`
}

// CreateInstrument adds an instrument to the shared catalog.
func (s *Service) CreateInstrument(in InstrumentInput) (models.Instrument, error) {
	if in.Symbol == "" {
		return models.Instrument{}, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if in.TickSize.Float64() <= 0 || in.ValuePerTick.Float64() <= 0 {
		return models.Instrument{}, fmt.Errorf("%w: tick_size and value_per_tick must be positive", ErrInvalidInput)
	}

	instrument := models.Instrument{
		Symbol:       in.Symbol,
		Name:         in.Name,
		AssetClass:   in.AssetClass,
		Market:       in.Market,
		TickSize:     in.TickSize.Float64(),
		ValuePerTick: in.ValuePerTick.Float64(),
		ContractSize: in.ContractSize.Float64(),
	}
	if err := s.db.Create(&instrument).Error; err != nil {
		return models.Instrument{}, fmt.Errorf("failed to create instrument: %w", err)
	}
	return instrument, nil
}

// ListInstruments returns the instrument catalog.
func (s *Service) ListInstruments() ([]models.Instrument, error) {
	var instruments []models.Instrument
	if err := s.db.Order("symbol asc").Find(&instruments).Error; err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return instruments, nil
}

// DeleteInstrument removes an instrument from the catalog. Existing trades
// keep their derived results; the symbol reference may dangle.
func (s *Service) DeleteInstrument(symbol string) error {
	result := s.db.Where("symbol = ?", symbol).Delete(&models.Instrument{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete instrument: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Trades ----

// TradeInput is the payload for logging a trade. Monetary fields parse
// leniently (see money.Value). When ReportedNet is present the commission
// is back-solved from it instead of taken from Commission.
type TradeInput struct {
	AccountID        string       `json:"account_id"`
	InstrumentSymbol string       `json:"instrument_symbol"`
	Direction        string       `json:"direction"`
	Quantity         int          `json:"quantity"`
	EntryPrice       money.Value  `json:"entry_price"`
	ExitPrice        money.Value  `json:"exit_price"`
	Commission       money.Value  `json:"commission"`
	ReportedNet      *money.Value `json:"reported_net,omitempty"`
	Notes            string       `json:"notes"`
	Screenshot       string       `json:"screenshot"`
	ExecutedAt       time.Time    `json:"executed_at"`
}

// CreateTrade derives the trade's results and persists it. Gross result is
// the tick-converted price move; net always equals gross minus commission,
// regardless of which commission-entry mode was used.
func (s *Service) CreateTrade(ctx context.Context, userID string, in TradeInput) (models.Trade, error) {
	if in.Direction != models.DirectionBuy && in.Direction != models.DirectionSell {
		return models.Trade{}, fmt.Errorf("%w: direction must be %q or %q", ErrInvalidInput, models.DirectionBuy, models.DirectionSell)
	}
	if in.Quantity <= 0 {
		return models.Trade{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	var account models.Account
	err := s.db.Where("user_id = ? AND id = ?", userID, in.AccountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Trade{}, fmt.Errorf("%w: account %q", ErrNotFound, in.AccountID)
	}
	if err != nil {
		return models.Trade{}, err
	}

	var instrument models.Instrument
	err = s.db.Where("symbol = ?", in.InstrumentSymbol).First(&instrument).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Trade{}, fmt.Errorf("%w: instrument %q", ErrNotFound, in.InstrumentSymbol)
	}
	if err != nil {
		return models.Trade{}, err
	}

	gross := money.GrossResult(in.Direction, in.EntryPrice.Float64(), in.ExitPrice.Float64(), in.Quantity, instrument)
	commission := in.Commission.Float64()
	if in.ReportedNet != nil {
		commission = money.BackSolveCommission(gross, in.ReportedNet.Float64())
	}

	executedAt := in.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}

	trade := models.Trade{
		ID:               uuid.NewString(),
		UserID:           userID,
		AccountID:        in.AccountID,
		InstrumentSymbol: in.InstrumentSymbol,
		Direction:        in.Direction,
		Quantity:         in.Quantity,
		EntryPrice:       in.EntryPrice.Float64(),
		ExitPrice:        in.ExitPrice.Float64(),
		GrossResult:      gross,
		Commission:       commission,
		NetResult:        money.Net(gross, commission),
		Notes:            in.Notes,
		Screenshot:       in.Screenshot,
		ExecutedAt:       executedAt,
		CreatedAt:        time.Now(),
	}
	if err := s.db.Create(&trade).Error; err != nil {
		return models.Trade{}, fmt.Errorf("failed to save trade: %w", err)
	}

	s.invalidateStats(userID)
	s.mirrorTrade(trade)

	s.log.Info("Trade logged",
		zap.String("user", userID),
		zap.String("trade", trade.ID),
		zap.String("instrument", trade.InstrumentSymbol),
		zap.Float64("net_result", trade.NetResult))
	return trade, nil
}

// ListTrades returns the user's trades, newest first, optionally restricted
// to one account via stats.AllAccounts semantics.
func (s *Service) ListTrades(userID, accountFilter string) ([]models.Trade, error) {
	query := s.db.Where("user_id = ?", userID)
	if accountFilter != "" && accountFilter != stats.AllAccounts {
		query = query.Where("account_id = ?", accountFilter)
	}

	var trades []models.Trade
	if err := query.Order("executed_at desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// DeleteTrade removes one trade.
func (s *Service) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	result := s.db.Where("user_id = ? AND id = ?", userID, tradeID).Delete(&models.Trade{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete trade: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.invalidateStats(userID)
	s.mirrorRemoval(userID, tradeID)
	return nil
}

// DeleteTradesByAccount removes every trade of one account ("clear
// account"), returning how many were deleted.
func (s *Service) DeleteTradesByAccount(ctx context.Context, userID, accountID string) (int64, error) {
	result := s.db.Where("user_id = ? AND account_id = ?", userID, accountID).Delete(&models.Trade{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear account trades: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.invalidateStats(userID)
	}
	s.log.Info("Account trades cleared",
		zap.String("user", userID),
		zap.String("account", accountID),
		zap.Int64("deleted", result.RowsAffected))
	return result.RowsAffected, nil
}

// ---- Statistics ----

// Statistics returns the aggregate performance summary for the user,
// restricted to one account unless accountFilter is stats.AllAccounts.
// Results are memoized until the next mutation; there is no timer-based
// refresh anywhere.
func (s *Service) Statistics(userID, accountFilter string) (stats.Stats, error) {
	if accountFilter == "" {
		accountFilter = stats.AllAccounts
	}

	key := userID + "\x00" + accountFilter
	s.mu.Lock()
	if cached, ok := s.statsCache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	trades, err := s.ListTrades(userID, stats.AllAccounts)
	if err != nil {
		return stats.Stats{}, err
	}
	computed := stats.Compute(trades, accountFilter)

	s.mu.Lock()
	s.statsCache[key] = computed
	s.mu.Unlock()
	return computed, nil
}

// EquityCurve returns the chartable per-account cumulative equity curve.
func (s *Service) EquityCurve(userID, accountFilter string) (stats.Curve, error) {
	if accountFilter == "" {
		accountFilter = stats.AllAccounts
	}

	trades, err := s.ListTrades(userID, stats.AllAccounts)
	if err != nil {
		return stats.Curve{}, err
	}
	accounts, err := s.ListAccounts(userID)
	if err != nil {
		return stats.Curve{}, err
	}
	return stats.BuildEquityCurve(trades, accounts, accountFilter), nil
}

// invalidateStats drops every cached summary of one user. Called on each
// trade or account mutation so readers always see post-mutation numbers.
func (s *Service) invalidateStats(userID string) {
	prefix := userID + "\x00"
	s.mu.Lock()
	for key := range s.statsCache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.statsCache, key)
		}
	}
	s.mu.Unlock()
}

// ---- Mirror plumbing ----

const mirrorTimeout = 10 * time.Second

func (s *Service) mirrorTrade(trade models.Trade) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := s.mirror.PushTrade(ctx, trade); err != nil {
			s.log.Warn("Failed to mirror trade",
				zap.String("trade", trade.ID), zap.Error(err))
		}
	}()
}

func (s *Service) mirrorRemoval(userID, tradeID string) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := s.mirror.RemoveTrade(ctx, userID, tradeID); err != nil {
			s.log.Warn("Failed to mirror trade removal",
				zap.String("trade", tradeID), zap.Error(err))
		}
	}()
}
