package journal

import (
	"context"
	"testing"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/money"
	"trade-journal-go/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupService creates a service over a fresh in-memory database with the
// NQ instrument seeded.
func setupService(t *testing.T) *Service {
	// Use a new, non-shared in-memory database for each test to ensure isolation.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := config.Config{
		Catalog: []config.Seed{
			{Symbol: "NQ", Name: "Mini Nasdaq", Market: "CME", TickSize: 0.25, ValuePerTick: 5.00, ContractSize: 1},
		},
	}
	require.NoError(t, database.Migrate(db, &cfg))

	return NewService(zap.NewNop(), db, nil)
}

func mustAccount(t *testing.T, s *Service, userID, name string) models.Account {
	account, err := s.CreateAccount(userID, AccountInput{Name: name, Type: models.AccountTypeDemo})
	require.NoError(t, err)
	return account
}

func mustTrade(t *testing.T, s *Service, userID, accountID string, in TradeInput) models.Trade {
	in.AccountID = accountID
	if in.InstrumentSymbol == "" {
		in.InstrumentSymbol = "NQ"
	}
	if in.Direction == "" {
		in.Direction = models.DirectionBuy
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	trade, err := s.CreateTrade(context.Background(), userID, in)
	require.NoError(t, err)
	return trade
}

func TestCreateTrade_DerivesResults(t *testing.T) {
	s := setupService(t)
	account := mustAccount(t, s, "u1", "Apex")

	trade, err := s.CreateTrade(context.Background(), "u1", TradeInput{
		AccountID:        account.ID,
		InstrumentSymbol: "NQ",
		Direction:        models.DirectionBuy,
		Quantity:         2,
		EntryPrice:       15000,
		ExitPrice:        15010,
		Commission:       4.5,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, trade.ID)
	// 10 points / 0.25 tick = 40 ticks; 40 * 5.00 * 2 contracts.
	assert.InDelta(t, 400.0, trade.GrossResult, 1e-9)
	assert.InDelta(t, 4.5, trade.Commission, 1e-9)
	assert.InDelta(t, 395.5, trade.NetResult, 1e-9)
	assert.False(t, trade.ExecutedAt.IsZero())
}

func TestCreateTrade_BackSolvedCommission(t *testing.T) {
	s := setupService(t)
	account := mustAccount(t, s, "u1", "Apex")

	reported := money.Value(395.5)
	trade, err := s.CreateTrade(context.Background(), "u1", TradeInput{
		AccountID:        account.ID,
		InstrumentSymbol: "NQ",
		Direction:        models.DirectionBuy,
		Quantity:         2,
		EntryPrice:       15000,
		ExitPrice:        15010,
		Commission:       999, // ignored in back-solve mode
		ReportedNet:      &reported,
	})

	require.NoError(t, err)
	assert.InDelta(t, 4.5, trade.Commission, 1e-9)
	assert.InDelta(t, 395.5, trade.NetResult, 1e-9)
	// Both entry modes converge on the same identity.
	assert.InDelta(t, trade.GrossResult-trade.Commission, trade.NetResult, 1e-9)
}

func TestCreateTrade_Validation(t *testing.T) {
	s := setupService(t)
	account := mustAccount(t, s, "u1", "Apex")
	ctx := context.Background()

	_, err := s.CreateTrade(ctx, "u1", TradeInput{
		AccountID: account.ID, InstrumentSymbol: "NQ", Direction: "sideways", Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.CreateTrade(ctx, "u1", TradeInput{
		AccountID: account.ID, InstrumentSymbol: "NQ", Direction: models.DirectionBuy, Quantity: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.CreateTrade(ctx, "u1", TradeInput{
		AccountID: "missing", InstrumentSymbol: "NQ", Direction: models.DirectionBuy, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateTrade(ctx, "u1", TradeInput{
		AccountID: account.ID, InstrumentSymbol: "XX", Direction: models.DirectionBuy, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserScoping(t *testing.T) {
	s := setupService(t)
	accountA := mustAccount(t, s, "alice", "Alice's")
	mustAccount(t, s, "bob", "Bob's")
	trade := mustTrade(t, s, "alice", accountA.ID, TradeInput{EntryPrice: 100, ExitPrice: 101})

	// Bob sees neither Alice's account nor her trades.
	bobAccounts, err := s.ListAccounts("bob")
	require.NoError(t, err)
	require.Len(t, bobAccounts, 1)
	assert.Equal(t, "Bob's", bobAccounts[0].Name)

	bobTrades, err := s.ListTrades("bob", stats.AllAccounts)
	require.NoError(t, err)
	assert.Empty(t, bobTrades)

	// And cannot delete them.
	assert.ErrorIs(t, s.DeleteTrade(context.Background(), "bob", trade.ID), ErrNotFound)
	assert.ErrorIs(t, s.DeleteAccount("bob", accountA.ID, true), ErrNotFound)
}

func TestDeleteAccount_CascadePolicy(t *testing.T) {
	s := setupService(t)
	account := mustAccount(t, s, "u1", "Apex")
	mustTrade(t, s, "u1", account.ID, TradeInput{EntryPrice: 100, ExitPrice: 101})

	// Without cascade the delete is refused and nothing changes.
	err := s.DeleteAccount("u1", account.ID, false)
	assert.ErrorIs(t, err, ErrAccountHasTrades)

	accounts, err := s.ListAccounts("u1")
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	// With cascade the account and its trades go together.
	require.NoError(t, s.DeleteAccount("u1", account.ID, true))

	accounts, err = s.ListAccounts("u1")
	require.NoError(t, err)
	assert.Empty(t, accounts)

	trades, err := s.ListTrades("u1", stats.AllAccounts)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestClearAccountTrades(t *testing.T) {
	s := setupService(t)
	account := mustAccount(t, s, "u1", "Apex")
	other := mustAccount(t, s, "u1", "Backup")
	mustTrade(t, s, "u1", account.ID, TradeInput{EntryPrice: 100, ExitPrice: 101})
	mustTrade(t, s, "u1", account.ID, TradeInput{EntryPrice: 100, ExitPrice: 99})
	mustTrade(t, s, "u1", other.ID, TradeInput{EntryPrice: 100, ExitPrice: 102})

	deleted, err := s.DeleteTradesByAccount(context.Background(), "u1", account.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	remaining, err := s.ListTrades("u1", stats.AllAccounts)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].AccountID)
}

func TestStatistics_InvalidatedOnMutation(t *testing.T) {
	s := setupService(t)
	account := mustAccount(t, s, "u1", "Apex")
	mustTrade(t, s, "u1", account.ID, TradeInput{EntryPrice: 15000, ExitPrice: 15010})

	before, err := s.Statistics("u1", stats.AllAccounts)
	require.NoError(t, err)
	assert.Equal(t, 1, before.TotalTrades)

	// Cached result is reused until the next mutation...
	again, err := s.Statistics("u1", stats.AllAccounts)
	require.NoError(t, err)
	assert.Equal(t, before, again)

	// ...and a new trade invalidates it immediately.
	mustTrade(t, s, "u1", account.ID, TradeInput{EntryPrice: 15000, ExitPrice: 14990})

	after, err := s.Statistics("u1", stats.AllAccounts)
	require.NoError(t, err)
	assert.Equal(t, 2, after.TotalTrades)
	assert.Equal(t, 1, after.Wins)
	assert.Equal(t, 1, after.Losses)
}

func TestEquityCurve_UsesAccountNames(t *testing.T) {
	s := setupService(t)
	account := mustAccount(t, s, "u1", "Apex")
	mustTrade(t, s, "u1", account.ID, TradeInput{
		EntryPrice: 15000, ExitPrice: 15010,
		ExecutedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local),
	})

	curve, err := s.EquityCurve("u1", stats.AllAccounts)
	require.NoError(t, err)
	require.Len(t, curve.Series, 1)
	assert.Equal(t, "Apex", curve.Series[0].AccountName)
	assert.Equal(t, []string{"2024-01-01"}, curve.Labels)
}

func TestChallengeLifecycle(t *testing.T) {
	s := setupService(t)

	challenge, err := s.StartChallenge("u1", ChallengeInput{
		Name:     "5 dias no verde",
		Duration: "5 dias úteis",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeActive, challenge.Status)

	done, err := s.CompleteChallenge("u1", challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeCompleted, done.Status)
	require.NotNil(t, done.FinishedAt)

	// A finished challenge cannot change state again.
	_, err = s.AbandonChallenge("u1", challenge.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Another user's challenge is invisible.
	_, err = s.CompleteChallenge("u2", challenge.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChecklist_DefaultAndUpsert(t *testing.T) {
	s := setupService(t)

	// Unsaved day serves the default template, all unchecked.
	entry, err := s.ChecklistDay("u1", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistPending, entry.Status())
	require.Len(t, entry.Items, len(DefaultChecklist))

	// Check everything and save; the day becomes complete.
	for i := range entry.Items {
		entry.Items[i].Checked = true
	}
	saved, err := s.SaveChecklistDay("u1", "2024-03-01", entry.Items)
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistComplete, saved.Status())

	// Uncheck one and save again: upsert, not a second row.
	saved.Items[0].Checked = false
	saved, err = s.SaveChecklistDay("u1", "2024-03-01", saved.Items)
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistIncomplete, saved.Status())

	statuses, err := s.ChecklistMonth("u1", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"2024-03-01": models.ChecklistIncomplete}, statuses)

	_, err = s.ChecklistDay("u1", "not-a-date")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// stubMirror records pushed trades for assertions.
type stubMirror struct {
	pushed  chan models.Trade
	removed chan string
}

func (m *stubMirror) PushTrade(ctx context.Context, trade models.Trade) error {
	m.pushed <- trade
	return nil
}

func (m *stubMirror) RemoveTrade(ctx context.Context, userID, tradeID string) error {
	m.removed <- tradeID
	return nil
}

func TestMirrorReceivesMutations(t *testing.T) {
	s := setupService(t)
	mirror := &stubMirror{
		pushed:  make(chan models.Trade, 1),
		removed: make(chan string, 1),
	}
	s.mirror = mirror

	account := mustAccount(t, s, "u1", "Apex")
	trade := mustTrade(t, s, "u1", account.ID, TradeInput{EntryPrice: 100, ExitPrice: 101})

	select {
	case pushed := <-mirror.pushed:
		assert.Equal(t, trade.ID, pushed.ID)
	case <-time.After(time.Second):
		t.Fatal("trade was never mirrored")
	}

	require.NoError(t, s.DeleteTrade(context.Background(), "u1", trade.ID))
	select {
	case removed := <-mirror.removed:
		assert.Equal(t, trade.ID, removed)
	case <-time.After(time.Second):
		t.Fatal("trade removal was never mirrored")
	}
}
