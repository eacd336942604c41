// Package stats turns flat trade records into aggregate performance
// metrics and per-account equity curves. Everything here is pure: no I/O,
// no clock, deterministic for a given input.
package stats

import (
	"math"
	"sort"

	"trade-journal-go/internal/models"
)

// AllAccounts disables account filtering.
const AllAccounts = "all"

// Stats summarizes the performance of a set of trades.
type Stats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"` // percent, 0-100
	GrossResult float64 `json:"gross_result"`
	Commission  float64 `json:"commission"`
	NetResult   float64 `json:"net_result"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"` // positive magnitude
	// ProfitFactor is |avgWin / avgLoss|, 0 when there are no losses.
	ProfitFactor float64 `json:"profit_factor"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"` // most negative net result
	MaxDrawdown  float64 `json:"max_drawdown"` // positive magnitude
}

// Compute aggregates the given trades into a Stats summary, restricted to
// one account unless accountFilter is AllAccounts. Trades with a zero net
// result count toward TotalTrades but are neither wins nor losses. Empty
// input yields a zero Stats; no division ever produces NaN or Inf.
func Compute(trades []models.Trade, accountFilter string) Stats {
	filtered := filterByAccount(trades, accountFilter)

	// Drawdown is a path statistic: it only means something when the
	// cumulative walk follows execution time.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ExecutedAt.Before(filtered[j].ExecutedAt)
	})

	s := Stats{TotalTrades: len(filtered)}

	var sumWins, sumLosses float64
	var cumulative, peak, drawdown float64

	for _, trade := range filtered {
		net := trade.NetResult

		s.GrossResult += trade.GrossResult
		s.Commission += trade.Commission
		s.NetResult += net

		switch {
		case net > 0:
			s.Wins++
			sumWins += net
			s.LargestWin = math.Max(s.LargestWin, net)
		case net < 0:
			s.Losses++
			sumLosses += -net
			s.LargestLoss = math.Min(s.LargestLoss, net)
		}

		cumulative += net
		peak = math.Max(peak, cumulative)
		drawdown = math.Min(drawdown, cumulative-peak)
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
	}
	if s.Wins > 0 {
		s.AvgWin = sumWins / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = sumLosses / float64(s.Losses)
	}
	if s.AvgLoss != 0 {
		s.ProfitFactor = math.Abs(s.AvgWin / s.AvgLoss)
	}
	s.MaxDrawdown = math.Abs(drawdown)

	return s
}

func filterByAccount(trades []models.Trade, accountFilter string) []models.Trade {
	if accountFilter == AllAccounts || accountFilter == "" {
		return append([]models.Trade(nil), trades...)
	}
	var out []models.Trade
	for _, trade := range trades {
		if trade.AccountID == accountFilter {
			out = append(out, trade)
		}
	}
	return out
}
