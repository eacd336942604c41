package stats

import (
	"sort"
	"time"

	"trade-journal-go/internal/models"
)

// DateLayout is the calendar-date format of equity curve labels.
const DateLayout = "2006-01-02"

// Line colors assigned to account series by position, wrapping around.
var palette = []string{"#00ff87", "#60efff", "#ff944d", "#ff4444", "#9c27b0"}

// Series is one account's cumulative net result over the curve's label
// axis. Points before the account's first trade date are nil; from the
// first trade date onward every point carries the running cumulative, even
// when it is exactly zero.
type Series struct {
	AccountID   string     `json:"account_id"`
	AccountName string     `json:"account_name"`
	Color       string     `json:"color"`
	Points      []*float64 `json:"points"`
}

// Curve is a chartable equity curve: one label per distinct calendar date
// present in the data, sorted ascending, and one series per account.
type Curve struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// BuildEquityCurve derives the per-account cumulative equity curve from the
// given trades, restricted to one account unless accountFilter is
// AllAccounts. Calendar dates use local time; trades on the same day are
// summed before accumulation. Accounts is used only to resolve display
// names; a dangling account reference falls back to the raw account ID.
func BuildEquityCurve(trades []models.Trade, accounts []models.Account, accountFilter string) Curve {
	filtered := filterByAccount(trades, accountFilter)
	if len(filtered) == 0 {
		return Curve{Labels: []string{}, Series: []Series{}}
	}

	// Daily net sums per account, plus the union of all dates.
	dailyNet := make(map[string]map[string]float64)
	firstDate := make(map[string]string)
	dateSet := make(map[string]struct{})

	for _, trade := range filtered {
		date := trade.ExecutedAt.Local().Format(DateLayout)
		dateSet[date] = struct{}{}

		if dailyNet[trade.AccountID] == nil {
			dailyNet[trade.AccountID] = make(map[string]float64)
		}
		dailyNet[trade.AccountID][date] += trade.NetResult

		if first, ok := firstDate[trade.AccountID]; !ok || date < first {
			firstDate[trade.AccountID] = date
		}
	}

	// DateLayout strings order the same lexically and chronologically, but
	// sort actual dates so a layout change can never silently break this.
	labels := make([]string, 0, len(dateSet))
	for date := range dateSet {
		labels = append(labels, date)
	}
	sort.Slice(labels, func(i, j int) bool {
		ti, _ := time.Parse(DateLayout, labels[i])
		tj, _ := time.Parse(DateLayout, labels[j])
		return ti.Before(tj)
	})

	// Deterministic series order: by display name, then ID.
	names := make(map[string]string, len(accounts))
	for _, account := range accounts {
		names[account.ID] = account.Name
	}
	accountIDs := make([]string, 0, len(dailyNet))
	for id := range dailyNet {
		accountIDs = append(accountIDs, id)
	}
	sort.Slice(accountIDs, func(i, j int) bool {
		ni, nj := seriesName(names, accountIDs[i]), seriesName(names, accountIDs[j])
		if ni != nj {
			return ni < nj
		}
		return accountIDs[i] < accountIDs[j]
	})

	series := make([]Series, 0, len(accountIDs))
	for i, accountID := range accountIDs {
		points := make([]*float64, len(labels))
		cumulative := 0.0
		for j, date := range labels {
			if date < firstDate[accountID] {
				continue // nil until the account's first activity
			}
			cumulative += dailyNet[accountID][date]
			value := cumulative
			points[j] = &value
		}
		series = append(series, Series{
			AccountID:   accountID,
			AccountName: seriesName(names, accountID),
			Color:       palette[i%len(palette)],
			Points:      points,
		})
	}

	return Curve{Labels: labels, Series: series}
}

func seriesName(names map[string]string, accountID string) string {
	if name, ok := names[accountID]; ok && name != "" {
		return name
	}
	return accountID
}
