package stats

import (
	"testing"
	"time"

	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accounts(pairs ...string) []models.Account {
	var out []models.Account
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Account{ID: pairs[i], Name: pairs[i+1]})
	}
	return out
}

func pointValues(points []*float64) []any {
	out := make([]any, len(points))
	for i, p := range points {
		if p != nil {
			out[i] = *p
		}
	}
	return out
}

func TestBuildEquityCurve_Empty(t *testing.T) {
	curve := BuildEquityCurve(nil, nil, AllAccounts)

	assert.Empty(t, curve.Labels)
	assert.Empty(t, curve.Series)
}

func TestBuildEquityCurve_SingleAccount(t *testing.T) {
	trades := []models.Trade{
		trade("A", day(1), 100),
		trade("A", day(2), -50),
	}

	curve := BuildEquityCurve(trades, accounts("A", "Apex"), AllAccounts)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, curve.Labels)
	require.Len(t, curve.Series, 1)
	assert.Equal(t, "Apex", curve.Series[0].AccountName)
	assert.Equal(t, []any{100.0, 50.0}, pointValues(curve.Series[0].Points))
}

func TestBuildEquityCurve_SameDayTradesAreSummed(t *testing.T) {
	trades := []models.Trade{
		trade("A", day(1), 30),
		trade("A", day(1).Add(2*time.Hour), 20),
		trade("A", day(2), 10),
	}

	curve := BuildEquityCurve(trades, accounts("A", "Apex"), AllAccounts)

	require.Len(t, curve.Series, 1)
	assert.Equal(t, []any{50.0, 60.0}, pointValues(curve.Series[0].Points))
}

func TestBuildEquityCurve_DisjointAccounts(t *testing.T) {
	trades := []models.Trade{
		trade("A", day(1), 10),
		trade("B", day(2), 20),
	}

	curve := BuildEquityCurve(trades, accounts("A", "Alpha", "B", "Beta"), AllAccounts)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, curve.Labels)
	require.Len(t, curve.Series, 2)

	// Series order is by account name.
	alpha, beta := curve.Series[0], curve.Series[1]
	assert.Equal(t, "Alpha", alpha.AccountName)
	assert.Equal(t, "Beta", beta.AccountName)

	// Alpha carries its cumulative forward past day 1.
	assert.Equal(t, []any{10.0, 10.0}, pointValues(alpha.Points))
	// Beta is nil before its first trade, then cumulative.
	assert.Equal(t, []any{nil, 20.0}, pointValues(beta.Points))
}

func TestBuildEquityCurve_ZeroCumulativeIsPlotted(t *testing.T) {
	// Cumulative returns to exactly 0 on day 2; the point must stay
	// plotted, not turn into a gap.
	trades := []models.Trade{
		trade("A", day(1), 50),
		trade("A", day(2), -50),
	}

	curve := BuildEquityCurve(trades, accounts("A", "Apex"), AllAccounts)

	require.Len(t, curve.Series, 1)
	assert.Equal(t, []any{50.0, 0.0}, pointValues(curve.Series[0].Points))
}

func TestBuildEquityCurve_LabelsSortChronologically(t *testing.T) {
	trades := []models.Trade{
		trade("A", time.Date(2024, 2, 1, 12, 0, 0, 0, time.Local), 5),
		trade("A", time.Date(2023, 12, 31, 12, 0, 0, 0, time.Local), 1),
		trade("A", time.Date(2024, 1, 31, 12, 0, 0, 0, time.Local), 3),
	}

	curve := BuildEquityCurve(trades, accounts("A", "Apex"), AllAccounts)

	assert.Equal(t, []string{"2023-12-31", "2024-01-31", "2024-02-01"}, curve.Labels)
	assert.Equal(t, []any{1.0, 4.0, 9.0}, pointValues(curve.Series[0].Points))
}

func TestBuildEquityCurve_AccountFilter(t *testing.T) {
	trades := []models.Trade{
		trade("A", day(1), 10),
		trade("B", day(2), 20),
	}

	curve := BuildEquityCurve(trades, accounts("A", "Alpha", "B", "Beta"), "B")

	assert.Equal(t, []string{"2024-01-02"}, curve.Labels)
	require.Len(t, curve.Series, 1)
	assert.Equal(t, "Beta", curve.Series[0].AccountName)
}

func TestBuildEquityCurve_DanglingAccountReference(t *testing.T) {
	// Account deleted without cascading: the series falls back to the ID.
	trades := []models.Trade{trade("ghost", day(1), 10)}

	curve := BuildEquityCurve(trades, nil, AllAccounts)

	require.Len(t, curve.Series, 1)
	assert.Equal(t, "ghost", curve.Series[0].AccountName)
}

func TestBuildEquityCurve_DeterministicColors(t *testing.T) {
	trades := []models.Trade{
		trade("A", day(1), 1),
		trade("B", day(1), 2),
		trade("C", day(1), 3),
	}
	accs := accounts("A", "Alpha", "B", "Beta", "C", "Gamma")

	first := BuildEquityCurve(trades, accs, AllAccounts)
	second := BuildEquityCurve(trades, accs, AllAccounts)

	require.Equal(t, first, second)
	assert.Equal(t, palette[0], first.Series[0].Color)
	assert.Equal(t, palette[1], first.Series[1].Color)
	assert.Equal(t, palette[2], first.Series[2].Color)
}
