package wallet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tx(txType TransactionType, status TransactionStatus, amount float64, createdAt time.Time) Transaction {
	return Transaction{
		ID:        "tx-" + string(txType) + "-" + createdAt.String(),
		UserID:    "u1",
		Type:      txType,
		Status:    status,
		Amount:    amount,
		Currency:  "USD",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestActiveBetExposure(t *testing.T) {
	now := time.Now()
	txs := []Transaction{
		tx(TypeBet, StatusPending, -20, now),
		tx(TypeBet, StatusPending, -30, now),
		tx(TypeBet, StatusCompleted, -50, now),
		tx(TypeWin, StatusCompleted, 10, now),
	}

	assert.InDelta(t, 50, ActiveBetExposure(txs), 0.001)
	assert.InDelta(t, 50, AvailableBalance(100, txs), 0.001)
}

func TestAvailableBalanceNeverNegative(t *testing.T) {
	now := time.Now()
	txs := []Transaction{tx(TypeBet, StatusPending, -200, now)}

	assert.Zero(t, AvailableBalance(100, txs))
}

func TestValidBalanceBounds(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		available float64
		want      bool
	}{
		{"zero amount", 0, 80, false},
		{"negative amount", -1, 80, false},
		{"exactly available", 80, 80, true},
		{"one over", 81, 80, false},
		{"well under", 10, 80, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidBalance(tt.amount, tt.available))
		})
	}
}

func TestComputeStatsScenario(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	txs := []Transaction{
		tx(TypeBet, StatusCompleted, -50, now),
		tx(TypeWin, StatusCompleted, 120, now),
	}

	stats := ComputeStats(txs, now)

	assert.InDelta(t, 50, stats.TotalWagered, 0.001)
	assert.InDelta(t, 120, stats.TotalWon, 0.001)
	assert.InDelta(t, 120, stats.BiggestWin, 0.001)
	assert.InDelta(t, 240, stats.WinRate, 0.001)
	assert.InDelta(t, 50, stats.TodayWagered, 0.001)
	assert.InDelta(t, 120, stats.TodayWon, 0.001)
}

func TestComputeStatsEmptyLedger(t *testing.T) {
	stats := ComputeStats(nil, time.Now())

	// zero wagered must not blow up the win rate; empty set reports neutral values
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.BiggestWin)
	assert.Zero(t, stats.TotalWagered)
}

func TestComputeStatsWinRateFloorsDenominator(t *testing.T) {
	now := time.Now()
	stats := ComputeStats([]Transaction{tx(TypeWin, StatusCompleted, 30, now)}, now)

	// wagered 0 -> denominator floored at 1
	assert.InDelta(t, 3000, stats.WinRate, 0.001)
}

func TestComputeStatsCalendarRollups(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	yesterday := time.Date(2025, 6, 14, 23, 0, 0, 0, time.Local)
	lastMonth := time.Date(2025, 5, 20, 12, 0, 0, 0, time.Local)

	txs := []Transaction{
		tx(TypeDeposit, StatusCompleted, 100, now),
		tx(TypeDeposit, StatusCompleted, 200, yesterday),
		tx(TypeDeposit, StatusCompleted, 400, lastMonth),
	}

	stats := ComputeStats(txs, now)

	assert.InDelta(t, 700, stats.TotalDeposited, 0.001)
	// calendar-day equality, not a rolling 24h window
	assert.InDelta(t, 100, stats.TodayDeposited, 0.001)
	// calendar-month equality, not a rolling 30d window
	assert.InDelta(t, 300, stats.MonthDeposited, 0.001)
}

func TestComputeStatsPendingBuckets(t *testing.T) {
	now := time.Now()
	txs := []Transaction{
		tx(TypeWithdraw, StatusPending, -80, now),
		tx(TypeWithdraw, StatusCompleted, -40, now),
		tx(TypeBet, StatusPending, -25, now),
	}

	stats := ComputeStats(txs, now)

	assert.InDelta(t, 80, stats.PendingWithdrawals, 0.001)
	assert.InDelta(t, 40, stats.TotalWithdrawn, 0.001)
	assert.InDelta(t, 25, stats.ActiveBets, 0.001)
}

func TestFilterByUser(t *testing.T) {
	now := time.Now()
	mine := tx(TypeBet, StatusCompleted, -10, now)
	theirs := tx(TypeBet, StatusCompleted, -20, now)
	theirs.UserID = "u2"

	got := FilterByUser([]Transaction{mine, theirs}, "u1")
	assert.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)
}
