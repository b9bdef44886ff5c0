package wallet

import (
	"math"
	"time"
)

// Derivation is pure: every function here recomputes from the transaction
// list it is handed and caches nothing.

// FilterByUser returns the transactions owned by userID. The persisted blob
// is shared across users, so this runs on every read, never on a cached
// unfiltered list.
func FilterByUser(txs []Transaction, userID string) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

// ActiveBetExposure sums the absolute amounts of unsettled bets: funds
// reserved by bets that have not yet resolved.
func ActiveBetExposure(txs []Transaction) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Type == TypeBet && tx.Status == StatusPending {
			sum += math.Abs(tx.Amount)
		}
	}
	return sum
}

// AvailableBalance is the spendable part of balance: balance minus active
// bet exposure, never negative.
func AvailableBalance(balance float64, txs []Transaction) float64 {
	return math.Max(0, balance-ActiveBetExposure(txs))
}

// ValidBalance reports whether amount is a positive stake covered by the
// available balance.
func ValidBalance(amount, available float64) bool {
	return amount > 0 && amount <= available
}

// ComputeStats derives the aggregate view from the full (already
// user-filtered) transaction list. Day and month rollups compare calendar
// fields in local time, not rolling windows.
func ComputeStats(txs []Transaction, now time.Time) WalletStats {
	var stats WalletStats

	for _, tx := range txs {
		abs := math.Abs(tx.Amount)
		today := sameDay(tx.CreatedAt, now)
		month := sameMonth(tx.CreatedAt, now)

		switch tx.Type {
		case TypeDeposit:
			if tx.Status == StatusCompleted {
				stats.TotalDeposited += abs
				if today {
					stats.TodayDeposited += abs
				}
				if month {
					stats.MonthDeposited += abs
				}
			}
		case TypeWithdraw:
			if tx.Status == StatusCompleted {
				stats.TotalWithdrawn += abs
				if today {
					stats.TodayWithdrawn += abs
				}
			}
			if tx.Status == StatusPending {
				stats.PendingWithdrawals += abs
			}
		case TypeBet:
			if tx.Status == StatusCompleted {
				stats.TotalWagered += abs
				if today {
					stats.TodayWagered += abs
				}
				if month {
					stats.MonthWagered += abs
				}
			}
			if tx.Status == StatusPending {
				stats.ActiveBets += abs
			}
		case TypeWin:
			if tx.Status == StatusCompleted {
				stats.TotalWon += abs
				if abs > stats.BiggestWin {
					stats.BiggestWin = abs
				}
				if today {
					stats.TodayWon += abs
				}
				if month {
					stats.MonthWon += abs
				}
			}
		}
	}

	// denominator floored at 1 so a fresh wallet reports 0%, not NaN
	stats.WinRate = stats.TotalWon / math.Max(stats.TotalWagered, 1) * 100

	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Local().Date()
	by, bm, _ := b.Local().Date()
	return ay == by && am == bm
}
