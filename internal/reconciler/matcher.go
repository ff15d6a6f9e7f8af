package reconciler

import (
	"sort"

	"fjacquet/card-recon/internal/models"
)

// countAmounts builds the multiplicity of each amount in records.
func countAmounts(records []models.TransactionRecord) map[int64]int {
	counts := make(map[int64]int)
	for _, r := range records {
		counts[r.Amount]++
	}
	return counts
}

// MatchedCounts returns, per amount, how many purchases are settled by a
// payment of the same amount: min(purchases with that amount, payments with
// that amount). Amounts without any match are absent from the map.
//
// Matching is by multiplicity only; it never decides which payment settled
// which purchase.
func MatchedCounts(payments, purchases []models.TransactionRecord) map[int64]int {
	purchaseCounts := countAmounts(purchases)
	paymentCounts := countAmounts(payments)

	matched := make(map[int64]int)
	for amount, paid := range paymentCounts {
		k := min(purchaseCounts[amount], paid)
		if k > 0 {
			matched[amount] = k
		}
	}
	return matched
}

// FilterUnpaid walks purchases in input order and returns those left unpaid.
// For every amount the first matched[amount] purchases encountered are
// consumed as paid; later purchases of that amount are unpaid. matched is not
// modified. The result keeps input order.
func FilterUnpaid(purchases []models.TransactionRecord, matched map[int64]int) []models.TransactionRecord {
	consumed := make(map[int64]int, len(matched))
	unpaid := []models.TransactionRecord{}

	for _, p := range purchases {
		if consumed[p.Amount] < matched[p.Amount] {
			consumed[p.Amount]++
			continue
		}
		unpaid = append(unpaid, p)
	}
	return unpaid
}

// Match reconciles payments against purchases and computes the totals.
//
// Unpaid purchases are sorted by date ascending; purchases on the same date
// keep the order FilterUnpaid produced. Payment and purchase totals cover the
// full input sets, the unpaid total only the unpaid subset.
func Match(payments, purchases []models.TransactionRecord) models.MatchResult {
	matched := MatchedCounts(payments, purchases)
	unpaid := FilterUnpaid(purchases, matched)

	sort.SliceStable(unpaid, func(i, j int) bool {
		return unpaid[i].Date.Before(unpaid[j].Date)
	})

	totalPayments := sum(payments)
	totalPurchases := sum(purchases)

	return models.MatchResult{
		UnpaidPurchases: unpaid,
		TotalUnpaid:     sum(unpaid),
		TotalPayments:   totalPayments,
		TotalPurchases:  totalPurchases,
		Difference:      totalPayments - totalPurchases,
		PaymentCount:    len(payments),
		PurchaseCount:   len(purchases),
		MatchedCount:    len(purchases) - len(unpaid),
	}
}

// Reconcile classifies records with cfg and matches the resulting sets.
func Reconcile(records []models.TransactionRecord, cfg ClassifierConfig) models.MatchResult {
	set := Classify(records, cfg)
	result := Match(set.Payments, set.Purchases)
	result.ExcludedCount = set.Excluded
	return result
}

func sum(records []models.TransactionRecord) int64 {
	var total int64
	for _, r := range records {
		total += r.Amount
	}
	return total
}
