package models

// ClassifiedSet is the partition of a statement into payments and eligible
// purchases. Records matching neither predicate are only counted in Excluded.
type ClassifiedSet struct {
	Payments  []TransactionRecord
	Purchases []TransactionRecord
	Excluded  int
}

// MatchResult is the outcome of one reconciliation run.
type MatchResult struct {
	UnpaidPurchases []TransactionRecord `json:"unpaid_purchases" yaml:"unpaid_purchases"`

	TotalUnpaid    int64 `json:"total_unpaid" yaml:"total_unpaid"`
	TotalPayments  int64 `json:"total_payments" yaml:"total_payments"`
	TotalPurchases int64 `json:"total_purchases" yaml:"total_purchases"`
	// Difference is TotalPayments - TotalPurchases.
	Difference int64 `json:"difference" yaml:"difference"`

	PaymentCount  int `json:"payment_count" yaml:"payment_count"`
	PurchaseCount int `json:"purchase_count" yaml:"purchase_count"`
	MatchedCount  int `json:"matched_count" yaml:"matched_count"`
	ExcludedCount int `json:"excluded_count" yaml:"excluded_count"`
}

// AllPaid reports whether every eligible purchase found a payment.
func (m MatchResult) AllPaid() bool {
	return len(m.UnpaidPurchases) == 0
}

// NormalizeStats records what the normalizer read and what it had to coerce.
type NormalizeStats struct {
	RowsRead        int `json:"rows_read" yaml:"rows_read"`
	RowsKept        int `json:"rows_kept" yaml:"rows_kept"`
	DroppedNoDate   int `json:"dropped_no_date" yaml:"dropped_no_date"`
	CoercedAmounts  int `json:"coerced_amounts" yaml:"coerced_amounts"`
	SkippedMetadata int `json:"skipped_metadata" yaml:"skipped_metadata"`
}
