// Package reconciler matches single-installment card purchases against
// payments and reports the purchases left without a settlement.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// logging and no shared state, so separate statements can be reconciled from
// separate goroutines without coordination.
package reconciler

import (
	"fjacquet/card-recon/internal/models"
)

// ClassifierConfig holds the read-only matching options for Classify.
type ClassifierConfig struct {
	// PaymentDescriptions are the exact (case-sensitive) descriptions that identify a payment.
	PaymentDescriptions []string
	// SingleInstallmentToken is the installment plan value of an eligible purchase, e.g. "01/01".
	SingleInstallmentToken string
}

// Classify partitions records into payments and eligible purchases.
//
// A record is a payment when its description equals one of the configured
// payment descriptions; payment amounts are stored as absolute values. A
// non-payment record is an eligible purchase when its installment plan equals
// the single-installment token. Everything else is excluded and only counted.
// Input order is preserved within each output sequence.
func Classify(records []models.TransactionRecord, cfg ClassifierConfig) models.ClassifiedSet {
	paymentSet := make(map[string]struct{}, len(cfg.PaymentDescriptions))
	for _, d := range cfg.PaymentDescriptions {
		paymentSet[d] = struct{}{}
	}

	set := models.ClassifiedSet{
		Payments:  []models.TransactionRecord{},
		Purchases: []models.TransactionRecord{},
	}

	for _, r := range records {
		if _, ok := paymentSet[r.Description]; ok {
			set.Payments = append(set.Payments, r.WithAmount(abs(r.Amount)))
			continue
		}
		// An empty token never matches: a record without an installment plan is not a purchase.
		if cfg.SingleInstallmentToken != "" && r.InstallmentPlan == cfg.SingleInstallmentToken {
			set.Purchases = append(set.Purchases, r)
			continue
		}
		set.Excluded++
	}

	return set
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
