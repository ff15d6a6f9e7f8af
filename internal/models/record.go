// Package models provides the data structures used throughout the application.
package models

import (
	"time"
)

// TransactionRecord is one canonical statement row, produced by the normalizer
// and consumed by the reconciler. Records are treated as immutable values.
type TransactionRecord struct {
	Date               time.Time `json:"date" yaml:"date"`
	CardType           string    `json:"card_type" yaml:"card_type"`
	Description        string    `json:"description" yaml:"description"`
	City               string    `json:"city" yaml:"city"`
	InstallmentPlan    string    `json:"installment_plan" yaml:"installment_plan"`         // e.g. "01/01" (current/total)
	InstallmentPlanAlt string    `json:"installment_plan_alt" yaml:"installment_plan_alt"` // second installments column of the export, kept verbatim
	Amount             int64     `json:"amount" yaml:"amount"`                             // whole currency units, signed as recorded
}

// WithAmount returns a copy of the record carrying the given amount.
func (r TransactionRecord) WithAmount(amount int64) TransactionRecord {
	r.Amount = amount
	return r
}

// CleanRow is the tabular form of a TransactionRecord as written to the cleaned
// movements file. Column names follow the cleaned export layout.
type CleanRow struct {
	Date               string `csv:"Date"`
	CardType           string `csv:"Card Type"`
	Description        string `csv:"Description"`
	City               string `csv:"City"`
	InstallmentPlan    string `csv:"Installments"`
	InstallmentPlanAlt string `csv:"Installments 2"`
	Amount             string `csv:"Amount ($)"`
}

// CleanHeader lists the cleaned file columns in output order.
var CleanHeader = []string{
	"Date",
	"Card Type",
	"Description",
	"City",
	"Installments",
	"Installments 2",
	"Amount ($)",
}

// Values returns the row cells in CleanHeader order.
func (c CleanRow) Values() []string {
	return []string{
		c.Date,
		c.CardType,
		c.Description,
		c.City,
		c.InstallmentPlan,
		c.InstallmentPlanAlt,
		c.Amount,
	}
}
