// Package currencyutils parses statement amounts into whole currency units
// and renders them for display.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	symbolPattern = regexp.MustCompile(`[€$£¥₣₤₧₹₺₽₩฿₫₲₴₸₼₪\s]|CLP|CHF|USD`)
	// 1.234 or -12.345.678: dots as thousands separators, no decimals
	dotGroupedPattern = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+$`)
)

// ParseAmount parses a statement amount into a decimal value.
// It accepts "1234", "-1234.5", "1.234.567", "1.234,56", "1'234.56",
// "$ 12.345" and similar layouts. An empty string is zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(amountStr)

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}

	return amount, nil
}

// StandardizeAmount rewrites an amount string into the form accepted by
// decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	amountStr = symbolPattern.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	// accounting style negatives: (1.234)
	if strings.HasPrefix(amountStr, "(") && strings.HasSuffix(amountStr, ")") {
		amountStr = "-" + strings.Trim(amountStr, "()")
	}

	hasComma := strings.Contains(amountStr, ",")
	hasDot := strings.Contains(amountStr, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case hasComma:
		parts := strings.Split(amountStr, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case hasDot && dotGroupedPattern.MatchString(amountStr):
		amountStr = strings.ReplaceAll(amountStr, ".", "")
	}

	return amountStr
}

// ToWholeUnits truncates toward zero. Fractional units are not modeled.
func ToWholeUnits(amount decimal.Decimal) int64 {
	return amount.Truncate(0).IntPart()
}

// ParseWholeAmount parses amountStr and truncates it to whole units.
func ParseWholeAmount(amountStr string) (int64, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return 0, err
	}
	return ToWholeUnits(amount), nil
}

// Formatter renders whole-unit amounts as symbol + grouped integer,
// e.g. "$1.234" or "$-3.000".
type Formatter struct {
	Symbol    string
	Separator string
	printer   *message.Printer
}

// NewFormatter returns a Formatter using symbol and the thousands separator.
func NewFormatter(symbol, separator string) *Formatter {
	return &Formatter{
		Symbol:    symbol,
		Separator: separator,
		printer:   message.NewPrinter(language.English),
	}
}

// Format renders amount without decimals.
func (f *Formatter) Format(amount int64) string {
	grouped := f.printer.Sprintf("%d", amount)
	if f.Separator != "," {
		grouped = strings.ReplaceAll(grouped, ",", f.Separator)
	}
	return f.Symbol + grouped
}
