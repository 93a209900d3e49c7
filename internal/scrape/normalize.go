package scrape

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizePrice converts raw price text such as "₹12,999" into a decimal
// amount. Currency symbols, thousands separators, and whitespace are
// stripped; only digits and the decimal point survive. The second return
// is false when the input is empty or no parseable amount remains.
// Malformed input is a valid "unparseable" outcome, never an error.
func NormalizePrice(raw string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, ch := range raw {
		if (ch >= '0' && ch <= '9') || ch == '.' {
			b.WriteRune(ch)
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "." {
		return decimal.Decimal{}, false
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if price.IsNegative() {
		return decimal.Decimal{}, false
	}
	return price, true
}
