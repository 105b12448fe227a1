package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	saleMarkup      = decimal.RequireFromString("1.10")
	fullPriceFactor = decimal.NewFromInt(2)
	hundred         = decimal.NewFromInt(100)
)

// TaxRate is the fixed tax rate applied to exported prices, in percent.
const TaxRate = 0

// Prices are the monetary columns of a preliminary export row.
type Prices struct {
	SaleWithTax    string
	SaleWithoutTax string
	FullWithTax    string
	FullWithoutTax string
}

// ParsePrice reads the longest numeric prefix of a price string, so
// "12.99 RON" is 12.99 and "1,299.00" is 1. A nil price, or one without a
// leading number, reads as zero.
func ParsePrice(price *string) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}
	prefix := numericPrefix(strings.TrimSpace(*price))
	if prefix == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// numericPrefix returns the longest leading float literal of s: an optional
// sign, digits with at most one '.', and an exponent only when it has digits.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
		if digits > 0 {
			i = j
		}
	}
	if digits == 0 {
		return ""
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}
	out := strings.NewReplacer(".e", "e", ".E", "e").Replace(s[:end])
	out = strings.TrimSuffix(out, ".")
	sign := ""
	switch out[0] {
	case '-':
		sign, out = "-", out[1:]
	case '+':
		out = out[1:]
	}
	if out[0] == '.' {
		out = "0" + out
	}
	return sign + out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// ComputePrices derives the export prices from the source price:
// sale with tax is price x 1.10, sale without tax removes TaxRate percent,
// and full prices are twice the sale prices. Values keep two decimals.
func ComputePrices(price decimal.Decimal) Prices {
	saleWithTax := price.Mul(saleMarkup)
	saleWithoutTax := saleWithTax.Mul(hundred.Sub(decimal.NewFromInt(TaxRate))).Div(hundred)
	return Prices{
		SaleWithTax:    saleWithTax.StringFixed(2),
		SaleWithoutTax: saleWithoutTax.StringFixed(2),
		FullWithTax:    saleWithTax.Mul(fullPriceFactor).StringFixed(2),
		FullWithoutTax: saleWithoutTax.Mul(fullPriceFactor).StringFixed(2),
	}
}
