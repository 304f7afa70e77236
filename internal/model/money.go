package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountPercent computes round(100 - price/original*100). It returns 0 when
// there is no markdown to show.
func DiscountPercent(price, original int64) int {
	if original <= 0 || price >= original {
		return 0
	}
	ratio := decimal.NewFromInt(price).Div(decimal.NewFromInt(original)).Mul(hundred)
	return int(hundred.Sub(ratio).Round(0).IntPart())
}

// FormatMinor renders an amount of minor units as a dollar string
func FormatMinor(amount int64) string {
	return "$" + decimal.New(amount, -2).StringFixed(2)
}
