package service

import (
	"strings"
	"unicode"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a user-entered price into a whole-unit decimal. The
// input may carry "." thousands separators ("1.234" means 1234); anything
// that is not digits after stripping them is rejected, as are negatives.
func ParsePrice(input string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), ".", "")
	if cleaned == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	for _, r := range cleaned {
		if !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidPrice
		}
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	return price, nil
}

// ComputeTotals recomputes the running invoice aggregates from the draft
// set. Only sold items count; a box contributes its Total2 as quantity,
// everything else one unit.
//
//	totalSold = Σ salePrice × qty
//	totalEarn = Σ (salePrice − basePrice) × qty
func ComputeTotals(items []model.DraftItem) (totalSold, totalEarn decimal.Decimal) {
	totalSold = decimal.Zero
	totalEarn = decimal.Zero
	for _, item := range items {
		if !item.Sold {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity()))
		totalSold = totalSold.Add(item.SalePrice.Mul(qty))
		totalEarn = totalEarn.Add(item.SalePrice.Sub(item.BasePrice).Mul(qty))
	}
	return totalSold, totalEarn
}
