package products

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// SelectTier returns the first tier whose inclusive range contains quantity.
// Products with HasDiscount unset never match, whatever tiers remain stored.
func SelectTier(product *models.Product, tiers []models.DiscountTier, quantity int) *models.DiscountTier {
	if product == nil || !product.HasDiscount {
		return nil
	}
	for i := range tiers {
		if tiers[i].Contains(quantity) {
			return &tiers[i]
		}
	}
	return nil
}

// ApplyDiscount reduces price by percent and rounds to cents.
func ApplyDiscount(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return price.Round(2)
	}
	reduction := price.Mul(percent).Div(hundred)
	return price.Sub(reduction).Round(2)
}

// ParseDiscountPercent accepts values such as "15%", " 12.5 % " or "40".
func ParseDiscountPercent(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if cleaned == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "discount is required")
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "discount %q is not a number", raw)
	}
	if value.IsNegative() || value.GreaterThan(hundred) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0% and 100%")
	}
	return value, nil
}

// findOverlap reports the first pair of ranges that intersect, comparing the
// candidate batch against existing tiers and against itself.
func findOverlap(existing []models.DiscountTier, batch []TierInput) (*TierInput, *models.DiscountTier) {
	for i := range batch {
		candidate := batch[i]
		for j := range existing {
			if existing[j].Overlaps(candidate.StartRange, candidate.EndRange) {
				return &batch[i], &existing[j]
			}
		}
		for j := 0; j < i; j++ {
			prior := models.DiscountTier{StartRange: batch[j].StartRange, EndRange: batch[j].EndRange}
			if prior.Overlaps(candidate.StartRange, candidate.EndRange) {
				return &batch[i], &prior
			}
		}
	}
	return nil, nil
}
