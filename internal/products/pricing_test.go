package products

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func tier(start, end int, pct string) models.DiscountTier {
	return models.DiscountTier{StartRange: start, EndRange: end, DiscountPercent: decimal.RequireFromString(pct)}
}

func TestSelectTierBoundaries(t *testing.T) {
	product := &models.Product{HasDiscount: true}
	tiers := []models.DiscountTier{tier(1, 5, "10"), tier(6, 10, "20")}

	cases := map[int]string{1: "10", 5: "10", 6: "20", 10: "20", 11: ""}
	for quantity, want := range cases {
		got := SelectTier(product, tiers, quantity)
		if want == "" {
			if got != nil {
				t.Fatalf("quantity %d: expected no tier, got %+v", quantity, got)
			}
			continue
		}
		if got == nil || !got.DiscountPercent.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("quantity %d: expected %s%%, got %+v", quantity, want, got)
		}
	}
}

func TestSelectTierIgnoresTiersWhenDiscountDisabled(t *testing.T) {
	product := &models.Product{HasDiscount: false}
	tiers := []models.DiscountTier{tier(1, 100, "50")}
	for _, quantity := range []int{1, 50, 100} {
		if got := SelectTier(product, tiers, quantity); got != nil {
			t.Fatalf("quantity %d: expected stale tiers to be ignored", quantity)
		}
	}
}

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		price, pct, want string
	}{
		{price: "100", pct: "15", want: "85"},
		{price: "100", pct: "0", want: "100"},
		{price: "19.99", pct: "12.5", want: "17.49"},
		{price: "10", pct: "100", want: "0"},
		{price: "33.333", pct: "0", want: "33.33"},
	}
	for _, tc := range cases {
		got := ApplyDiscount(decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.pct))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%s at %s%%: expected %s got %s", tc.price, tc.pct, tc.want, got)
		}
	}
}

func TestParseDiscountPercent(t *testing.T) {
	valid := map[string]string{"15%": "15", " 12.5 % ": "12.5", "0%": "0", "100": "100"}
	for raw, want := range valid {
		got, err := ParseDiscountPercent(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("%q: expected %s got %s", raw, want, got)
		}
	}

	for _, raw := range []string{"", "%", "abc%", "-1%", "100.01%", "NaN"} {
		_, err := ParseDiscountPercent(raw)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", raw, err)
		}
	}
}

func TestFindOverlap(t *testing.T) {
	existing := []models.DiscountTier{tier(10, 20, "15")}

	cases := []struct {
		name  string
		batch []TierInput
		clash bool
	}{
		{name: "disjoint", batch: []TierInput{{StartRange: 1, EndRange: 9}, {StartRange: 21, EndRange: 30}}},
		{name: "start inside", batch: []TierInput{{StartRange: 20, EndRange: 25}}, clash: true},
		{name: "end inside", batch: []TierInput{{StartRange: 5, EndRange: 10}}, clash: true},
		{name: "contains existing", batch: []TierInput{{StartRange: 1, EndRange: 50}}, clash: true},
		{name: "within batch", batch: []TierInput{{StartRange: 30, EndRange: 40}, {StartRange: 35, EndRange: 45}}, clash: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate, _ := findOverlap(existing, tc.batch)
			if (candidate != nil) != tc.clash {
				t.Fatalf("expected clash=%v, got %+v", tc.clash, candidate)
			}
		})
	}
}
