package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds every threshold and rate used by the discount and shipping
// policies. It is passed by value and never mutated after NewEngine.
type Config struct {
	Discount DiscountConfig
	Shipping ShippingConfig
}

// DiscountConfig controls tier discounts. Both thresholds are exclusive.
type DiscountConfig struct {
	GoldMinTotal   decimal.Decimal
	GoldRate       decimal.Decimal
	SilverMinTotal decimal.Decimal
	SilverRate     decimal.Decimal
}

// ShippingConfig controls shipping cost. The variable part is shared by all
// classes; base cost and heavy surcharge policy are per class.
type ShippingConfig struct {
	WeightRate      decimal.Decimal
	DistanceDivisor decimal.Decimal
	HeavyThreshold  decimal.Decimal
	Domestic        ClassRate
	International   ClassRate
}

// ClassRate is the per-class part of the shipping rules.
type ClassRate struct {
	Base           decimal.Decimal
	HeavySurcharge decimal.Decimal
	// StrictHeavy selects weight > threshold when true and
	// weight >= threshold when false.
	StrictHeavy bool
}

// DefaultConfig returns the stock pricing rules.
func DefaultConfig() Config {
	return Config{
		Discount: DiscountConfig{
			GoldMinTotal:   decimal.NewFromInt(100),
			GoldRate:       decimal.RequireFromString("0.15"),
			SilverMinTotal: decimal.NewFromInt(42),
			SilverRate:     decimal.RequireFromString("0.07"),
		},
		Shipping: ShippingConfig{
			WeightRate:      decimal.RequireFromString("0.25"),
			DistanceDivisor: decimal.NewFromInt(300),
			HeavyThreshold:  decimal.NewFromInt(20),
			Domestic: ClassRate{
				Base:           decimal.NewFromInt(5),
				HeavySurcharge: decimal.NewFromInt(3),
				StrictHeavy:    true,
			},
			International: ClassRate{
				Base:           decimal.NewFromInt(7),
				HeavySurcharge: decimal.NewFromInt(4),
				StrictHeavy:    false,
			},
		},
	}
}

// Validate reports the first invalid field of the config.
func (c Config) Validate() error {
	if !c.Shipping.DistanceDivisor.IsPositive() {
		return errors.New("shipping distance divisor must be greater than 0")
	}

	nonNegative := []struct {
		name  string
		value decimal.Decimal
	}{
		{"discount gold min total", c.Discount.GoldMinTotal},
		{"discount gold rate", c.Discount.GoldRate},
		{"discount silver min total", c.Discount.SilverMinTotal},
		{"discount silver rate", c.Discount.SilverRate},
		{"shipping weight rate", c.Shipping.WeightRate},
		{"shipping heavy threshold", c.Shipping.HeavyThreshold},
		{"shipping domestic base", c.Shipping.Domestic.Base},
		{"shipping domestic surcharge", c.Shipping.Domestic.HeavySurcharge},
		{"shipping international base", c.Shipping.International.Base},
		{"shipping international surcharge", c.Shipping.International.HeavySurcharge},
	}
	for _, f := range nonNegative {
		if f.value.IsNegative() {
			return errors.Errorf("%s must not be negative: %s", f.name, f.value)
		}
	}

	return nil
}
