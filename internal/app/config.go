package app

import (
	"math"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lymq17/Antipatrones/internal/domain/pricing"
	"github.com/lymq17/Antipatrones/internal/render"
)

// Config holds the complete application configuration, loadable from
// environment variables (PRICING_ prefix), flags, or YAML config files.
type Config struct {
	UsersFile string   `default:"data.json" usage:"Path to the users JSON file (.gz is gunzipped)" flag:"users-file"`
	Format    string   `default:"text" usage:"Report format: text or json"`
	Workers   int      `default:"4" usage:"Users quoted concurrently"`
	Classes   []string `default:"domestic,international" usage:"Shipping classes to quote, in display order"`
	Order     OrderConfig
	Discount  DiscountConfig
	Shipping  ShippingConfig
}

// OrderConfig is the sample order priced for every user.
type OrderConfig struct {
	Total      float64 `default:"123.45" usage:"Order total"`
	WeightKg   float64 `default:"12" usage:"Parcel weight in kilograms"`
	DistanceKm float64 `default:"900" usage:"Shipping distance in kilometers"`
}

// DiscountConfig overrides the tier discount rules.
type DiscountConfig struct {
	GoldMinTotal   float64 `default:"100" usage:"Gold discount applies above this total"`
	GoldRate       float64 `default:"0.15" usage:"Gold discount rate"`
	SilverMinTotal float64 `default:"42" usage:"Silver discount applies above this total"`
	SilverRate     float64 `default:"0.07" usage:"Silver discount rate"`
}

// ShippingConfig overrides the shipping cost rules.
type ShippingConfig struct {
	WeightRate      float64 `default:"0.25" usage:"Cost per kilogram"`
	DistanceDivisor float64 `default:"300" usage:"Kilometers per cost unit"`
	HeavyThreshold  float64 `default:"20" usage:"Weight at which the heavy surcharge starts"`
	Domestic        DomesticConfig
	International   InternationalConfig
}

// DomesticConfig overrides the domestic class rules.
type DomesticConfig struct {
	Base           float64 `default:"5" usage:"Domestic base cost"`
	HeavySurcharge float64 `default:"3" usage:"Domestic surcharge for heavy parcels"`
	StrictHeavy    bool    `default:"true" usage:"Domestic parcels are heavy only above the threshold"`
}

// InternationalConfig overrides the international class rules.
type InternationalConfig struct {
	Base           float64 `default:"7" usage:"International base cost"`
	HeavySurcharge float64 `default:"4" usage:"International surcharge for heavy parcels"`
	StrictHeavy    bool    `default:"false" usage:"International parcels are heavy only above the threshold"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and flags, and validates it.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "PRICING",
		Files:     []string{"config.yaml", "/etc/pricing/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, ac)
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch render.Format(c.Format) {
	case render.FormatText, render.FormatJSON:
	default:
		return errors.Wrapf(render.ErrUnknownFormat, "%q", c.Format)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.ShippingClasses(); err != nil {
		return err
	}
	if err := c.checkFinite(); err != nil {
		return err
	}
	if err := c.Pricing().Validate(); err != nil {
		return err
	}
	if c.Order.Total < 0 || c.Order.WeightKg < 0 || c.Order.DistanceKm < 0 {
		return errors.New("order total, weight and distance must not be negative")
	}
	return nil
}

// checkFinite rejects NaN and infinite numbers, which have no decimal form.
func (c *Config) checkFinite() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"order total", c.Order.Total},
		{"order weight", c.Order.WeightKg},
		{"order distance", c.Order.DistanceKm},
		{"discount gold min total", c.Discount.GoldMinTotal},
		{"discount gold rate", c.Discount.GoldRate},
		{"discount silver min total", c.Discount.SilverMinTotal},
		{"discount silver rate", c.Discount.SilverRate},
		{"shipping weight rate", c.Shipping.WeightRate},
		{"shipping distance divisor", c.Shipping.DistanceDivisor},
		{"shipping heavy threshold", c.Shipping.HeavyThreshold},
		{"shipping domestic base", c.Shipping.Domestic.Base},
		{"shipping domestic surcharge", c.Shipping.Domestic.HeavySurcharge},
		{"shipping international base", c.Shipping.International.Base},
		{"shipping international surcharge", c.Shipping.International.HeavySurcharge},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Errorf("%s must be a finite number, got %v", f.name, f.value)
		}
	}
	return nil
}

// Pricing returns the pricing rules described by the config.
func (c *Config) Pricing() pricing.Config {
	return pricing.Config{
		Discount: pricing.DiscountConfig{
			GoldMinTotal:   decimal.NewFromFloat(c.Discount.GoldMinTotal),
			GoldRate:       decimal.NewFromFloat(c.Discount.GoldRate),
			SilverMinTotal: decimal.NewFromFloat(c.Discount.SilverMinTotal),
			SilverRate:     decimal.NewFromFloat(c.Discount.SilverRate),
		},
		Shipping: pricing.ShippingConfig{
			WeightRate:      decimal.NewFromFloat(c.Shipping.WeightRate),
			DistanceDivisor: decimal.NewFromFloat(c.Shipping.DistanceDivisor),
			HeavyThreshold:  decimal.NewFromFloat(c.Shipping.HeavyThreshold),
			Domestic: pricing.ClassRate{
				Base:           decimal.NewFromFloat(c.Shipping.Domestic.Base),
				HeavySurcharge: decimal.NewFromFloat(c.Shipping.Domestic.HeavySurcharge),
				StrictHeavy:    c.Shipping.Domestic.StrictHeavy,
			},
			International: pricing.ClassRate{
				Base:           decimal.NewFromFloat(c.Shipping.International.Base),
				HeavySurcharge: decimal.NewFromFloat(c.Shipping.International.HeavySurcharge),
				StrictHeavy:    c.Shipping.International.StrictHeavy,
			},
		},
	}
}

// SampleOrder returns the order priced for every user.
func (c *Config) SampleOrder() pricing.Order {
	return pricing.Order{
		Total:      decimal.NewFromFloat(c.Order.Total),
		WeightKg:   decimal.NewFromFloat(c.Order.WeightKg),
		DistanceKm: decimal.NewFromFloat(c.Order.DistanceKm),
	}
}

// ShippingClasses parses the configured class names. Each class may be
// listed once.
func (c *Config) ShippingClasses() ([]pricing.Class, error) {
	classes := make([]pricing.Class, 0, len(c.Classes))
	seen := make(map[pricing.Class]struct{}, len(c.Classes))
	for _, name := range c.Classes {
		class, err := pricing.ParseClass(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[class]; dup {
			return nil, errors.Errorf("shipping class %q listed more than once", class)
		}
		seen[class] = struct{}{}
		classes = append(classes, class)
	}
	return classes, nil
}
