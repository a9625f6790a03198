package pricing

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Class enumerates shipping classes.
type Class uint8

const (
	// Domestic shipping. Heavy surcharge applies strictly above the threshold
	// under the default rules.
	Domestic Class = iota + 1
	// International shipping. Heavy surcharge applies at or above the
	// threshold under the default rules.
	International
)

// Classes lists every shipping class in display order.
var Classes = []Class{Domestic, International}

// ErrUnknownClass is returned for a Class value outside the enumeration.
var ErrUnknownClass = errors.New("unknown shipping class")

func (c Class) String() string {
	switch c {
	case Domestic:
		return "domestic"
	case International:
		return "international"
	default:
		return "unknown"
	}
}

// ParseClass converts a class name to a Class. Matching ignores case and
// surrounding whitespace.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "domestic":
		return Domestic, nil
	case "international":
		return International, nil
	default:
		return 0, errors.Wrapf(ErrUnknownClass, "parse %q", s)
	}
}

// ShippingPolicy computes shipping cost from weight, distance and class.
type ShippingPolicy struct {
	cfg ShippingConfig
}

// NewShippingPolicy creates a ShippingPolicy over the given rules. The
// distance divisor must be positive; see Config.Validate.
func NewShippingPolicy(cfg ShippingConfig) ShippingPolicy {
	return ShippingPolicy{cfg: cfg}
}

// Cost returns base + weight*rate + distance/divisor, plus the class heavy
// surcharge when the weight crosses the threshold under the class comparison.
func (p ShippingPolicy) Cost(weightKg, distanceKm decimal.Decimal, class Class) (decimal.Decimal, error) {
	rate, err := p.rateFor(class)
	if err != nil {
		return decimal.Decimal{}, err
	}

	variable := weightKg.Mul(p.cfg.WeightRate).Add(distanceKm.Div(p.cfg.DistanceDivisor))
	if rate.isHeavy(weightKg, p.cfg.HeavyThreshold) {
		variable = variable.Add(rate.HeavySurcharge)
	}

	return rate.Base.Add(variable), nil
}

func (p ShippingPolicy) rateFor(class Class) (ClassRate, error) {
	switch class {
	case Domestic:
		return p.cfg.Domestic, nil
	case International:
		return p.cfg.International, nil
	default:
		return ClassRate{}, errors.Wrapf(ErrUnknownClass, "class %d", uint8(class))
	}
}

func (r ClassRate) isHeavy(weightKg, threshold decimal.Decimal) bool {
	if r.StrictHeavy {
		return weightKg.GreaterThan(threshold)
	}
	return weightKg.GreaterThanOrEqual(threshold)
}
