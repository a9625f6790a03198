package pricing

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lymq17/Antipatrones/internal/domain/user"
)

// Order is the order context priced for a user.
type Order struct {
	Total      decimal.Decimal
	WeightKg   decimal.Decimal
	DistanceKm decimal.Decimal
}

// ShippingQuote is the shipping cost of an order for one class.
type ShippingQuote struct {
	Class Class
	Cost  decimal.Decimal
}

// Quote is the result of pricing one order for one user.
type Quote struct {
	User     user.User
	Discount decimal.Decimal
	Shipping []ShippingQuote
}

// InvalidOrderError indicates an order field holds a negative value.
type InvalidOrderError struct {
	Field string
	Value decimal.Decimal
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("order %s must not be negative, got %s", e.Field, e.Value)
}

// Engine combines the discount and shipping policies over one Config.
type Engine struct {
	cfg      Config
	discount DiscountPolicy
	shipping ShippingPolicy
}

// NewEngine validates cfg and returns an Engine using it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pricing config")
	}
	return &Engine{
		cfg:      cfg,
		discount: NewDiscountPolicy(cfg.Discount),
		shipping: NewShippingPolicy(cfg.Shipping),
	}, nil
}

// Config returns the rules the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Discount returns the tier discount for total.
func (e *Engine) Discount(tier user.Tier, total decimal.Decimal) decimal.Decimal {
	return e.discount.Discount(tier, total)
}

// ShippingCost returns the shipping cost for the given class.
func (e *Engine) ShippingCost(weightKg, distanceKm decimal.Decimal, class Class) (decimal.Decimal, error) {
	return e.shipping.Cost(weightKg, distanceKm, class)
}

// Quote prices order for u: the tier discount and one shipping quote per
// class, in the order given. Negative order values are rejected.
func (e *Engine) Quote(u user.User, order Order, classes []Class) (*Quote, error) {
	if err := order.validate(); err != nil {
		return nil, err
	}

	q := &Quote{
		User:     u,
		Discount: e.Discount(u.Tier, order.Total),
		Shipping: make([]ShippingQuote, 0, len(classes)),
	}
	for _, class := range classes {
		cost, err := e.ShippingCost(order.WeightKg, order.DistanceKm, class)
		if err != nil {
			return nil, errors.Wrap(err, "shipping cost")
		}
		q.Shipping = append(q.Shipping, ShippingQuote{Class: class, Cost: cost})
	}

	return q, nil
}

func (o Order) validate() error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"total", o.Total},
		{"weight", o.WeightKg},
		{"distance", o.DistanceKm},
	} {
		if f.value.IsNegative() {
			return &InvalidOrderError{Field: f.name, Value: f.value}
		}
	}
	return nil
}
