package user

import "context"

// Tier is the customer classification that controls discount eligibility.
// Values other than TierGold and TierSilver are valid and carry no discount.
type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
)

// User is a customer record as loaded from the user source.
type User struct {
	ID   int64
	Name string
	Tier Tier
}

// Repository provides the ordered sequence of users. An absent source yields
// an empty slice, not an error.
type Repository interface {
	List(ctx context.Context) ([]User, error)
}
