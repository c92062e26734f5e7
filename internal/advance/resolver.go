package advance

import (
	"errors"
	"fmt"

	"github.com/Kiranppatil21/glass/internal/config"
)

var (
	ErrInvalidPercent  = errors.New("invalid_advance_percent")
	ErrBelowMinimum    = errors.New("advance_below_minimum")
	ErrNotAllowedValue = errors.New("advance_not_allowed_value")
)

// adminTierRoles may set any advance percent when the policy allows overrides.
var adminTierRoles = map[string]struct{}{
	"admin":       {},
	"super_admin": {},
	"owner":       {},
}

// Request carries everything the resolver needs to validate an advance ask.
type Request struct {
	// RequestedPercent is nil when the caller left the choice to the policy.
	RequestedPercent *int
	IsCreditCustomer bool
	Role             string
}

// Resolve validates the requested advance percent against the policy and
// returns the percent to apply. When no percent was requested, credit
// customers default to 0 and normal customers to 50.
func Resolve(policy config.AdvancePolicy, req Request) (int, error) {
	percent := defaultPercent(req)
	if req.RequestedPercent != nil {
		percent = *req.RequestedPercent
	}

	if IsAdminTier(req.Role) && policy.AdminOverrideAllowed {
		if percent < 0 || percent > 100 {
			return 0, fmt.Errorf("%w: %d%%", ErrInvalidPercent, percent)
		}
		return percent, nil
	}

	min := policy.NormalCustomerMin
	options := policy.NormalCustomerOptions
	if req.IsCreditCustomer {
		min = policy.CreditCustomerMin
		options = policy.CreditCustomerOptions
	}

	if percent < min {
		return 0, fmt.Errorf("%w: minimum advance required is %d%%", ErrBelowMinimum, min)
	}
	if !contains(options, percent) {
		return 0, fmt.Errorf("%w: advance must be one of %v", ErrNotAllowedValue, options)
	}
	return percent, nil
}

func IsAdminTier(role string) bool {
	_, ok := adminTierRoles[role]
	return ok
}

func defaultPercent(req Request) int {
	if req.IsCreditCustomer {
		return 0
	}
	return 50
}

func contains(options []int, percent int) bool {
	for _, p := range options {
		if p == percent {
			return true
		}
	}
	return false
}
