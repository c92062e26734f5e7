package advance

import (
	"testing"

	"github.com/Kiranppatil21/glass/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestResolveNormalCustomer(t *testing.T) {
	policy := config.DefaultAdvancePolicy()

	cases := []struct {
		name      string
		requested *int
		want      int
		wantErr   error
	}{
		{name: "default is 50", requested: nil, want: 50},
		{name: "allowed option", requested: intPtr(75), want: 75},
		{name: "full payment", requested: intPtr(100), want: 100},
		{name: "below minimum", requested: intPtr(25), wantErr: ErrBelowMinimum},
		{name: "above minimum but not an option", requested: intPtr(60), wantErr: ErrNotAllowedValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(policy, Request{RequestedPercent: tc.requested, Role: "customer"})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveCreditCustomer(t *testing.T) {
	policy := config.DefaultAdvancePolicy()

	got, err := Resolve(policy, Request{RequestedPercent: nil, IsCreditCustomer: true, Role: "customer"})
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = Resolve(policy, Request{RequestedPercent: intPtr(25), IsCreditCustomer: true, Role: "customer"})
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	_, err = Resolve(policy, Request{RequestedPercent: intPtr(30), IsCreditCustomer: true, Role: "customer"})
	assert.ErrorIs(t, err, ErrNotAllowedValue)
}

func TestResolveAdminOverride(t *testing.T) {
	policy := config.DefaultAdvancePolicy()

	for _, role := range []string{"admin", "super_admin", "owner"} {
		got, err := Resolve(policy, Request{RequestedPercent: intPtr(10), Role: role})
		require.NoError(t, err, role)
		assert.Equal(t, 10, got, role)
	}

	// out-of-range stays rejected even for admins
	_, err := Resolve(policy, Request{RequestedPercent: intPtr(101), Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidPercent)
	_, err = Resolve(policy, Request{RequestedPercent: intPtr(-1), Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidPercent)
}

func TestResolveAdminOverrideDisabled(t *testing.T) {
	policy := config.DefaultAdvancePolicy()
	policy.AdminOverrideAllowed = false

	_, err := Resolve(policy, Request{RequestedPercent: intPtr(10), Role: "admin"})
	assert.ErrorIs(t, err, ErrBelowMinimum)
}

func TestResolveAccountantIsNotAdminTier(t *testing.T) {
	policy := config.DefaultAdvancePolicy()
	_, err := Resolve(policy, Request{RequestedPercent: intPtr(10), Role: "accountant"})
	assert.ErrorIs(t, err, ErrBelowMinimum)
}
