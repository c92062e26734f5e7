package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidID = errors.New("invalid_customer_profile_id")
	ErrNotFound  = errors.New("customer_profile_not_found")
)

// Service is the read-side customer-master collaborator.
type Service interface {
	// GetActiveProfile returns the profile when it exists and is active,
	// ErrNotFound otherwise.
	GetActiveProfile(ctx context.Context, id snowflake.ID) (*CustomerProfile, error)
}
