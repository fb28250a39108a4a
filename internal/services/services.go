// Package services implements the marketplace operations on top of the
// repository, the payment and identity providers and the realtime notifier.
package services

import (
	"context"
	"fmt"
	"time"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/razorpay"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
)

// PaymentGateway creates provider orders. *razorpay.Client satisfies it.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error
	KeyID() string
}

// IdentityProvider manages auth identities. *supabase.IdentityClient satisfies it.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, fullName string) (uuid.UUID, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func requireAdmin(ctx context.Context, profiles repository.ProfileStore, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.ErrAuthenticationRequired
	}
	admin, err := profiles.IsAdmin(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check admin role: %w", err)
	}
	if !admin {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}
