package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// IdentityClient provisions and removes Supabase Auth users through the admin
// API.
type IdentityClient struct {
	auth gotrue.Client
}

func NewIdentityClient(auth gotrue.Client) *IdentityClient {
	return &IdentityClient{auth: auth}
}

// CreateUser creates a user whose email is already confirmed and stores
// fullName in the user metadata.
func (c *IdentityClient) CreateUser(ctx context.Context, email, password, fullName string) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	pw := password
	resp, err := c.auth.AdminCreateUser(types.AdminCreateUserRequest{
		Email:        email,
		Password:     &pw,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{
			"full_name": fullName,
		},
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create auth user: %w", err)
	}
	if resp.ID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("auth user id is empty in response")
	}
	return resp.ID, nil
}

func (c *IdentityClient) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.auth.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: userID}); err != nil {
		return fmt.Errorf("failed to delete auth user %s: %w", userID, err)
	}
	return nil
}
