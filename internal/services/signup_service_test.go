package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/models"
	"auction-backend/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupRequest() models.SignupRequest {
	return models.SignupRequest{
		Email:       "buyer@example.com",
		Password:    "s3cret!",
		RedirectURL: "https://example.com/welcome",
		Profile:     models.SignupProfile{FullName: "Asha", City: "Pune"},
	}
}

func TestSignupService_Signup(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := NewMockIdentityProvider(ctrl)
	repo := repository.NewMemoryRepo()
	svc := NewSignupService(identity, repo).WithClock(func() time.Time { return testNow })
	userID := uuid.New()

	identity.EXPECT().CreateUser(gomock.Any(), "buyer@example.com", "s3cret!", "Asha").Return(userID, nil)

	resp, err := svc.Signup(context.Background(), signupRequest())
	require.NoError(t, err)
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "https://example.com/welcome", resp.RedirectURL)

	p, err := repo.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.FullName)
	assert.Equal(t, "Pune", p.City)
	assert.Equal(t, models.RoleUser, p.Role)
}

func TestSignupService_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewSignupService(NewMockIdentityProvider(ctrl), repository.NewMemoryRepo())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "s3cret!"},
		{"missing password", "buyer@example.com", ""},
		{"bad email", "not-an-email", "s3cret!"},
		{"short password", "buyer@example.com", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signupRequest()
			req.Email, req.Password = tt.email, tt.password
			_, err := svc.Signup(context.Background(), req)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestSignupService_IdentityFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := NewMockIdentityProvider(ctrl)
	svc := NewSignupService(identity, repository.NewMemoryRepo())

	identity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(uuid.Nil, errors.New("email already registered"))

	_, err := svc.Signup(context.Background(), signupRequest())
	assert.Equal(t, apperrors.KindUpstreamProvider, apperrors.KindOf(err))
}

func TestSignupService_ProfileFailureRemovesIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := NewMockIdentityProvider(ctrl)
	repo := repository.NewMemoryRepo()
	svc := NewSignupService(identity, repo)
	userID := uuid.New()
	// An existing profile makes CreateProfile fail.
	require.NoError(t, repo.CreateProfile(context.Background(), &models.Profile{UserID: userID}))

	identity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(userID, nil)
	identity.EXPECT().DeleteUser(gomock.Any(), userID).Return(nil)

	_, err := svc.Signup(context.Background(), signupRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestSignupService_CompensationRunsAfterCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := NewMockIdentityProvider(ctrl)
	repo := repository.NewMemoryRepo()
	svc := NewSignupService(identity, repo)
	userID := uuid.New()
	require.NoError(t, repo.CreateProfile(context.Background(), &models.Profile{UserID: userID}))

	ctx, cancel := context.WithCancel(context.Background())
	identity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, string) (uuid.UUID, error) {
			cancel()
			return userID, nil
		})
	identity.EXPECT().DeleteUser(gomock.Any(), userID).
		DoAndReturn(func(ctx context.Context, id uuid.UUID) error {
			assert.NoError(t, ctx.Err(), "compensation context must not be cancelled")
			return nil
		})

	_, err := svc.Signup(ctx, signupRequest())
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestSignupService_OrphanedIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := NewMockIdentityProvider(ctrl)
	repo := repository.NewMemoryRepo()
	svc := NewSignupService(identity, repo)
	userID := uuid.New()
	require.NoError(t, repo.CreateProfile(context.Background(), &models.Profile{UserID: userID}))

	identity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(userID, nil)
	identity.EXPECT().DeleteUser(gomock.Any(), userID).Return(errors.New("gotrue unavailable"))

	_, err := svc.Signup(context.Background(), signupRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamProvider, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), userID.String())
}
