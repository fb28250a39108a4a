package services

import (
	"context"
	"net/mail"
	"strings"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/logger"
	"auction-backend/internal/models"
	"auction-backend/internal/repository"
)

const minPasswordLength = 6

type SignupService struct {
	identity IdentityProvider
	profiles repository.ProfileStore
	now      Clock
}

func NewSignupService(identity IdentityProvider, profiles repository.ProfileStore) *SignupService {
	return &SignupService{
		identity: identity,
		profiles: profiles,
		now:      systemClock,
	}
}

func (s *SignupService) WithClock(now Clock) *SignupService {
	s.now = now
	return s
}

// Signup creates a confirmed identity and its profile. When the profile
// cannot be stored the identity is deleted again; if that also fails the
// orphaned user id is reported.
func (s *SignupService) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.Validation("email %q is not valid", email)
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}

	userID, err := s.identity.CreateUser(ctx, email, req.Password, req.Profile.FullName)
	if err != nil {
		logger.Error("identity creation failed", map[string]any{"email": email, "error": err.Error()})
		return nil, apperrors.Wrap(apperrors.KindUpstreamProvider, err, "could not create account")
	}

	now := s.now()
	profileErr := s.profiles.CreateProfile(ctx, &models.Profile{
		UserID:    userID,
		FullName:  req.Profile.FullName,
		Phone:     req.Profile.Phone,
		Address:   req.Profile.Address,
		City:      req.Profile.City,
		State:     req.Profile.State,
		Pincode:   req.Profile.Pincode,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if profileErr == nil {
		logger.Info("user signed up", map[string]any{"user_id": userID.String()})
		return &models.SignupResponse{UserID: userID, RedirectURL: req.RedirectURL}, nil
	}

	logger.Error("profile creation failed, removing identity", map[string]any{
		"user_id": userID.String(),
		"error":   profileErr.Error(),
	})
	// The request may already be cancelled; compensation must still run.
	if err := s.identity.DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		logger.Error("orphaned identity", map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil, apperrors.Wrap(apperrors.KindUpstreamProvider, err,
			"orphaned identity %s: profile creation failed and the identity could not be removed", userID)
	}
	return nil, apperrors.Wrap(apperrors.KindInternal, profileErr, "could not create profile")
}
