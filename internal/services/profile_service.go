package services

import (
	"context"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/models"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
)

type ProfileService struct {
	profiles repository.ProfileStore
	now      Clock
}

func NewProfileService(profiles repository.ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles, now: systemClock}
}

func (s *ProfileService) WithClock(now Clock) *ProfileService {
	s.now = now
	return s
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return s.profiles.GetProfile(ctx, userID)
}

// Update writes the caller's own profile. The role cannot be changed here.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	return s.profiles.UpsertProfile(ctx, &models.Profile{
		UserID:    userID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Pincode:   req.Pincode,
		UpdatedAt: s.now(),
	})
}
