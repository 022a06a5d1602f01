package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinica-api/internal/email"
	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
	"github.com/jwalitptl/clinica-api/pkg/security"
)

type Service struct {
	doctors  repository.DoctorRepository
	users    repository.UserRepository
	hasher   security.PasswordHasher
	notifier email.Notifier
}

func NewService(
	doctors repository.DoctorRepository,
	users repository.UserRepository,
	hasher security.PasswordHasher,
	notifier email.Notifier,
) *Service {
	return &Service{
		doctors:  doctors,
		users:    users,
		hasher:   hasher,
		notifier: notifier,
	}
}

// Create provisions a doctor account with a temporary password. The
// password is returned once so the operator can relay it; the account
// must change it before normal use.
func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.CreateDoctorResponse, error) {
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("email %s is already in use", req.Email))
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	tempPassword := security.GenerateTempPassword()
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            model.RoleDoctor,
		PasswordChanged: false,
	}
	doctor := &model.Doctor{Name: req.Name}

	if err := s.doctors.CreateWithUser(ctx, user, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("email %s is already in use", req.Email))
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	doctor.Email = req.Email

	// Best effort: the operator still sees the password in the response
	if err := s.notifier.SendTempPassword(ctx, req.Email, req.Name, tempPassword); err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("failed to send credentials email")
	}

	return &model.CreateDoctorResponse{Doctor: *doctor, TempPassword: tempPassword}, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if req.Email != nil {
		if err := s.users.UpdateEmail(ctx, doctor.UserID, *req.Email); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperrors.Conflict(fmt.Sprintf("email %s is already in use", *req.Email))
			}
			return nil, fmt.Errorf("failed to update email: %w", err)
		}
		doctor.Email = *req.Email
	}

	if req.Name != nil {
		if err := s.doctors.UpdateName(ctx, id, *req.Name); err != nil {
			return nil, fmt.Errorf("failed to update doctor: %w", err)
		}
		doctor.Name = *req.Name
	}

	return doctor, nil
}

// Delete removes the profile and its identity in one transaction; both
// succeed or neither does. Doctors still referenced by studies cannot
// be removed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.doctors.DeleteWithUser(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NotFound("doctor", err)
		case errors.Is(err, repository.ErrConflict):
			return apperrors.Conflict("doctor has studies and cannot be deleted")
		}
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return nil
}

// ResetPassword issues a fresh temporary password and forces the holder
// back through the mandatory change.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID) (*model.CreateDoctorResponse, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	tempPassword := security.GenerateTempPassword()
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, doctor.UserID, hash, false); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	if err := s.notifier.SendTempPassword(ctx, doctor.Email, doctor.Name, tempPassword); err != nil {
		log.Warn().Err(err).Str("email", doctor.Email).Msg("failed to send credentials email")
	}

	return &model.CreateDoctorResponse{Doctor: *doctor, TempPassword: tempPassword}, nil
}
