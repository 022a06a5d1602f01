package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
	pkgauth "github.com/jwalitptl/clinica-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
	"github.com/jwalitptl/clinica-api/pkg/security"
)

type Service struct {
	users    repository.UserRepository
	admins   repository.AdminRepository
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	hasher   security.PasswordHasher
	tokens   pkgauth.TokenService
}

func NewService(
	users repository.UserRepository,
	admins repository.AdminRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	hasher security.PasswordHasher,
	tokens pkgauth.TokenService,
) *Service {
	return &Service{
		users:    users,
		admins:   admins,
		doctors:  doctors,
		patients: patients,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates a self-service identity. Accounts created here chose
// their own password, so the mandatory-change flag starts satisfied.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RolePatient
	}
	if !role.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown role %q", role), nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            role,
		PasswordChanged: true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("email %s is already in use", req.Email))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues a token. An unknown email and a
// wrong password produce the same error so callers cannot probe which
// emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.TokenResponse{AccessToken: token}, nil
}

// ChangePassword re-hashes the credential and marks the mandatory
// password change as completed.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return apperrors.Unauthorized("invalid credentials")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash, true); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetProfile returns the identity plus whichever profile variant is
// attached. The password hash never crosses this boundary.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user.PasswordHash = ""
	profile := &model.ProfileResponse{User: *user}

	switch user.Role {
	case model.RoleAdmin:
		admin, err := s.admins.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load admin profile: %w", err)
		}
		profile.AdminProfile = admin
	case model.RoleDoctor:
		doctor, err := s.doctors.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load doctor profile: %w", err)
		}
		profile.DoctorProfile = doctor
	case model.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load patient profile: %w", err)
		}
		profile.PatientProfile = patient
	}

	return profile, nil
}
