package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/policy"
	"github.com/jwalitptl/clinica-api/internal/repository"
	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
	"github.com/jwalitptl/clinica-api/pkg/security"
)

// Caller identifies who is asking, for role-scoped listings
type Caller struct {
	UserID uuid.UUID
	Role   model.Role
}

type Service struct {
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	users    repository.UserRepository
	hasher   security.PasswordHasher
}

func NewService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	users repository.UserRepository,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		patients: patients,
		doctors:  doctors,
		users:    users,
		hasher:   hasher,
	}
}

// Create provisions a patient account. The initial password is the
// patient's id-number; the mandatory-change flag stays unset so the
// patient must replace it on first real use.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if existing, err := s.patients.GetByIDNumber(ctx, req.IDNumber); err == nil && existing != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("id number %s is already registered", req.IDNumber))
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check id number: %w", err)
	}

	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("email %s is already in use", req.Email))
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.IDNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:           req.Email,
		PasswordHash:    hash,
		Role:            model.RolePatient,
		PasswordChanged: false,
	}

	patient := &model.Patient{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IDNumber:  req.IDNumber,
		Address:   req.Address,
		Phone:     req.Phone,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse(time.RFC3339, *req.DateOfBirth)
		if err != nil {
			return nil, apperrors.BadRequest("invalid date_of_birth", err)
		}
		patient.DateOfBirth = &dob
	}

	if err := s.patients.CreateWithUser(ctx, user, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("email %s is already in use", req.Email))
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	patient.Email = req.Email
	return patient, nil
}

// List returns the patients visible to the caller per the role-scoped
// query policy. Under-privileged callers get an empty result, never an
// authorization error.
func (s *Service) List(ctx context.Context, caller Caller, search string) ([]*model.Patient, error) {
	var doctorID *uuid.UUID
	if caller.Role == model.RoleDoctor {
		doctor, err := s.doctors.GetByUserID(ctx, caller.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve doctor profile: %w", err)
		}
		if doctor != nil {
			doctorID = &doctor.ID
		}
	}

	scope := policy.ScopeFor(caller.Role, doctorID, search)
	if scope.Empty() {
		return []*model.Patient{}, nil
	}

	return s.patients.List(ctx, scope)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// Update applies a partial update. An id-number change is re-checked
// against every other patient before it lands.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if req.IDNumber != nil {
		existing, err := s.patients.GetByIDNumber(ctx, *req.IDNumber)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to check id number: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, apperrors.Conflict(fmt.Sprintf("id number %s belongs to another patient", *req.IDNumber))
		}
	}

	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if req.Email != nil {
		if err := s.users.UpdateEmail(ctx, patient.UserID, *req.Email); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperrors.Conflict(fmt.Sprintf("email %s is already in use", *req.Email))
			}
			return nil, fmt.Errorf("failed to update email: %w", err)
		}
		patient.Email = *req.Email
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.IDNumber != nil {
		patient.IDNumber = *req.IDNumber
	}
	if req.Address != nil {
		patient.Address = req.Address
	}
	if req.Phone != nil {
		patient.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			patient.DateOfBirth = nil
		} else {
			dob, err := time.Parse(time.RFC3339, *req.DateOfBirth)
			if err != nil {
				return nil, apperrors.BadRequest("invalid date_of_birth", err)
			}
			patient.DateOfBirth = &dob
		}
	}

	if err := s.patients.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("id number %s belongs to another patient", patient.IDNumber))
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}
