package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/policy"
)

// Sentinel errors surfaced by implementations. Services translate these
// into the caller-facing error taxonomy.
var (
	// ErrNotFound means the record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint was violated
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict means the mutation lost to referential integrity or a
	// concurrent state change
	ErrConflict = errors.New("conflicting record state")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, passwordChanged bool) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
}

type AdminRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.AdminProfile, error)
}

type DoctorRepository interface {
	// CreateWithUser persists the identity and the doctor profile in one
	// transaction; partial failure leaves neither behind.
	CreateWithUser(ctx context.Context, user *model.User, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	// DeleteWithUser removes the profile and its identity transactionally.
	// Fails with ErrConflict while studies still reference the doctor.
	DeleteWithUser(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	CreateWithUser(ctx context.Context, user *model.User, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
	GetByIDNumber(ctx context.Context, idNumber string) (*model.Patient, error)
	List(ctx context.Context, scope policy.Scope) ([]*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Count(ctx context.Context) (int64, error)
}

type StudyRepository interface {
	Create(ctx context.Context, study *model.Study) error
	Get(ctx context.Context, id uuid.UUID) (*model.Study, error)
	// CompleteWithReport flips the study to COMPLETE and records the new
	// file map. The update is a compare-and-swap on status: it fails with
	// ErrConflict if the study is no longer INCOMPLETE.
	CompleteWithReport(ctx context.Context, id uuid.UUID, files json.RawMessage, uploadedAt time.Time) error
	ListForPatient(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) ([]*model.StudyDetail, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.StudyStatus) (int64, error)
	Recent(ctx context.Context, limit int) ([]*model.RecentStudy, error)
}

type StudyTypeRepository interface {
	Create(ctx context.Context, studyType *model.StudyType) error
	Get(ctx context.Context, id uuid.UUID) (*model.StudyType, error)
	GetByNormalizedName(ctx context.Context, normalized string) (*model.StudyType, error)
	List(ctx context.Context) ([]*model.StudyType, error)
	SearchNormalized(ctx context.Context, normalized string) ([]*model.StudyType, error)
	Update(ctx context.Context, studyType *model.StudyType) error
	Delete(ctx context.Context, id uuid.UUID) error
}
