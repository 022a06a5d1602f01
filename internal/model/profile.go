package model

import (
	"time"

	"github.com/google/uuid"
)

// AdminProfile holds the descriptive data for an ADMIN identity
type AdminProfile struct {
	Base
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Name   string    `json:"name" db:"name"`
}

// Doctor holds the descriptive data for a DOCTOR identity. Email is
// joined in from the owning user row on reads.
type Doctor struct {
	Base
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Name   string    `json:"name" db:"name"`
	Email  string    `json:"email,omitempty" db:"email"`
}

// Patient holds the descriptive data for a PATIENT identity. Email is
// joined in from the owning user row on reads.
type Patient struct {
	Base
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	IDNumber    string     `json:"id_number" db:"id_number"`
	Address     *string    `json:"address" db:"address"`
	Phone       *string    `json:"phone" db:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth" db:"date_of_birth"`
	Email       string     `json:"email,omitempty" db:"email"`
}

// CreateDoctorRequest represents staff provisioning of a doctor account
type CreateDoctorRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// UpdateDoctorRequest represents doctor update parameters
type UpdateDoctorRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// CreateDoctorResponse returns the new profile along with the temporary
// password so the operator can relay it once
type CreateDoctorResponse struct {
	Doctor
	TempPassword string `json:"temp_password"`
}

// CreatePatientRequest represents staff provisioning of a patient account
type CreatePatientRequest struct {
	FirstName   string  `json:"first_name" binding:"required"`
	LastName    string  `json:"last_name" binding:"required"`
	IDNumber    string  `json:"id_number" binding:"required,idnumber"`
	Email       string  `json:"email" binding:"required,email"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
}

// UpdatePatientRequest represents patient update parameters
type UpdatePatientRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	IDNumber    *string `json:"id_number" binding:"omitempty,idnumber"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
}
