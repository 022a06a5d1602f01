package model

// Role classifies what an identity is allowed to do. The set is closed:
// role-branching logic switches exhaustively over these values.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User is the authenticable identity record. The password hash never
// leaves the service layer; it is excluded from every JSON response.
type User struct {
	Base
	Email           string `json:"email" db:"email"`
	PasswordHash    string `json:"-" db:"password_hash"`
	Role            Role   `json:"role" db:"role"`
	PasswordChanged bool   `json:"password_changed" db:"password_changed"`
}

// RegisterRequest represents self-service registration parameters
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role" binding:"omitempty,oneof=ADMIN DOCTOR PATIENT"`
}

// LoginRequest represents login parameters
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change for the caller
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TokenResponse carries a freshly issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ProfileResponse is an identity plus whichever profile variant is attached
type ProfileResponse struct {
	User
	AdminProfile   *AdminProfile `json:"admin_profile,omitempty"`
	DoctorProfile  *Doctor       `json:"doctor_profile,omitempty"`
	PatientProfile *Patient      `json:"patient_profile,omitempty"`
}
