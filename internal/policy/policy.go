// Package policy holds the pure role-scoping decisions for listings.
// It performs no I/O; the repository layer renders a Scope into SQL.
package policy

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/model"
)

// Scope narrows which patient records a caller may see. The zero value
// is the empty scope: a valid, safe answer meaning "no visible rows".
type Scope struct {
	// All grants unrestricted visibility
	All bool
	// DoctorID, when set, restricts to patients with at least one study
	// requested by that doctor
	DoctorID *uuid.UUID
	// Search is a case-sensitive substring matched against first name,
	// last name and id-number
	Search string
}

// Empty reports whether the scope admits no rows at all
func (s Scope) Empty() bool {
	return !s.All && s.DoctorID == nil
}

// ScopeFor decides the listing scope for a caller. doctorID is the
// caller's doctor-profile id when one exists; a DOCTOR without a profile
// gets the empty scope, not an error. Roles outside the staff set fail
// open to "no data" rather than raising an authorization error.
func ScopeFor(role model.Role, doctorID *uuid.UUID, search string) Scope {
	switch role {
	case model.RoleAdmin:
		return Scope{All: true, Search: search}
	case model.RoleDoctor:
		if doctorID == nil {
			return Scope{}
		}
		return Scope{DoctorID: doctorID, Search: search}
	case model.RolePatient:
		return Scope{}
	default:
		return Scope{}
	}
}
