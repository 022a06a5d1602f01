package model

// StudyType is a named classification for studies. NormalizedName is the
// lowercase, diacritic-folded form and carries the uniqueness constraint.
type StudyType struct {
	Base
	Name           string `json:"name" db:"name"`
	NormalizedName string `json:"-" db:"normalized_name"`
}

// CreateStudyTypeRequest represents study type creation parameters
type CreateStudyTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateStudyTypeRequest represents study type update parameters
type UpdateStudyTypeRequest struct {
	Name string `json:"name" binding:"required"`
}
