package model

import (
	"time"

	"github.com/google/uuid"
)

// RecentStudy is a dashboard row for the latest created studies
type RecentStudy struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	PatientFirstName string    `json:"patient_first_name" db:"patient_first_name"`
	PatientLastName  string    `json:"patient_last_name" db:"patient_last_name"`
	StudyTypeName    string    `json:"study_type_name" db:"study_type_name"`
}

// DashboardStats aggregates the landing page counters
type DashboardStats struct {
	PatientCount   int64          `json:"patient_count"`
	TotalStudies   int64          `json:"total_studies"`
	PendingStudies int64          `json:"pending_studies"`
	RecentStudies  []*RecentStudy `json:"recent_studies"`
}
