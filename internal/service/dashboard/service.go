package dashboard

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
)

const recentStudiesLimit = 5

type Service struct {
	patients repository.PatientRepository
	studies  repository.StudyRepository
}

func NewService(patients repository.PatientRepository, studies repository.StudyRepository) *Service {
	return &Service{patients: patients, studies: studies}
}

func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	patientCount, err := s.patients.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}

	totalStudies, err := s.studies.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count studies: %w", err)
	}

	pendingStudies, err := s.studies.CountByStatus(ctx, model.StudyStatusIncomplete)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending studies: %w", err)
	}

	recent, err := s.studies.Recent(ctx, recentStudiesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent studies: %w", err)
	}

	return &model.DashboardStats{
		PatientCount:   patientCount,
		TotalStudies:   totalStudies,
		PendingStudies: pendingStudies,
		RecentStudies:  recent,
	}, nil
}
