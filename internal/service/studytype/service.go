package studytype

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
)

const (
	listCacheKey = "study_types"
	listCacheTTL = time.Minute
)

type Service struct {
	studyTypes repository.StudyTypeRepository
	cache      *gocache.Cache
	fold       transform.Transformer
}

func NewService(studyTypes repository.StudyTypeRepository) *Service {
	return &Service{
		studyTypes: studyTypes,
		cache:      gocache.New(listCacheTTL, 5*time.Minute),
		// NFD exposes combining marks so they can be stripped
		fold: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Normalize lowercases, trims and strips diacritics so "Fondo de Ojo",
// "fondo de ojo " and "fóndo de ojo" all collide.
func (s *Service) Normalize(name string) string {
	folded, _, err := transform.String(s.fold, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Create rejects any name whose normalized form already exists, naming
// the existing entry in the error.
func (s *Service) Create(ctx context.Context, req *model.CreateStudyTypeRequest) (*model.StudyType, error) {
	normalized := s.Normalize(req.Name)

	if existing, err := s.studyTypes.GetByNormalizedName(ctx, normalized); err == nil && existing != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("a similar study type already exists: %q", existing.Name))
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check study type name: %w", err)
	}

	studyType := &model.StudyType{
		Name:           strings.TrimSpace(req.Name),
		NormalizedName: normalized,
	}

	if err := s.studyTypes.Create(ctx, studyType); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("a similar study type already exists: %q", req.Name))
		}
		return nil, fmt.Errorf("failed to create study type: %w", err)
	}

	s.cache.Delete(listCacheKey)
	return studyType, nil
}

// FindSimilar matches the normalized name as a substring
func (s *Service) FindSimilar(ctx context.Context, name string) ([]*model.StudyType, error) {
	normalized := s.Normalize(name)
	if normalized == "" {
		return []*model.StudyType{}, nil
	}
	return s.studyTypes.SearchNormalized(ctx, normalized)
}

func (s *Service) List(ctx context.Context) ([]*model.StudyType, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cached.([]*model.StudyType), nil
	}

	studyTypes, err := s.studyTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list study types: %w", err)
	}

	s.cache.Set(listCacheKey, studyTypes, listCacheTTL)
	return studyTypes, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStudyTypeRequest) (*model.StudyType, error) {
	studyType, err := s.studyTypes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("study type", err)
		}
		return nil, fmt.Errorf("failed to get study type: %w", err)
	}

	normalized := s.Normalize(req.Name)
	if existing, err := s.studyTypes.GetByNormalizedName(ctx, normalized); err == nil && existing != nil && existing.ID != id {
		return nil, apperrors.Conflict(fmt.Sprintf("a similar study type already exists: %q", existing.Name))
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check study type name: %w", err)
	}

	studyType.Name = strings.TrimSpace(req.Name)
	studyType.NormalizedName = normalized

	if err := s.studyTypes.Update(ctx, studyType); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("a similar study type already exists: %q", req.Name))
		}
		return nil, fmt.Errorf("failed to update study type: %w", err)
	}

	s.cache.Delete(listCacheKey)
	return studyType, nil
}

// Delete fails with Conflict while any study still references the type
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.studyTypes.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.NotFound("study type", err)
		case errors.Is(err, repository.ErrConflict):
			return apperrors.Conflict("study type is in use and cannot be deleted")
		}
		return fmt.Errorf("failed to delete study type: %w", err)
	}

	s.cache.Delete(listCacheKey)
	return nil
}
