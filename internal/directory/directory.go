// Package directory loads the browsable list of areas and professionals.
package directory

import (
	"context"
	"log"

	"github.com/profissa/profissa/internal/models"
)

// Backend is the slice of the SDK the directory reads from.
type Backend interface {
	Areas(ctx context.Context) ([]models.Area, error)
	Professionals(ctx context.Context, areaID *int64) ([]models.User, error)
}

// Filter selects professionals. A nil AreaID means every area.
// Query is kept for the search box but is not applied.
type Filter struct {
	AreaID *int64
	Query  string
}

type Directory struct {
	Areas         []models.Area
	Professionals []models.User
}

type Service struct {
	backend Backend
}

func NewService(b Backend) *Service {
	return &Service{backend: b}
}

// Load fetches areas and professionals independently. Each failure is
// logged and leaves its half empty; Load itself never fails.
func (s *Service) Load(ctx context.Context, f Filter) Directory {
	return Directory{
		Areas:         s.Areas(ctx),
		Professionals: s.Professionals(ctx, f),
	}
}

func (s *Service) Areas(ctx context.Context) []models.Area {
	areas, err := s.backend.Areas(ctx)
	if err != nil {
		log.Printf("directory: load areas: %v", err)
		return []models.Area{}
	}
	if areas == nil {
		return []models.Area{}
	}
	return areas
}

func (s *Service) Professionals(ctx context.Context, f Filter) []models.User {
	pros, err := s.backend.Professionals(ctx, f.AreaID)
	if err != nil {
		log.Printf("directory: load professionals: %v", err)
		return []models.User{}
	}
	out := make([]models.User, 0, len(pros))
	for _, p := range pros {
		if !p.IsProfessional() {
			continue
		}
		if f.AreaID != nil && (p.AreaID == nil || *p.AreaID != *f.AreaID) {
			continue
		}
		out = append(out, p)
	}
	return out
}
