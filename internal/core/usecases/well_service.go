package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/samirrijal/wellpath/internal/core/domain"
	"github.com/samirrijal/wellpath/internal/core/ports"
	"github.com/samirrijal/wellpath/internal/pkg/geospatial"
	"github.com/samirrijal/wellpath/internal/pkg/metrics"
)

// WellService handles well-related business logic.
type WellService struct {
	wells     ports.WellRepository
	cache     ports.CacheService
	nearbyTTL int
}

// NewWellService creates a new WellService.
func NewWellService(wells ports.WellRepository, cache ports.CacheService) *WellService {
	return &WellService{wells: wells, cache: cache, nearbyTTL: 300}
}

// WithNearbyTTL overrides how long nearby-well lookups stay cached.
func (s *WellService) WithNearbyTTL(seconds int) *WellService {
	if seconds > 0 {
		s.nearbyTTL = seconds
	}
	return s
}

// Create validates and stores a new well.
func (s *WellService) Create(ctx context.Context, well *domain.Well) error {
	well.Name = strings.TrimSpace(well.Name)
	if well.Name == "" {
		return fmt.Errorf("%w: well name is required", domain.ErrValidation)
	}
	if p := well.Surface; p != nil {
		if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
			return fmt.Errorf("%w: surface location out of range", domain.ErrValidation)
		}
	}
	well.IsActive = true
	if err := s.wells.Create(ctx, well); err != nil {
		return fmt.Errorf("create well: %w", err)
	}
	return nil
}

// GetByID returns a single well.
func (s *WellService) GetByID(ctx context.Context, id string) (*domain.Well, error) {
	return s.wells.GetByID(ctx, id)
}

// List returns all wells ordered by name.
func (s *WellService) List(ctx context.Context) ([]domain.Well, error) {
	return s.wells.List(ctx)
}

// FindNearby returns wells whose surface location lies within radiusMeters of
// the given point, nearest first.
func (s *WellService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Well, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	// Try cache
	cacheKey := fmt.Sprintf("wells:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var wells []domain.Well
			if err := json.Unmarshal(data, &wells); err == nil {
				metrics.CacheHits.WithLabelValues("wells_nearby").Inc()
				return wells, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("wells_nearby").Inc()
	}

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	candidates, err := s.wells.FindNearby(ctx, domain.Bounds{
		MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon,
	}, 0)
	if err != nil {
		return nil, err
	}

	// The box over-selects at the corners; keep only true radius matches.
	wells := make([]domain.Well, 0, len(candidates))
	for _, w := range candidates {
		if w.Surface == nil {
			continue
		}
		d := geospatial.Haversine(lat, lon, w.Surface.Lat, w.Surface.Lon)
		if d > radiusMeters {
			continue
		}
		w.Distance = &d
		wells = append(wells, w)
	}
	sort.SliceStable(wells, func(i, j int) bool { return *wells[i].Distance < *wells[j].Distance })
	if len(wells) > limit {
		wells = wells[:limit]
	}

	if s.cache != nil {
		if data, err := json.Marshal(wells); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.nearbyTTL)
		}
	}

	return wells, nil
}
