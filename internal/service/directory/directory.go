package directory

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"strings"

	"github.com/google/uuid"
)

const cachePrefix = "directory:"

type directoryRepo interface {
	Counties(ctx context.Context) ([]models.County, error)
	CreateCounty(ctx context.Context, c *models.County) error
	Constituencies(ctx context.Context, countyID uuid.UUID) ([]models.Constituency, error)
	CreateConstituency(ctx context.Context, c *models.Constituency) error
	Positions(ctx context.Context) ([]models.Position, error)
	CreatePosition(ctx context.Context, p *models.Position) error
	Leaders(ctx context.Context, f models.LeaderFilter) ([]models.Leader, error)
	CreateLeader(ctx context.Context, l *models.Leader) error
	Elections(ctx context.Context, f models.ElectionFilter) ([]models.Election, error)
	CreateElection(ctx context.Context, e *models.Election) error
	Candidates(ctx context.Context, electionID uuid.UUID) ([]models.Candidate, error)
	CreateCandidate(ctx context.Context, c *models.Candidate) error
	SearchCounties(ctx context.Context, q string) ([]models.County, error)
	SearchConstituencies(ctx context.Context, q string) ([]models.Constituency, error)
	SearchLeaders(ctx context.Context, q string) ([]models.Leader, error)
}

type cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type DirectoryService struct {
	log   logger.Log
	repo  directoryRepo
	cache cache
}

func NewDirectoryService(log logger.Log, repo directoryRepo, c cache) *DirectoryService {
	return &DirectoryService{log: log, repo: repo, cache: c}
}

// cached serves key from the cache or loads and stores it. Cache failures
// only degrade to a direct read.
func cached[T any](ctx context.Context, s *DirectoryService, key string, load func() (T, error)) (T, error) {
	key = cachePrefix + key
	var v T
	hit, err := s.cache.Get(ctx, key, &v)
	if err != nil {
		s.log.ErrorErr("directory cache read failed", err, "key", key)
	}
	if hit {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.log.ErrorErr("directory cache write failed", err, "key", key)
	}
	return v, nil
}

func (s *DirectoryService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, cachePrefix); err != nil {
		s.log.ErrorErr("directory cache invalidation failed", err)
	}
}

func optionalKey(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

func (s *DirectoryService) Counties(ctx context.Context) ([]models.County, error) {
	return cached(ctx, s, "counties", func() ([]models.County, error) {
		return s.repo.Counties(ctx)
	})
}

func (s *DirectoryService) Constituencies(ctx context.Context, countyID uuid.UUID) ([]models.Constituency, error) {
	return cached(ctx, s, "constituencies:"+countyID.String(), func() ([]models.Constituency, error) {
		return s.repo.Constituencies(ctx, countyID)
	})
}

func (s *DirectoryService) Positions(ctx context.Context) ([]models.Position, error) {
	return cached(ctx, s, "positions", func() ([]models.Position, error) {
		return s.repo.Positions(ctx)
	})
}

func (s *DirectoryService) Leaders(ctx context.Context, f models.LeaderFilter) ([]models.Leader, error) {
	key := "leaders:" + optionalKey(f.CountyID) + ":" + optionalKey(f.PositionID)
	return cached(ctx, s, key, func() ([]models.Leader, error) {
		return s.repo.Leaders(ctx, f)
	})
}

func (s *DirectoryService) Elections(ctx context.Context, f models.ElectionFilter) ([]models.Election, error) {
	key := "elections:" + f.LocationType + ":" + f.Position
	return cached(ctx, s, key, func() ([]models.Election, error) {
		return s.repo.Elections(ctx, f)
	})
}

func (s *DirectoryService) Candidates(ctx context.Context, electionID uuid.UUID) ([]models.Candidate, error) {
	return cached(ctx, s, "candidates:"+electionID.String(), func() ([]models.Candidate, error) {
		return s.repo.Candidates(ctx, electionID)
	})
}

// Search looks for a county first, then a constituency, then a leader by
// name or party. The first kind with any match wins.
func (s *DirectoryService) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, app_errors.ErrNoSearchResults
	}

	result, err := cached(ctx, s, "search:"+strings.ToLower(q), func() (models.SearchResult, error) {
		counties, err := s.repo.SearchCounties(ctx, q)
		if err != nil {
			return models.SearchResult{}, err
		}
		if len(counties) > 0 {
			return models.SearchResult{Type: models.SearchTypeCounty, Counties: counties}, nil
		}

		constituencies, err := s.repo.SearchConstituencies(ctx, q)
		if err != nil {
			return models.SearchResult{}, err
		}
		if len(constituencies) > 0 {
			return models.SearchResult{Type: models.SearchTypeConstituency, Constituencies: constituencies}, nil
		}

		leaders, err := s.repo.SearchLeaders(ctx, q)
		if err != nil {
			return models.SearchResult{}, err
		}
		if len(leaders) > 0 {
			return models.SearchResult{Type: models.SearchTypeLeader, Leaders: leaders}, nil
		}
		return models.SearchResult{}, nil
	})
	if err != nil {
		return nil, err
	}
	if result.Type == "" {
		return nil, app_errors.ErrNoSearchResults
	}
	return &result, nil
}

func (s *DirectoryService) CreateCounty(ctx context.Context, c models.County) (*models.County, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := s.repo.CreateCounty(ctx, &c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &c, nil
}

func (s *DirectoryService) CreateConstituency(ctx context.Context, c models.Constituency) (*models.Constituency, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := s.repo.CreateConstituency(ctx, &c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &c, nil
}

func (s *DirectoryService) CreatePosition(ctx context.Context, p models.Position) (*models.Position, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := s.repo.CreatePosition(ctx, &p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &p, nil
}

func (s *DirectoryService) CreateLeader(ctx context.Context, l models.Leader) (*models.Leader, error) {
	l.Name = strings.TrimSpace(l.Name)
	if err := s.repo.CreateLeader(ctx, &l); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &l, nil
}

func (s *DirectoryService) CreateElection(ctx context.Context, e models.Election) (*models.Election, error) {
	if err := s.repo.CreateElection(ctx, &e); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &e, nil
}

func (s *DirectoryService) CreateCandidate(ctx context.Context, c models.Candidate) (*models.Candidate, error) {
	if err := s.repo.CreateCandidate(ctx, &c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &c, nil
}
