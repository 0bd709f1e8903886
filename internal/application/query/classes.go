package query

import (
	"context"
	"fmt"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/student"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// classSource reads classes and rosters, going through the leaderboard
// cache when one is configured and the cache flag is on. Cache failures are
// logged and fall through to the backend.
type classSource struct {
	repo     leaderboard.Repository
	cache    leaderboard.Cache
	features *config.FeatureFlags
	log      *logger.Logger
}

func (s classSource) useCache(user *session.UserProfile) bool {
	if s.cache == nil {
		return false
	}
	// The cache is opt-in, so a nil flag set leaves it off.
	return s.features != nil && featureOn(s.features, config.FeatureLeaderboardCache, user)
}

func (s classSource) classes(ctx context.Context, user *session.UserProfile) ([]leaderboard.Class, error) {
	key := user.ID.String()
	cached := s.useCache(user)
	if cached {
		classes, hit, err := s.cache.GetClasses(ctx, key)
		if err != nil {
			s.log.Warn("class cache read failed", logger.Err(err))
		} else if hit {
			return classes, nil
		}
	}

	classes, err := s.repo.GetOverallClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("get classes: %w", err)
	}
	if cached {
		if err := s.cache.SetClasses(ctx, key, classes); err != nil {
			s.log.Warn("class cache write failed", logger.Err(err))
		}
	}
	return classes, nil
}

func (s classSource) students(ctx context.Context, user *session.UserProfile, classID string) ([]student.Student, error) {
	cached := s.useCache(user)
	if cached {
		students, hit, err := s.cache.GetStudents(ctx, classID)
		if err != nil {
			s.log.Warn("roster cache read failed", logger.ClassID(classID), logger.Err(err))
		} else if hit {
			return students, nil
		}
	}

	students, err := s.repo.GetStudents(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get students of class %s: %w", classID, err)
	}
	if cached {
		if err := s.cache.SetStudents(ctx, classID, students); err != nil {
			s.log.Warn("roster cache write failed", logger.ClassID(classID), logger.Err(err))
		}
	}
	return students, nil
}
