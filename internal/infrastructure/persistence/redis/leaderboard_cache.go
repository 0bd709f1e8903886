package redis

import (
	"context"
	"errors"
	"time"

	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/student"
	"github.com/recyclify/recyclify-client/internal/infrastructure/metrics"
)

// LeaderboardCache keeps class listings and class rosters for a short TTL.
type LeaderboardCache struct {
	cache   *Cache
	prefix  string
	ttl     time.Duration
	metrics metrics.Recorder
}

// NewLeaderboardCache creates a LeaderboardCache. A non-positive ttl uses
// TTLLeaderboardCache.
func NewLeaderboardCache(cache *Cache, ttl time.Duration, rec metrics.Recorder) *LeaderboardCache {
	if ttl <= 0 {
		ttl = TTLLeaderboardCache
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &LeaderboardCache{cache: cache, prefix: PrefixLeaderboard, ttl: ttl, metrics: rec}
}

var _ leaderboard.Cache = (*LeaderboardCache)(nil)

func (c *LeaderboardCache) classesKey(key string) string { return c.prefix + "classes:" + key }
func (c *LeaderboardCache) studentsKey(id string) string { return c.prefix + "students:" + id }

// GetClasses returns the cached class listing stored under key.
func (c *LeaderboardCache) GetClasses(ctx context.Context, key string) ([]leaderboard.Class, bool, error) {
	var classes []leaderboard.Class
	hit, err := c.get(ctx, c.classesKey(key), &classes)
	return classes, hit, err
}

// SetClasses caches a class listing.
func (c *LeaderboardCache) SetClasses(ctx context.Context, key string, classes []leaderboard.Class) error {
	return c.cache.Set(ctx, c.classesKey(key), classes, c.ttl)
}

// GetStudents returns the cached roster of a class.
func (c *LeaderboardCache) GetStudents(ctx context.Context, classID string) ([]student.Student, bool, error) {
	var students []student.Student
	hit, err := c.get(ctx, c.studentsKey(classID), &students)
	return students, hit, err
}

// SetStudents caches the roster of a class.
func (c *LeaderboardCache) SetStudents(ctx context.Context, classID string, students []student.Student) error {
	return c.cache.Set(ctx, c.studentsKey(classID), students, c.ttl)
}

// Invalidate drops every cached listing. Called after any teacher edit.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.cache.DeletePrefix(ctx, c.prefix)
}

func (c *LeaderboardCache) get(ctx context.Context, key string, dest any) (bool, error) {
	err := c.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		c.metrics.RecordCache(true)
		return true, nil
	case errors.Is(err, ErrCacheMiss):
		c.metrics.RecordCache(false)
		return false, nil
	default:
		return false, err
	}
}
