package config

import (
	"errors"
	"hash/fnv"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Feature names.
const (
	FeatureEcoPilot          = "ecopilot"          // AI recycling assistant
	FeatureImageRecognition  = "image_recognition" // scan an item photo
	FeatureStreakGift        = "streak_gift"       // weekly streak reward
	FeatureQuestRegeneration = "quest_regeneration"
	FeatureLeaderboardCache  = "leaderboard_cache" // Redis response cache
	FeatureMetrics           = "metrics"           // Prometheus client metrics
)

var (
	ErrFeatureNotFound       = errors.New("feature not found")
	ErrInvalidRolloutPercent = errors.New("rollout percent must be 0-100")
)

// Feature is one toggle and who gets it.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Share of users, by a stable hash of their ID, that get the feature.
	RolloutPercent int

	// Roles the feature is offered to. Empty means all roles.
	TargetRoles []string
}

func (f *Feature) offeredTo(role string) bool {
	if len(f.TargetRoles) == 0 || role == "" {
		return true
	}
	for _, r := range f.TargetRoles {
		if r == role {
			return true
		}
	}
	return false
}

// FeatureContext is the user a flag is evaluated for.
type FeatureContext struct {
	UserID string
	Role   string
}

// FeatureFlags holds the toggles of one process. Safe for concurrent use.
type FeatureFlags struct {
	mu        sync.RWMutex
	features  map[string]*Feature
	overrides map[string]map[string]bool // userID -> feature -> enabled
}

func defaultFeatures() []*Feature {
	return []*Feature{
		{Name: FeatureEcoPilot, Description: "Ask EcoPilot recycling questions", Enabled: true, RolloutPercent: 100},
		{Name: FeatureImageRecognition, Description: "Recognise scanned items", Enabled: true, RolloutPercent: 100, TargetRoles: []string{"student"}},
		{Name: FeatureStreakGift, Description: "Claim the weekly streak gift", Enabled: true, RolloutPercent: 100, TargetRoles: []string{"student"}},
		{Name: FeatureQuestRegeneration, Description: "Regenerate class quests", Enabled: true, RolloutPercent: 100, TargetRoles: []string{"teacher"}},
		{Name: FeatureLeaderboardCache, Description: "Cache leaderboard responses in Redis", Enabled: false, RolloutPercent: 0},
		{Name: FeatureMetrics, Description: "Collect client metrics", Enabled: true, RolloutPercent: 100},
	}
}

// LoadFeatureFlags starts from the defaults and applies the environment:
//
//	FEATURE_STREAK_GIFT=false        switch off
//	FEATURE_ECOPILOT=25              25% rollout
//	FEATURE_ECOPILOT_ROLES=student   offer to these roles only
//	FEATURE_OVERRIDES=7:leaderboard_cache=true,9:ecopilot=false
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:  make(map[string]*Feature),
		overrides: make(map[string]map[string]bool),
	}
	for _, f := range defaultFeatures() {
		ff.features[f.Name] = f
		applyEnv(f)
	}
	ff.parseOverrides(os.Getenv("FEATURE_OVERRIDES"))
	return ff
}

// "image_recognition" -> "FEATURE_IMAGE_RECOGNITION"
func envKey(name string) string {
	return "FEATURE_" + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))
}

func applyEnv(f *Feature) {
	key := envKey(f.Name)

	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if on, err := strconv.ParseBool(val); err == nil {
			f.Enabled = on
			f.RolloutPercent = 0
			if on {
				f.RolloutPercent = 100
			}
		} else if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			f.Enabled = p > 0
			f.RolloutPercent = p
		}
	}

	if roles := os.Getenv(key + "_ROLES"); roles != "" {
		f.TargetRoles = f.TargetRoles[:0:0]
		for _, r := range strings.Split(roles, ",") {
			if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
				f.TargetRoles = append(f.TargetRoles, r)
			}
		}
	}
}

// parseOverrides reads "user:feature=bool" pairs. Malformed pairs are skipped.
func (ff *FeatureFlags) parseOverrides(raw string) {
	for _, pair := range strings.Split(raw, ",") {
		user, rest, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		name, val, ok := strings.Cut(rest, "=")
		if !ok {
			continue
		}
		on, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			continue
		}
		ff.SetUserOverride(strings.TrimSpace(user), strings.TrimSpace(name), on)
	}
}

// IsEnabled evaluates a feature. A user override wins; otherwise the
// feature must be on, offered to the role and include the user's bucket.
// A nil ctx only checks the global switch.
func (ff *FeatureFlags) IsEnabled(name string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	var fc FeatureContext
	if ctx != nil {
		fc = *ctx
	}

	if on, ok := ff.overrides[fc.UserID][name]; ok && fc.UserID != "" {
		return on
	}

	f, ok := ff.features[name]
	if !ok || !f.Enabled || !f.offeredTo(fc.Role) {
		return false
	}
	if f.RolloutPercent < 100 && fc.UserID != "" {
		return inRollout(fc.UserID, name, f.RolloutPercent)
	}
	return f.RolloutPercent > 0
}

// EnabledFor is IsEnabled for a user and role. A nil FeatureFlags
// enables every feature.
func (ff *FeatureFlags) EnabledFor(name, userID, role string) bool {
	if ff == nil {
		return true
	}
	return ff.IsEnabled(name, &FeatureContext{UserID: userID, Role: role})
}

// AnyEnabled reports whether the feature is on globally or for some user
// through an override. Used to decide whether to set up its backing service.
func (ff *FeatureFlags) AnyEnabled(name string) bool {
	if ff == nil {
		return true
	}
	if ff.IsEnabled(name, nil) {
		return true
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	for _, byName := range ff.overrides {
		if byName[name] {
			return true
		}
	}
	return false
}

// inRollout hashes user and feature so a user keeps the same answer.
func inRollout(userID, name string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(name))
	h.Write([]byte(userID))
	return int(h.Sum32()%100) < percent
}

// SetUserOverride forces a feature on or off for one user.
func (ff *FeatureFlags) SetUserOverride(userID, name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.overrides[userID] == nil {
		ff.overrides[userID] = make(map[string]bool)
	}
	ff.overrides[userID][name] = enabled
}

// SetRolloutPercent changes the rollout. Zero switches the feature off.
func (ff *FeatureFlags) SetRolloutPercent(name string, percent int) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	ff.mu.Lock()
	defer ff.mu.Unlock()

	f, ok := ff.features[name]
	if !ok {
		return ErrFeatureNotFound
	}
	f.RolloutPercent = percent
	f.Enabled = percent > 0
	return nil
}

func (ff *FeatureFlags) EnableFeature(name string) error  { return ff.SetRolloutPercent(name, 100) }
func (ff *FeatureFlags) DisableFeature(name string) error { return ff.SetRolloutPercent(name, 0) }

// Features returns copies of every feature, sorted by name.
func (ff *FeatureFlags) Features() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		c := *f
		c.TargetRoles = append([]string(nil), f.TargetRoles...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
