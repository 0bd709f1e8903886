package recyclify

import (
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

var (
	_ session.ProfileFetcher     = (*Client)(nil)
	_ student.Repository         = (*Client)(nil)
	_ leaderboard.Repository     = (*Client)(nil)
	_ reward.Repository          = (*Client)(nil)
	_ identity.AccountRepository = (*Client)(nil)
	_ identity.AdminRepository   = (*Client)(nil)
	_ identity.PublicRepository  = (*Client)(nil)
)
