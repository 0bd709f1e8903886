package reward

import (
	"context"
	"io"
)

// NewItem is a reward being added, with an optional image upload.
type NewItem struct {
	Item
	ImageName string
	Image     io.Reader
}

// Repository is the admin inventory backend.
type Repository interface {
	ListRewards(ctx context.Context) ([]Item, error)
	GetReward(ctx context.Context, id string) (*Item, error)
	CreateReward(ctx context.Context, item NewItem) error
	UpdateReward(ctx context.Context, item Item) (*Item, error)
	ToggleAvailability(ctx context.Context, id string) (*Item, error)
}
