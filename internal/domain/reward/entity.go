// Package reward models the redemption inventory managed by admins.
package reward

import (
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/pkg/validate"
)

// Item is a reward students can redeem points for.
// RequiredPoints and RewardQuantity are pointers so an unset value can be
// told apart from zero.
type Item struct {
	RewardID          shared.ID `json:"rewardID,omitempty"`
	RewardTitle       string    `json:"rewardTitle" validate:"notblank"`
	RewardDescription string    `json:"rewardDescription" validate:"notblank"`
	RequiredPoints    *int      `json:"requiredPoints" validate:"required,min=0"`
	RewardQuantity    *int      `json:"rewardQuantity" validate:"required,min=0"`
	IsAvailable       bool      `json:"isAvailable"`
	ImageURL          string    `json:"imageUrl,omitempty"`
}

// AllFieldsRequired is the message shown when any inventory field is unset.
const AllFieldsRequired = "All fields are required"

var itemMessages = validate.Messages{
	"rewardTitle":             AllFieldsRequired,
	"rewardDescription":       AllFieldsRequired,
	"requiredPoints.required": AllFieldsRequired,
	"rewardQuantity.required": AllFieldsRequired,
	"requiredPoints.min": "Required points cannot be negative",
	"rewardQuantity.min": "Quantity cannot be negative",
}

// Validate checks every field is set and numbers are non-negative.
func (it Item) Validate() error {
	fields, err := validate.Struct(it, itemMessages)
	if err != nil {
		return err
	}
	return shared.FieldErrors(fields)
}

// Points returns RequiredPoints or 0.
func (it Item) Points() int {
	if it.RequiredPoints == nil {
		return 0
	}
	return *it.RequiredPoints
}

// Quantity returns RewardQuantity or 0.
func (it Item) Quantity() int {
	if it.RewardQuantity == nil {
		return 0
	}
	return *it.RewardQuantity
}

// InStock reports whether the item can currently be redeemed.
func (it Item) InStock() bool {
	return it.IsAvailable && it.Quantity() > 0
}

// Search returns items whose title contains term, ignoring case. An empty
// term returns every item.
func Search(items []Item, term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	var out []Item
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.RewardTitle), term) {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the item with id.
func Find(items []Item, id shared.ID) (Item, error) {
	for _, it := range items {
		if it.RewardID == id {
			return it, nil
		}
	}
	return Item{}, shared.ErrRewardNotFound
}

// Replace swaps the item with the same ID for updated, as the inventory
// table does after a successful save.
func Replace(items []Item, updated Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if it.RewardID == updated.RewardID {
			it = updated
		}
		out[i] = it
	}
	return out
}

// IntPtr is a helper for building items in code.
func IntPtr(v int) *int { return &v }
