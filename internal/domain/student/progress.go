package student

import (
	"math"
	"time"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/pkg/timeutil"
)

// StreakCycle is the number of streak days between gifts.
const StreakCycle = 7

// GiftStatus describes where a student is in the streak gift cycle.
type GiftStatus struct {
	Streak         int
	RemainingDays  int // days of streak still needed; 0 at a gift boundary
	ClaimedToday   bool
	Claimable      bool
	LastClaimedDay string // YYYY-MM-DD in Singapore time, "" if never claimed
}

// StreakGift evaluates the streak gift at now. The gift is claimable when the
// streak sits on a positive multiple of seven and it was not already claimed
// on the current Singapore calendar day.
func StreakGift(streak int, lastClaimed *time.Time, now time.Time) GiftStatus {
	remaining := (StreakCycle - streak%StreakCycle) % StreakCycle
	if streak == 0 {
		remaining = StreakCycle
	}

	st := GiftStatus{Streak: streak, RemainingDays: remaining}
	if lastClaimed != nil && !lastClaimed.IsZero() {
		st.LastClaimedDay = timeutil.DateKey(*lastClaimed)
		st.ClaimedToday = st.LastClaimedDay == timeutil.DateKey(now)
	}
	st.Claimable = remaining == 0 && streak > 0 && !st.ClaimedToday
	return st
}

// Quest is a class-wide recycling goal.
type Quest struct {
	QuestID               shared.ID `json:"questID"`
	QuestTitle            string    `json:"questTitle"`
	QuestDescription      string    `json:"questDescription"`
	QuestType             string    `json:"questType"`
	QuestPoints           int       `json:"questPoints"`
	AmountCompleted       int       `json:"amountCompleted"`
	TotalAmountToComplete int       `json:"totalAmountToComplete"`
}

// Completed reports whether the goal amount has been reached exactly.
func (q Quest) Completed() bool {
	return q.AmountCompleted == q.TotalAmountToComplete
}

// Percent returns progress as a percentage rounded to one decimal.
// A quest with no target reports 0, or 100 when completed.
func (q Quest) Percent() float64 {
	if q.TotalAmountToComplete <= 0 {
		if q.Completed() {
			return 100
		}
		return 0
	}
	p := float64(q.AmountCompleted) / float64(q.TotalAmountToComplete) * 100
	return math.Round(p*10) / 10
}

// QuestSummary counts completed quests.
func QuestSummary(quests []Quest) (completed, total int) {
	for _, q := range quests {
		if q.Completed() {
			completed++
		}
	}
	return completed, len(quests)
}
