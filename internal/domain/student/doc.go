// Package student contains the student side of Recyclify: the student record
// mirrored from the backend, recycling tasks, class quests and the weekly
// streak gift.
//
// # Streak gift
//
// A student earns a gift every seven consecutive days of activity:
//
//	status := s.GiftStatus(timeutil.Now())
//	if status.Claimable {
//	    points, err := repo.AwardGift(ctx, s.StudentID)
//	}
//
// The calendar day is the Singapore date, so a gift claimed late in the
// evening in UTC still counts for the Singapore day it was claimed on.
//
// # Quests
//
// Class quests are shared goals. Quest.Percent reports a one-decimal
// percentage for display and QuestSummary counts the completed ones.
package student
