// Package leaderboard ranks students and classes by recycling points and
// builds the views teachers use to compare classes.
package leaderboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank is a 1-based leaderboard position. Zero means unranked.
type Rank int

// IsValid reports whether the rank is a real position.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsPodium reports a top-three position.
func (r Rank) IsPodium() bool {
	return r >= 1 && r <= 3
}

// String returns "#n", or "-" when unranked.
func (r Rank) String() string {
	if !r.IsValid() {
		return "-"
	}
	return fmt.Sprintf("#%d", r)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS
// ══════════════════════════════════════════════════════════════════════════════

// Class is a school class with its accumulated points.
type Class struct {
	ClassID          shared.ID         `json:"classID"`
	ClassName        string            `json:"className"`
	ClassDescription string            `json:"classDescription"`
	ClassPoints      int               `json:"classPoints"`
	ClassImage       string            `json:"classImage,omitempty"`
	Students         []student.Student `json:"students,omitempty"`
}

// SortClasses returns classes ordered by points, highest first. Equal
// points keep their backend order.
func SortClasses(classes []Class) []Class {
	out := make([]Class, len(classes))
	copy(out, classes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClassPoints > out[j].ClassPoints })
	return out
}

// ClassRank returns the 1-based position of classID among classes sorted by
// points, or 0 when absent.
func ClassRank(classes []Class, classID shared.ID) Rank {
	for i, c := range SortClasses(classes) {
		if c.ClassID == classID {
			return Rank(i + 1)
		}
	}
	return 0
}

// FindClass returns the class with classID.
func FindClass(classes []Class, classID shared.ID) (Class, error) {
	for _, c := range classes {
		if c.ClassID == classID {
			return c, nil
		}
	}
	return Class{}, shared.ErrClassNotFound
}

// Neighbours returns the previous and next class around current, wrapping at
// both ends. ok is false with fewer than two classes or when current is absent.
func Neighbours(classes []Class, current shared.ID) (prev, next Class, ok bool) {
	if len(classes) <= 1 {
		return Class{}, Class{}, false
	}
	idx := -1
	for i, c := range classes {
		if c.ClassID == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Class{}, Class{}, false
	}
	n := len(classes)
	return classes[(idx-1+n)%n], classes[(idx+1)%n], true
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Entry is a ranked student.
type Entry struct {
	Rank    Rank
	Student student.Student
}

// RankStudents orders students by total points, highest first, ties broken
// by name, and assigns competition ranks (1, 2, 2, 4).
func RankStudents(students []student.Student) []Entry {
	sorted := make([]student.Student, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalPoints != sorted[j].TotalPoints {
			return sorted[i].TotalPoints > sorted[j].TotalPoints
		}
		return strings.ToLower(sorted[i].Name()) < strings.ToLower(sorted[j].Name())
	})

	out := make([]Entry, len(sorted))
	for i, s := range sorted {
		rank := Rank(i + 1)
		if i > 0 && s.TotalPoints == sorted[i-1].TotalPoints {
			rank = out[i-1].Rank
		}
		out[i] = Entry{Rank: rank, Student: s}
	}
	return out
}

// Position finds a student's entry.
func Position(entries []Entry, studentID shared.ID) (Entry, bool) {
	for _, e := range entries {
		if e.Student.StudentID == studentID {
			return e, true
		}
	}
	return Entry{}, false
}

// TopContributor returns the student with the most total points. The first
// student wins a tie. Returns ErrNoTopContributor for an empty class.
func TopContributor(students []student.Student) (student.Student, error) {
	if len(students) == 0 {
		return student.Student{}, shared.ErrNoTopContributor
	}
	top := students[0]
	for _, s := range students[1:] {
		if s.TotalPoints > top.TotalPoints {
			top = s
		}
	}
	return top, nil
}

// TopThree returns up to three students with positive points, highest first.
func TopThree(students []student.Student) []student.Student {
	var scoring []student.Student
	for _, s := range students {
		if s.TotalPoints > 0 {
			scoring = append(scoring, s)
		}
	}
	sort.SliceStable(scoring, func(i, j int) bool { return scoring[i].TotalPoints > scoring[j].TotalPoints })
	if len(scoring) > 3 {
		scoring = scoring[:3]
	}
	return scoring
}

// LowestThree returns the three lowest scorers, lowest first, without anyone
// already in top. May return fewer than three.
func LowestThree(students []student.Student, top []student.Student) []student.Student {
	sorted := make([]student.Student, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalPoints < sorted[j].TotalPoints })
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	inTop := make(map[shared.ID]bool, len(top))
	for _, s := range top {
		inTop[s.StudentID] = true
	}
	out := sorted[:0]
	for _, s := range sorted {
		if !inTop[s.StudentID] {
			out = append(out, s)
		}
	}
	return out
}
