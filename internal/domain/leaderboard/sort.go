package leaderboard

import (
	"sort"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// Column is a sortable column of the class student table.
type Column string

const (
	ColumnName          Column = "name"
	ColumnLeague        Column = "league"
	ColumnCurrentPoints Column = "currentPoints"
	ColumnTotalPoints   Column = "totalPoints"
	ColumnRedemptions   Column = "redemptions"
	ColumnStudentEmail  Column = "studentEmail"
	ColumnParentEmail   Column = "parentEmail"
)

// Columns lists the sortable columns in table order.
var Columns = []Column{
	ColumnName, ColumnLeague, ColumnCurrentPoints, ColumnTotalPoints,
	ColumnRedemptions, ColumnStudentEmail, ColumnParentEmail,
}

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Toggle flips the direction. The first click on a column sorts ascending.
func (o Order) Toggle() Order {
	if o == Asc {
		return Desc
	}
	return Asc
}

// SortState remembers the direction of the one column last sorted.
type SortState struct {
	Column Column
	Order  Order
}

// Next returns the state after clicking column.
func (s SortState) Next(column Column) SortState {
	if s.Column != column {
		return SortState{Column: column, Order: Asc}
	}
	return SortState{Column: column, Order: s.Order.Toggle()}
}

// ParseColumn validates a column name.
func ParseColumn(name string) (Column, error) {
	for _, c := range Columns {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", shared.ErrUnknownSortKey
}

type sortValue struct {
	text   string
	num    int
	isText bool
}

func valueOf(s student.Student, column Column) sortValue {
	switch column {
	case ColumnName:
		return sortValue{text: s.Name(), isText: true}
	case ColumnLeague:
		return sortValue{text: string(s.League), isText: true}
	case ColumnStudentEmail:
		return sortValue{text: s.Email(), isText: true}
	case ColumnParentEmail:
		return sortValue{text: s.ParentEmail(), isText: true}
	case ColumnCurrentPoints:
		return sortValue{num: s.CurrentPoints}
	case ColumnTotalPoints:
		return sortValue{num: s.TotalPoints}
	default:
		return sortValue{num: s.Redemptions}
	}
}

// SortStudents returns students sorted by column. Text columns compare
// case-insensitively; missing emails sort as "N/A".
func SortStudents(students []student.Student, column Column, order Order) ([]student.Student, error) {
	if _, err := ParseColumn(string(column)); err != nil {
		return nil, err
	}

	out := make([]student.Student, len(students))
	copy(out, students)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := valueOf(out[i], column), valueOf(out[j], column)
		if order == Desc {
			a, b = b, a
		}
		if a.isText {
			return strings.ToLower(a.text) < strings.ToLower(b.text)
		}
		return a.num < b.num
	})
	return out, nil
}
