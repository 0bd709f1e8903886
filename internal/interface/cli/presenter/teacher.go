package presenter

import (
	"fmt"
	"strings"

	"github.com/recyclify/recyclify-client/internal/application/query"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// Classes renders the class list in rank order.
func (p *Presenter) Classes(classes []leaderboard.Class) string {
	t := NewTable("Classes", "Rank", "ID", "Class", "Points", "Description")
	for i, c := range classes {
		t.AddRow(leaderboard.Rank(i+1).String(), c.ClassID.String(), c.ClassName, fmt.Sprint(c.ClassPoints), c.ClassDescription)
	}
	return t.View(p.s, "No classes yet.")
}

// ClassDashboard renders the class page.
func (p *Presenter) ClassDashboard(d *query.ClassDashboard) string {
	var sb strings.Builder
	sb.WriteString(p.s.Title.Render(d.Class.ClassName))
	sb.WriteString("\n")
	if d.Class.ClassDescription != "" {
		sb.WriteString(p.s.Muted.Render(d.Class.ClassDescription))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Rank %s of %d classes, %d points overall, %d this week\n", d.Rank, d.ClassCount, d.Class.ClassPoints, d.WeekPoints)
	fmt.Fprintf(&sb, "Quests: %d/%d completed\n", d.QuestsDone, d.QuestsTotal)
	if d.HasNav {
		sb.WriteString(p.s.Muted.Render(fmt.Sprintf("< %s (%s)   %s (%s) >", d.Prev.ClassName, d.Prev.ClassID, d.Next.ClassName, d.Next.ClassID)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(p.series(d.Series))
	sb.WriteString(p.names("Top contributors", d.Top))
	sb.WriteString(p.names("Needs encouragement", d.Lowest))
	sb.WriteString("\n")

	t := NewTable("Students", "ID", "Name", "League", "Current", "Total", "Redeemed", "Email", "Parent email")
	for _, s := range d.Table {
		t.AddRow(s.StudentID.String(), s.Name(), string(s.League), fmt.Sprint(s.CurrentPoints),
			fmt.Sprint(s.TotalPoints), fmt.Sprint(s.Redemptions), s.Email(), s.ParentEmail())
	}
	sb.WriteString(t.View(p.s, "No students in this class."))
	sb.WriteString("\n")
	sb.WriteString(p.Quests(&query.QuestBoard{ClassID: d.Class.ClassID, Quests: d.Quests, Completed: d.QuestsDone, Total: d.QuestsTotal}))
	return sb.String()
}

func (p *Presenter) series(points []leaderboard.SeriesPoint) string {
	if len(points) == 0 {
		return p.s.Muted.Render("No points recorded this week.") + "\n"
	}
	peak := 0
	for _, pt := range points {
		if pt.Points > peak {
			peak = pt.Points
		}
	}
	var sb strings.Builder
	sb.WriteString(p.s.Heading.Render("Points this week"))
	sb.WriteString("\n")
	for _, pt := range points {
		bar := 0
		if peak > 0 {
			bar = pt.Points * 30 / peak
		}
		fmt.Fprintf(&sb, "%s %s %d\n", pt.Date, p.s.Good.Render(strings.Repeat("█", bar)), pt.Points)
	}
	return sb.String()
}

func (p *Presenter) names(title string, students []student.Student) string {
	if len(students) == 0 {
		return ""
	}
	parts := make([]string, len(students))
	for i, s := range students {
		parts[i] = fmt.Sprintf("%s (%d)", s.Name(), s.TotalPoints)
	}
	return p.s.Bold.Render(title+": ") + strings.Join(parts, ", ") + "\n"
}

// ClassLeaderboards renders every class with its ranked students.
func (p *Presenter) ClassLeaderboards(standings []query.ClassStanding) string {
	if len(standings) == 0 {
		return p.s.Muted.Render("No classes yet.") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(p.s.Title.Render("Class leaderboards"))
	sb.WriteString("\n")
	for _, st := range standings {
		fmt.Fprintf(&sb, "%s %s, %d points\n", p.s.Heading.Render(st.Rank.String()), p.s.Bold.Render(st.Class.ClassName), st.Class.ClassPoints)
		switch {
		case st.RosterErr != nil:
			sb.WriteString(p.s.Warn.Render("  Students could not be loaded."))
			sb.WriteString("\n")
		case st.TopContributor != nil:
			fmt.Fprintf(&sb, "  Top contributor: %s (%d)\n", st.TopContributor.Name(), st.TopContributor.TotalPoints)
		}
		for _, e := range st.Students {
			fmt.Fprintf(&sb, "  %-4s %s %d\n", e.Rank, e.Student.Name(), e.Student.TotalPoints)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
