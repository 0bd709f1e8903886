package presenter

import (
	"fmt"
	"strings"

	"github.com/recyclify/recyclify-client/internal/application/command"
	"github.com/recyclify/recyclify-client/internal/application/query"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// Presenter turns query and command results into terminal text.
type Presenter struct {
	s Styles
}

// New creates a Presenter.
func New(s Styles) *Presenter {
	return &Presenter{s: s}
}

// Profile renders the signed-in user card.
func (p *Presenter) Profile(prof *query.Profile) string {
	u := prof.User
	lines := []string{
		p.s.Bold.Render(u.DisplayName()) + p.s.Muted.Render(" @"+u.Name),
		fmt.Sprintf("Role:  %s", u.Role),
		fmt.Sprintf("Email: %s %s", u.Email, p.check(u.EmailVerified)),
		fmt.Sprintf("Phone: %s %s", u.ContactNumber, p.check(u.PhoneVerified)),
	}
	if prof.AvatarURL != "" {
		lines = append(lines, p.s.Muted.Render("Avatar: "+prof.AvatarURL))
	}
	if prof.BannerURL != "" {
		lines = append(lines, p.s.Muted.Render("Banner: "+prof.BannerURL))
	}
	return p.s.Card.Render(strings.Join(lines, "\n")) + "\n"
}

func (p *Presenter) check(ok bool) string {
	if ok {
		return p.s.Good.Render("(verified)")
	}
	return p.s.Warn.Render("(unverified)")
}

// StudentHome renders the home page: points, streak gift and tasks.
func (p *Presenter) StudentHome(home *query.StudentHome) string {
	var sb strings.Builder
	s := home.Student
	sb.WriteString(p.s.Title.Render(fmt.Sprintf("Welcome back, %s", s.Name())))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s league\n", s.League.Medal(), s.League)
	fmt.Fprintf(&sb, "Points: %d to spend, %d earned in total, %d redemptions\n", s.CurrentPoints, s.TotalPoints, s.Redemptions)
	sb.WriteString(p.gift(home.Gift, home.GiftEnabled))
	sb.WriteString("\n")

	t := NewTable("Tasks", "Task", "Points", "Status")
	for _, task := range home.Tasks {
		t.AddRow(task.TaskTitle, fmt.Sprint(task.TaskPoints), p.taskState(task.State()))
	}
	sb.WriteString(t.View(p.s, "No tasks assigned."))
	return sb.String()
}

func (p *Presenter) gift(g student.GiftStatus, enabled bool) string {
	line := fmt.Sprintf("Streak: %d days. ", g.Streak)
	switch {
	case !enabled:
		return line + p.s.Muted.Render("Streak gifts are turned off.") + "\n"
	case g.Claimable:
		return line + p.s.Good.Render("Your streak gift is ready! Run `recyclify student claim-gift`.") + "\n"
	case g.ClaimedToday:
		return line + p.s.Muted.Render("Gift claimed today.") + "\n"
	default:
		return line + fmt.Sprintf("%d more day(s) to your next gift.\n", g.RemainingDays)
	}
}

func (p *Presenter) taskState(st student.TaskState) string {
	switch st {
	case student.TaskVerified:
		return p.s.Good.Render("verified")
	case student.TaskPending:
		return p.s.Warn.Render("pending verification")
	default:
		return "open"
	}
}

// StudentLeaderboard renders the school leaderboard with the student's own
// position.
func (p *Presenter) StudentLeaderboard(lb *query.StudentLeaderboard) string {
	var sb strings.Builder
	sb.WriteString(p.s.Title.Render("Leaderboard"))
	sb.WriteString("\n")
	if lb.Ranked {
		fmt.Fprintf(&sb, "You are %s with %d points.\n\n", lb.Me.Rank, lb.Me.Student.TotalPoints)
	}

	t := NewTable("", "Rank", "Student", "League", "Points")
	for _, e := range lb.Entries {
		name := e.Student.Name()
		if lb.Ranked && e.Student.StudentID == lb.Me.Student.StudentID {
			name = p.s.Bold.Render(name + " (you)")
		}
		t.AddRow(e.Rank.String(), name, string(e.Student.League), fmt.Sprint(e.Student.TotalPoints))
	}
	sb.WriteString(t.View(p.s, "Nobody has earned points yet."))
	return sb.String()
}

// Quests renders quest progress.
func (p *Presenter) Quests(b *query.QuestBoard) string {
	t := NewTable(fmt.Sprintf("Quests (%d/%d completed)", b.Completed, b.Total), "Quest", "Type", "Points", "Progress")
	for _, q := range b.Quests {
		progress := fmt.Sprintf("%d/%d (%.1f%%)", q.AmountCompleted, q.TotalAmountToComplete, q.Percent())
		if q.Completed() {
			progress = p.s.Good.Render(progress)
		}
		t.AddRow(q.QuestTitle, q.QuestType, fmt.Sprint(q.QuestPoints), progress)
	}
	return t.View(p.s, "No quests for this class.")
}

// GiftClaim renders the outcome of a gift claim.
func (p *Presenter) GiftClaim(c *command.GiftClaim) string {
	return p.s.Good.Render(fmt.Sprintf("You received %d points for your %d-day streak!", c.PointsAwarded, c.Streak)) +
		fmt.Sprintf("\nBalance: %d points\n", c.Balance)
}

// Recognition renders a scan result.
func (p *Presenter) Recognition(r *student.Recognition) string {
	verdict := p.s.Bad.Render("Not recyclable")
	if r.Recyclable {
		verdict = p.s.Good.Render("Recyclable")
	}
	out := fmt.Sprintf("%s: %s\n", p.s.Bold.Render(r.Category), verdict)
	if r.Message != "" {
		out += r.Message + "\n"
	}
	return out
}
