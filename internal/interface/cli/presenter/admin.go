package presenter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/recyclify/recyclify-client/internal/application/query"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// Users renders the user management table.
func (p *Presenter) Users(users []identity.ManagedUser) string {
	t := NewTable("Users", "ID", "Username", "Name", "Email", "Contact", "Role")
	for _, u := range users {
		t.AddRow(u.ID.String(), u.Name, strings.TrimSpace(u.FName+" "+u.LName), u.Email, u.ContactNumber, string(u.UserRole))
	}
	return t.View(p.s, "No users match.")
}

// Rewards renders the inventory table.
func (p *Presenter) Rewards(items []reward.Item) string {
	t := NewTable("Inventory", "ID", "Reward", "Points", "Quantity", "Status")
	for _, it := range items {
		t.AddRow(it.RewardID.String(), it.RewardTitle, fmt.Sprint(it.Points()), fmt.Sprint(it.Quantity()), p.availability(it))
	}
	return t.View(p.s, "No rewards match.")
}

// Reward renders one inventory item.
func (p *Presenter) Reward(it *reward.Item) string {
	lines := []string{
		p.s.Bold.Render(it.RewardTitle) + p.s.Muted.Render(" #"+it.RewardID.String()),
		it.RewardDescription,
		fmt.Sprintf("%d points, %d left, %s", it.Points(), it.Quantity(), p.availability(*it)),
	}
	if it.ImageURL != "" {
		lines = append(lines, p.s.Muted.Render(it.ImageURL))
	}
	return p.s.Card.Render(strings.Join(lines, "\n")) + "\n"
}

func (p *Presenter) availability(it reward.Item) string {
	switch {
	case it.InStock():
		return p.s.Good.Render("available")
	case it.IsAvailable:
		return p.s.Warn.Render("out of stock")
	default:
		return p.s.Muted.Render("hidden")
	}
}

// Messages renders the contact inbox.
func (p *Presenter) Messages(msgs []identity.ContactMessage) string {
	t := NewTable("Messages", "ID", "From", "Email", "Received", "Replied", "Message")
	for _, m := range msgs {
		replied := p.s.Warn.Render("no")
		if m.HasReplied {
			replied = p.s.Good.Render("yes")
		}
		received := ""
		if !m.CreatedAt.IsZero() {
			received = m.CreatedAt.Format("2006-01-02 15:04")
		}
		t.AddRow(m.ID.String(), m.SenderName, m.SenderEmail, received, replied, truncate(m.Message, 60))
	}
	return t.View(p.s, "No messages match.")
}

// AdminOverview renders the dashboard counters.
func (p *Presenter) AdminOverview(o *query.AdminOverview) string {
	var sb strings.Builder
	sb.WriteString(p.s.Title.Render("Admin dashboard"))
	sb.WriteString("\n")

	roles := make([]shared.Role, 0, len(o.UsersByRole))
	for r := range o.UsersByRole {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	total := 0
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = fmt.Sprintf("%d %s", o.UsersByRole[r], r)
		total += o.UsersByRole[r]
	}
	fmt.Fprintf(&sb, "Users:    %d (%s)\n", total, strings.Join(parts, ", "))
	fmt.Fprintf(&sb, "Rewards:  %d, %d in stock\n", o.Rewards, o.RewardsInStock)
	fmt.Fprintf(&sb, "Messages: %d, %s\n", o.Messages, p.pending(o.PendingMessages))
	return sb.String()
}

func (p *Presenter) pending(n int) string {
	if n == 0 {
		return p.s.Good.Render("all replied")
	}
	return p.s.Warn.Render(fmt.Sprintf("%d awaiting reply", n))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
