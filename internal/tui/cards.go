package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/hylla/fieldboard/internal/domain"
)

// CardRenderer draws one item as a card at most width cells wide.
type CardRenderer func(item domain.Item, width int) string

var (
	cardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	cardMetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
)

// JobCard renders a scheduled job: title, customer and site, then appointment and value.
func JobCard(item domain.Item, width int) string {
	lines := []string{cardTitleStyle.Render(truncate(item.Title, width))}
	if who := joinNonEmpty(" · ", item.Contact, item.Address); who != "" {
		lines = append(lines, cardMetaStyle.Render(truncate(who, width)))
	}
	meta := []string{}
	if item.ScheduledAt != nil {
		meta = append(meta, formatAppointment(*item.ScheduledAt))
	}
	if item.ValueCents != 0 {
		meta = append(meta, domain.FormatCents(item.ValueCents))
	}
	if len(meta) > 0 {
		lines = append(lines, cardValueStyle.Render(truncate(strings.Join(meta, "  "), width)))
	}
	if labels := summarizeLabels(item.Labels, 3); labels != "" {
		lines = append(lines, cardLabelStyle.Render(truncate(labels, width)))
	}
	return strings.Join(lines, "\n")
}

// LeadCard renders a sales lead: title, contact and source, then estimate.
func LeadCard(item domain.Item, width int) string {
	lines := []string{cardTitleStyle.Render(truncate(item.Title, width))}
	if who := joinNonEmpty(" via ", item.Contact, item.Source); who != "" {
		lines = append(lines, cardMetaStyle.Render(truncate(who, width)))
	}
	if item.ValueCents != 0 {
		lines = append(lines, cardValueStyle.Render(truncate("est. "+domain.FormatCents(item.ValueCents), width)))
	}
	if labels := summarizeLabels(item.Labels, 3); labels != "" {
		lines = append(lines, cardLabelStyle.Render(truncate(labels, width)))
	}
	return strings.Join(lines, "\n")
}

// DefaultCardRenderers returns the stock renderer for each board kind.
func DefaultCardRenderers() map[domain.BoardKind]CardRenderer {
	return map[domain.BoardKind]CardRenderer{
		domain.BoardKindJobs:  JobCard,
		domain.BoardKindLeads: LeadCard,
	}
}

// cardFor picks the renderer for kind, falling back to JobCard.
func (m Model) cardFor(kind domain.BoardKind) CardRenderer {
	if r, ok := m.renderers[kind]; ok && r != nil {
		return r
	}
	return JobCard
}

func formatAppointment(at time.Time) string {
	return at.Local().Format("Mon Jan 2 15:04")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// summarizeLabels renders labels as "#a,#b+2".
func summarizeLabels(labels []string, maxLabels int) string {
	if len(labels) == 0 {
		return ""
	}
	if maxLabels <= 0 {
		maxLabels = 1
	}
	visible := labels
	extra := 0
	if len(labels) > maxLabels {
		visible = labels[:maxLabels]
		extra = len(labels) - maxLabels
	}
	joined := "#" + strings.Join(visible, ",#")
	if extra > 0 {
		joined += fmt.Sprintf("+%d", extra)
	}
	return joined
}
