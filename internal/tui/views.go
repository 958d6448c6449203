package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkamanzi/farepulse/internal/cli"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateLoading:
		return m.theme.Muted.Render("Loading review queue…")
	case StateDetail:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

func (m Model) renderList() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render(cli.FlagIcon + " Misinformation review queue"))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(
		fmt.Sprintf("%d open, %d resolved this session", len(m.items), m.resolved)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(cli.FormatSuccess("Review queue is clear"))
		b.WriteString("\n")
		b.WriteString(m.theme.Muted.Render("Press q to quit."))
		b.WriteString("\n\n")
	} else {
		for i, item := range m.items {
			line := m.renderRow(item)
			if i == m.cursor {
				line = m.theme.Selected.Render("▸ " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		style := m.theme.Muted
		if m.statusIsErr {
			style = m.theme.Error
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) renderRow(item flagItem) string {
	rec := item.record

	topics := strings.Join(rec.SortedTopics(), ", ")
	if topics == "" {
		topics = "-"
	}

	excerptWidth := 48
	if m.width > 0 {
		excerptWidth = max(20, m.width-52)
	}

	return fmt.Sprintf("%s  %-6s  %.2f  %-20s  %s",
		rec.Record.Timestamp.Format("2006-01-02"),
		rec.Record.Source,
		rec.Confidence,
		truncate(topics, 20),
		truncate(collapseWhitespace(rec.Record.RawText), excerptWidth),
	)
}

func (m Model) renderDetail() string {
	if len(m.items) == 0 {
		return m.renderList()
	}
	rec := m.items[m.cursor].record

	var b strings.Builder
	writeField := func(label, value string) {
		b.WriteString(m.theme.Muted.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	writeField("Record", rec.Record.ID)
	writeField("Source", string(rec.Record.Source))
	writeField("Author", rec.Record.AuthorID)
	writeField("Language", string(rec.Record.Language))
	writeField("Published", rec.Record.Timestamp.Format("2006-01-02 15:04 MST"))
	if rec.Record.Title != "" {
		writeField("Title", rec.Record.Title)
	}
	if rec.Record.URL != "" {
		writeField("Link", rec.Record.URL)
	}
	if rec.ModelVersion != "" {
		writeField("Sentiment", fmt.Sprintf("%s (confidence %.2f)",
			cli.StyleSentiment(rec.Sentiment), rec.Confidence))
		writeField("Topics", strings.Join(rec.SortedTopics(), ", "))
		writeField("Model", rec.ModelVersion)
	} else {
		writeField("Sentiment", "not classified")
	}

	textWidth := 76
	if m.width > 0 {
		textWidth = max(40, m.width-8)
	}
	text := lipgloss.NewStyle().Width(textWidth).Render(rec.Record.RawText)

	actions := m.theme.Confirm.Render("c") + " confirm misinformation   " +
		m.theme.Dismiss.Render("d") + " dismiss flag   esc back"

	body := lipgloss.JoinVertical(lipgloss.Left, b.String(), text, "", actions)
	title := m.theme.Title.Render(cli.FlagIcon + " Flagged record")

	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Box.Render(body), m.help.View(m.keymap))
}

// truncate shortens s to limit runes, ellipsized.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// collapseWhitespace folds newlines and runs of spaces into one space
// so multi-line records stay on one list row.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
