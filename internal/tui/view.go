package tui

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slotwatch/internal/api"
)

// View renders the viewer.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.viewport.View())
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	desc := m.view.Descriptor
	title := fmt.Sprintf("%s  level %s  lines %d", desc.StreamID, desc.Level.Label(), desc.LineCap)
	return m.styles.Header.Width(m.width).Render(title)
}

func (m Model) renderStatus() string {
	if m.view.Err != nil {
		return m.styles.Error.Width(m.width).Render("error: " + m.view.Err.Error())
	}
	if m.notice != "" {
		return m.styles.Error.Width(m.width).Render(m.notice)
	}
	parts := []string{
		m.view.Mode.String(),
		fmt.Sprintf("%d entries", len(m.view.Entries)),
	}
	if m.view.HasCursor {
		parts = append(parts, "since "+m.view.Cursor)
	}
	if meta := m.view.Metadata; meta != nil {
		parts = append(parts, statusLabel(meta.Status))
		if meta.ProducerID != "" {
			parts = append(parts, meta.ProducerID)
		}
		if meta.LastError != "" {
			parts = append(parts, "producer error: "+meta.LastError)
		}
	}
	return m.styles.Status.Width(m.width).Render(strings.Join(parts, " | "))
}

func (m Model) renderHelp() string {
	items := make([]string, 0, len(keys.bindings()))
	for _, binding := range keys.bindings() {
		help := binding.Help()
		items = append(items, help.Key+" "+help.Desc)
	}
	return m.styles.Help.Render(strings.Join(items, " • "))
}

func (m Model) renderEntries() string {
	if len(m.view.Entries) == 0 {
		return m.styles.Help.Render("no entries")
	}
	lines := make([]string, 0, len(m.view.Entries))
	for _, entry := range m.view.Entries {
		lines = append(lines, m.renderEntry(entry))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEntry(entry api.LogEntry) string {
	parts := []string{
		m.styles.Timestamp.Render(entry.Timestamp),
		m.styles.level(entry.Level).Render(fmt.Sprintf("%-5s", string(entry.Level))),
	}
	if entry.Source != "" {
		parts = append(parts, m.styles.Source.Render("["+entry.Source+"]"))
	}
	parts = append(parts, entry.Message)
	return strings.Join(parts, " ")
}

func statusLabel(status api.StreamStatus) string {
	if status == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(string(status))
}
