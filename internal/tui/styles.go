package tui

import (
	"github.com/charmbracelet/lipgloss"

	"slotwatch/internal/api"
)

type styles struct {
	Header    lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Timestamp lipgloss.Style
	Source    lipgloss.Style
	Levels    map[api.Level]lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#5A56E0")).Padding(0, 1),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Background(lipgloss.Color("#303030")).Padding(0, 1),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#B22222")).Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Source:    lipgloss.NewStyle().Foreground(lipgloss.Color("66")),
		Levels: map[api.Level]lipgloss.Style{
			api.LevelError: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
			api.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			api.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			api.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}

func (s styles) level(l api.Level) lipgloss.Style {
	if style, ok := s.Levels[l]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
