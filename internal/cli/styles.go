package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formwizard/pkg/widget"
)

type styles struct {
	title   lipgloss.Style
	step    lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		step:    lipgloss.NewStyle().Bold(true).Border(lipgloss.NormalBorder(), false, false, true, false),
		label:   lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

func (s styles) severity(severity string) lipgloss.Style {
	switch severity {
	case widget.SeveritySuccess:
		return s.success
	case widget.SeverityWarning:
		return s.warning
	case widget.SeverityDanger:
		return s.danger
	default:
		return s.info
	}
}
