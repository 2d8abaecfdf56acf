package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the console's color palette.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	TabActive        lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	ErrorText   lipgloss.Color
	SuccessText lipgloss.Color
	ReadOnly    lipgloss.Color
}

// DefaultTheme is tuned for 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	TabActive:        lipgloss.Color("75"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	ErrorText:   lipgloss.Color("196"),
	SuccessText: lipgloss.Color("114"),
	ReadOnly:    lipgloss.Color("243"),
}

type styles struct {
	normal   lipgloss.Style
	faint    lipgloss.Style
	selected lipgloss.Style
	header   lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	help     lipgloss.Style
	errText  lipgloss.Style
	okText   lipgloss.Style
	readOnly lipgloss.Style
	section  lipgloss.Style
}

func newStyles(theme Theme) styles {
	return styles{
		normal:   lipgloss.NewStyle().Foreground(theme.NormalText),
		faint:    lipgloss.NewStyle().Foreground(theme.FaintText),
		selected: lipgloss.NewStyle().Foreground(theme.SelectedForeground).Background(theme.SelectedBackground).Bold(true),
		header:   lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true),
		tab:      lipgloss.NewStyle().Foreground(theme.FaintText).Padding(0, 1),
		tabOn:    lipgloss.NewStyle().Foreground(theme.TabActive).Bold(true).Underline(true).Padding(0, 1),
		help:     lipgloss.NewStyle().Foreground(theme.HelpText),
		errText:  lipgloss.NewStyle().Foreground(theme.ErrorText),
		okText:   lipgloss.NewStyle().Foreground(theme.SuccessText),
		readOnly: lipgloss.NewStyle().Foreground(theme.ReadOnly),
		section:  lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(theme.BorderColor),
	}
}
