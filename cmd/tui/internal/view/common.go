package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen is the interface that all TUI screens implement.
type Screen interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenMonthMsg asks the root model to show one month of a tab.
type OpenMonthMsg struct {
	Year  int
	Month int
	Tab   string
}
