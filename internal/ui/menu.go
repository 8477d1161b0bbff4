package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	hintStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

// MenuItems are the actions of the main menu, in menu-number order.
var MenuItems = []string{
	"Add Task",
	"Set Task Priority",
	"Mark as Completed",
	"Display All Tasks",
	"Display Incomplete Tasks",
	"Save Tasks to File",
	"Exit",
}

// ExitChoice is the menu number that ends the program.
const ExitChoice = 7

type MenuModel struct {
	choices  []string
	cursor   int
	selected int
	quitting bool
}

func NewMenuModel() MenuModel {
	return MenuModel{
		choices: MenuItems,
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.selected = ExitChoice
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		case "1", "2", "3", "4", "5", "6", "7":
			m.cursor = int(msg.String()[0] - '1')

		case "enter":
			m.selected = m.cursor + 1
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Tasks"))
	s.WriteString("\n\n")

	for i, choice := range m.choices {
		if m.cursor == i {
			s.WriteString(selectedItemStyle.Render(fmt.Sprintf("> %d. %s", i+1, choice)))
		} else {
			s.WriteString(itemStyle.Render(fmt.Sprintf("  %d. %s", i+1, choice)))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(hintStyle.Render("(use arrow keys, j/k or a number to move, enter to select, q to quit)"))
	s.WriteString("\n")

	return s.String()
}

// Selected returns the chosen 1-based menu number, or 0 if nothing was chosen.
func (m MenuModel) Selected() int {
	return m.selected
}

// RunMenu shows the picker and returns the chosen menu number.
func RunMenu() (int, error) {
	m := NewMenuModel()
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return 0, err
	}
	return finalModel.(MenuModel).Selected(), nil
}
