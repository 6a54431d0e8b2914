package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tasklaunch/convention"
	"github.com/kingrea/tasklaunch/launcher"
	"github.com/kingrea/tasklaunch/task"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// HeaderStyle renders task headers on a styled console.
func HeaderStyle(name string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).Render(name)
}

// menuItem implements list.Item for one registered task.
type menuItem struct {
	name string
	desc string
}

func (i menuItem) Title() string       { return i.name }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.name + " " + convention.Key(i.name) }

func describe(t *task.Task) string {
	var parts []string
	for _, arg := range t.Args {
		if arg.IsList() {
			parts = append(parts, fmt.Sprintf("%s[list %q]", arg.Name, arg.Separator))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", arg.Name, arg.Coercer.Label()))
	}
	desc := "no arguments"
	if len(parts) > 0 {
		desc = strings.Join(parts, ", ")
	}
	if !t.Repeat {
		desc += " · runs once"
	}
	if t.Detail {
		desc += " · detailed"
	}
	return desc
}

// Picker is a bubbletea model listing the tasks of a set. Enter selects the
// highlighted task; q or esc quits without one.
type Picker struct {
	menu     list.Model
	selected string
	quitting bool
}

// NewPicker builds a picker over set.
func NewPicker(set *launcher.Set) *Picker {
	var items []list.Item
	if set != nil {
		for _, t := range set.All() {
			items = append(items, menuItem{name: t.Name, desc: describe(t)})
		}
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Tasks"
	menu.Styles.Title = titleStyle
	menu.SetShowHelp(false)
	return &Picker{menu: menu}
}

// Selected returns the chosen task name, empty when the picker was cancelled.
func (p *Picker) Selected() string { return p.selected }

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.menu.SetSize(msg.Width, msg.Height-2)
		return p, nil
	case tea.KeyMsg:
		if p.menu.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			p.quitting = true
			return p, tea.Quit
		case "enter":
			if item, ok := p.menu.SelectedItem().(menuItem); ok {
				p.selected = item.name
			}
			p.quitting = true
			return p, tea.Quit
		}
	}
	var cmd tea.Cmd
	p.menu, cmd = p.menu.Update(msg)
	return p, cmd
}

func (p *Picker) View() string {
	if p.quitting {
		return ""
	}
	hint := hintStyle.Render("enter: run · /: filter · q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, p.menu.View(), hint)
}

// Pick runs the picker on the given terminal streams and returns the chosen
// task, or nil when the user quit.
func Pick(set *launcher.Set, in io.Reader, out io.Writer) (*task.Task, error) {
	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("tui: no tasks registered")
	}
	picker := NewPicker(set)
	program := tea.NewProgram(picker, tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return nil, fmt.Errorf("tui: run picker: %w", err)
	}
	if picker.Selected() == "" {
		return nil, nil
	}
	t, ok := set.Get(picker.Selected())
	if !ok {
		return nil, fmt.Errorf("tui: %w: %s", launcher.ErrTaskNotFound, picker.Selected())
	}
	return t, nil
}
