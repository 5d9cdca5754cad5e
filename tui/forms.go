package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// form is a vertical stack of labelled text inputs with one focused.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
}

type field struct {
	label       string
	placeholder string
	secret      bool
}

func newForm(title string, fields ...field) form {
	f := form{title: title}
	for _, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd.placeholder
		ti.CharLimit = 512
		ti.Width = 48
		ti.Prompt = "› "
		if fd.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, ti)
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(index int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	if index < 0 {
		index = len(f.inputs) - 1
	}
	if index >= len(f.inputs) {
		index = 0
	}
	f.focus = index
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == index {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *form) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

func (f *form) set(index int, value string) {
	if index >= 0 && index < len(f.inputs) {
		f.inputs[index].SetValue(value)
	}
}

func (f form) value(index int) string {
	if index < 0 || index >= len(f.inputs) {
		return ""
	}
	return f.inputs[index].Value()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) view() string {
	labelStyle := lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("245"))
	focusedLabel := labelStyle.Foreground(lipgloss.Color("5")).Bold(true)

	lines := []string{lipgloss.NewStyle().Bold(true).Render(f.title), ""}
	for i, input := range f.inputs {
		style := labelStyle
		if i == f.focus {
			style = focusedLabel
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, style.Render(f.labels[i]), input.View()))
	}
	return strings.Join(lines, "\n")
}
