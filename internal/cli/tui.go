package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/printframe/pkg/layout"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// TemplateListModel - Interactive template selection
// =============================================================================

// TemplateListModel is the bubbletea model for interactive template selection.
type TemplateListModel struct {
	Templates []layout.Template
	Photos    int // photos about to be placed, for capacity hints
	Cursor    int
	Selected  *layout.Template
}

// NewTemplateListModel creates a picker over templates. The cursor starts on
// the first template that can hold all photos.
func NewTemplateListModel(templates []layout.Template, photos int) TemplateListModel {
	m := TemplateListModel{Templates: templates, Photos: photos}
	for i, t := range templates {
		if m.fits(t) {
			m.Cursor = i
			break
		}
	}
	return m
}

// fits reports whether t can place every photo.
func (m TemplateListModel) fits(t layout.Template) bool {
	switch {
	case t.FixedSlots > 0:
		return m.Photos <= t.FixedSlots
	case t.MaxPhotos > 0:
		return m.Photos <= t.MaxPhotos
	}
	return true
}

func (m TemplateListModel) Init() tea.Cmd {
	return nil
}

func (m TemplateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Templates)-1 {
				m.Cursor++
			}
		case "enter":
			t := m.Templates[m.Cursor]
			m.Selected = &t
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m TemplateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Template"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Templates))
	for i, t := range m.Templates {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, t.Name, capacity(t), t.Description}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Template", "Photos", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= len(m.Templates) {
				return lipgloss.NewStyle()
			}
			t := m.Templates[row]
			base := lipgloss.NewStyle()
			if !m.fits(t) {
				base = base.Foreground(colorDim)
			} else if col == 1 {
				base = base.Foreground(colorGreen)
			}
			if row == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	if m.Photos > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d photos", m.Photos)))
	}
	return b.String()
}

// capacity describes how many photos t takes.
func capacity(t layout.Template) string {
	switch {
	case t.FixedSlots > 0:
		return strconv.Itoa(t.FixedSlots)
	case t.MaxPhotos > 0:
		return "up to " + strconv.Itoa(t.MaxPhotos)
	}
	return "any"
}

// =============================================================================
// Helpers
// =============================================================================

// interactive reports whether stdin and stdout are both terminals.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// pickTemplate asks the user for a template. It returns "" when the user quits.
func pickTemplate(photos int) (string, error) {
	m := NewTemplateListModel(layout.Templates(), photos)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	fm, ok := final.(TemplateListModel)
	if !ok || fm.Selected == nil {
		return "", nil
	}
	return fm.Selected.Name, nil
}
