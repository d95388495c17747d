package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Faultbox/sonoir/internal/configurator"
	"github.com/Faultbox/sonoir/internal/share"
)

// wizardModel walks the catalog in the terminal and prints a share link.
type wizardModel struct {
	session *configurator.Session
	codec   *share.Codec
	baseURL string

	link    string
	message string
}

func newWizardModel(session *configurator.Session, codec *share.Codec, baseURL string) wizardModel {
	return wizardModel{session: session, codec: codec, baseURL: baseURL}
}

// Init implements tea.Model.
func (m wizardModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.message = ""

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyLeft:
		m.session.Prev()
	case tea.KeyRight:
		m.session.Next()
	case tea.KeyEnter:
		m.buildLink()
	case tea.KeyRunes:
		m.rune(string(key.Runes))
	}
	return m, nil
}

func (m *wizardModel) rune(r string) {
	switch r {
	case "1", "2":
		i := int(r[0] - '1')
		mats := m.session.Current().Materials
		if i < len(mats) {
			m.report(m.session.SelectMaterial(mats[i].Name))
		}
	case "q", "w":
		i := strings.Index("qw", r)
		colors := m.session.Colors()
		if i < len(colors) {
			m.report(m.session.SelectColor(colors[i]))
		} else {
			m.message = "pick a material first"
		}
	case "s":
		m.buildLink()
	}
}

func (m *wizardModel) report(err error) {
	if err != nil {
		m.message = err.Error()
	}
}

func (m *wizardModel) buildLink() {
	code, err := m.codec.Encode(m.session.Selections())
	if err != nil {
		m.message = err.Error()
		return
	}
	link, err := share.Link(m.baseURL, code)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.link = link
}

// View implements tea.Model.
func (m wizardModel) View() string {
	var b strings.Builder
	s := m.session
	step := s.Current()
	sel := s.Selection()

	b.WriteString("sonoir configurator\n")
	b.WriteString("===================\n\n")
	fmt.Fprintf(&b, "Step %d/%d: %s (%s)  %.0f%%\n\n", s.Step()+1, s.Total(), step.Title, step.PartName, s.Progress())

	for i, mat := range step.Materials {
		marker := " "
		if mat.Name == sel.Option {
			marker = ">"
		}
		fmt.Fprintf(&b, " %s [%d] %s\n", marker, i+1, mat.Name)
	}
	if colors := s.Colors(); len(colors) > 0 {
		b.WriteString("\n")
		for i, col := range colors {
			marker := " "
			if col == sel.Color {
				marker = ">"
			}
			fmt.Fprintf(&b, " %s [%c] %s %s\n", marker, "qw"[i], col, s.Catalog().Hex(col))
		}
	}

	if m.message != "" {
		fmt.Fprintf(&b, "\n! %s\n", m.message)
	}
	if m.link != "" {
		fmt.Fprintf(&b, "\nShare: %s\n", m.link)
	}

	b.WriteString("\n(←/→ step, 1/2 material, q/w color, s or Enter share link, Esc quit)")
	return b.String()
}
