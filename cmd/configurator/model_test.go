package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/sonoir/internal/configurator"
	"github.com/Faultbox/sonoir/internal/share"
)

func newTestModel(t *testing.T) wizardModel {
	t.Helper()
	catalog := configurator.DefaultCatalog()
	codec, err := catalog.Codec()
	require.NoError(t, err)
	return newWizardModel(configurator.NewSession(catalog), codec, "http://localhost:3000")
}

func press(t *testing.T, m wizardModel, msgs ...tea.KeyMsg) wizardModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(wizardModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectAndShare(t *testing.T) {
	m := press(t, newTestModel(t),
		runes("1"),
		runes("w"),
		tea.KeyMsg{Type: tea.KeyRight},
		runes("2"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.Equal(t, 1, m.session.Step())
	sel := m.session.Selections()
	assert.Equal(t, share.Selection{Option: "Chrome", Color: "bg-gray-500"}, sel[0])
	assert.Equal(t, share.Selection{Option: "Metal"}, sel[1])

	require.NotEmpty(t, m.link)
	code, err := share.FromURL(m.link)
	require.NoError(t, err)
	decoded, err := m.codec.Decode(code)
	require.NoError(t, err)
	assert.Equal(t, sel, decoded)

	assert.Contains(t, m.View(), "Share: http://localhost:3000?config=")
}

func TestColorBeforeMaterial(t *testing.T) {
	m := press(t, newTestModel(t), runes("q"))
	assert.Equal(t, "pick a material first", m.message)
	assert.Contains(t, m.View(), "pick a material first")

	m = press(t, m, runes("1"))
	assert.Empty(t, m.message)
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := newTestModel(t).Update(tea.KeyMsg{Type: k})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestViewListsChoices(t *testing.T) {
	m := press(t, newTestModel(t), runes("2"))
	v := m.View()
	assert.Contains(t, v, "Step 1/7: Center Part (sonoirWithGrille_2)")
	assert.Contains(t, v, "> [2] Aluminium")
	assert.Contains(t, v, "[q] bg-slate-300 #CBD5E1")
}
