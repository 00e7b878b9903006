package tui_test

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/store"
	"github.com/revealboard/revealboard/dashboard/internal/tui"
	"github.com/revealboard/revealboard/pkg/types"
)

func refresh(t *testing.T, m *tui.Model) string {
	t.Helper()
	_, cmd := m.Update(tui.TickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	return m.View()
}

func TestModel_LoadingBeforeData(t *testing.T) {
	m := tui.New(store.New(), config.Default(), time.Hour)
	view := refresh(t, m)

	if !strings.Contains(view, "Loading…") {
		t.Errorf("view should show Loading…:\n%s", view)
	}
	if !strings.Contains(view, config.DefaultTitle) {
		t.Errorf("view should show the title:\n%s", view)
	}
}

func TestModel_LegendWithPercents(t *testing.T) {
	st := store.New()
	m := tui.New(st, config.Default(), time.Hour)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

	st.SetTransport(store.TransportStream)
	st.Update(types.ValuePair{A: 3, B: 5})
	view := refresh(t, m)

	for _, want := range []string{"Boy: 3 (37.5%)", "Girl: 5 (62.5%)", "transport: stream"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Loading…") {
		t.Error("Loading… should be gone once data arrived")
	}
}

func TestModel_ErrorLineKeepsData(t *testing.T) {
	st := store.New()
	st.Update(types.ValuePair{A: 1, B: 1})
	st.Fail("HTTP 500")
	view := refresh(t, tui.New(st, config.Default(), time.Hour))

	if !strings.Contains(view, "HTTP 500") {
		t.Errorf("view should show the error:\n%s", view)
	}
	if !strings.Contains(view, "Boy: 1 (50%)") {
		t.Errorf("view should keep the last data:\n%s", view)
	}
}

func TestModel_ZeroTotal(t *testing.T) {
	st := store.New()
	st.Update(types.ValuePair{A: 0, B: 0})
	view := refresh(t, tui.New(st, config.Default(), time.Hour))

	if !strings.Contains(view, "No votes yet") {
		t.Errorf("view:\n%s", view)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		m := tui.New(store.New(), config.Default(), time.Hour)
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected a quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
	}
}
