package tui

import (
	"bytes"
	"context"
	"log"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskmgr/internal/testutil"
)

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

// collect runs cmd and flattens batches into the resulting messages.
// Only pass commands that come from loads, submits and mutations: cursor
// blink commands returned while typing would sleep.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func newSession(t *testing.T, token string) (Session, *testutil.FakeService, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	fake := testutil.NewFakeService()
	return Session{
		Context: context.Background(),
		Token:   token,
		Service: fake,
		Logger:  log.New(&buf, "", 0),
	}, fake, &buf
}

func countMsgs(msgs []tea.Msg) []TaskCountMsg {
	var out []TaskCountMsg
	for _, m := range msgs {
		if c, ok := m.(TaskCountMsg); ok {
			out = append(out, c)
		}
	}
	return out
}
