package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tutor"
	bt "github.com/fwojciec/tutor/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, chat bt.ChatFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, chat, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, chat bt.ChatFunc, width, height int) bt.Model {
	t.Helper()
	session := &tutor.Session{BookID: "42", ChatType: tutor.ChatTypeBook}
	m := bt.New(chat, session, tutor.DefaultTheme(), bt.Config{BookTitle: "Biology"})
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// submit types text into the input and presses Enter without running the
// returned commands, leaving the model in the running state.
func submit(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	m.Input.SetValue(text)
	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Running())
	return m
}

// event wraps evt in a StreamEventMsg for the model's current request.
func event(m bt.Model, evt tutor.Event) bt.StreamEventMsg {
	return bt.StreamEventMsg{Gen: m.Generation(), Event: evt}
}

// nopChat is a mock chat that does nothing.
func nopChat(_ context.Context, _ *tutor.Session, _ string, _ func(tutor.Event)) error {
	return nil
}
