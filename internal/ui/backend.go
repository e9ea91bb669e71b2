package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/itree/internal/backend"
	"github.com/atomicstack/itree/internal/logging"
	"github.com/atomicstack/itree/internal/logging/events"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	if evt.Kind == backend.KindError || evt.Err != nil {
		events.Watch.Error(evt.Err)
		logging.Error(evt.Err)
		if evt.Err != nil {
			m.backendLastErr = evt.Err.Error()
		}
		return
	}
	events.Watch.Change(evt.Path, evt.Op)
	m.backendLastErr = ""
	m.changes += evt.Count
	hint := ""
	if m.reload != nil {
		hint = "; press r to reload"
	}
	m.setInfo(fmt.Sprintf("%s changed on disk%s", m.relativeToRoot(evt.Path), hint))
}
