package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovepm/grove-ledger/pkg/ledger"
)

var (
	watchTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	watchHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	watchErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	watchDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	watchDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type watchTickMsg time.Time

type watchModel struct {
	store *ledger.Store
	led   *ledger.Ledger
	m     *ledger.Manifest
	snap  ledger.Snapshot
	err   error
}

func runWatch(store *ledger.Store) error {
	model := watchModel{store: store}
	model.reload()

	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}

func (m *watchModel) reload() {
	led, manifest, err := m.store.Load()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.led = led
	m.m = manifest
	m.snap = ledger.Derive(led, manifest)
}

func (m watchModel) Init() tea.Cmd {
	return watchTick()
}

func watchTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.reload()
			return m, nil
		}
	case watchTickMsg:
		m.reload()
		return m, watchTick()
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.err != nil {
		return watchErrorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n\n" + watchDimStyle.Render("r to retry, q to quit") + "\n"
	}
	if m.led == nil {
		return watchDimStyle.Render("loading...") + "\n"
	}

	s := watchTitleStyle.Render(fmt.Sprintf("ledger %s", m.store.LedgerPath())) + "\n"
	s += watchHeaderStyle.Render(fmt.Sprintf("overall %s · version %d", m.snap.OverallStatus, m.led.Version)) + "\n"
	if m.snap.CurrentPhase != "" {
		s += watchHeaderStyle.Render("phase "+m.snap.CurrentPhase) + "\n"
	}
	s += "\n"

	for _, id := range taskDisplayOrder(m.led, m.m) {
		task := m.led.Tasks[id]
		line := fmt.Sprintf("%s %-30s %s", statusGlyph(task.Status), id, task.Status)
		switch {
		case id == m.snap.CurrentTask:
			line = watchCurrentStyle.Render(line)
		case task.Status.Terminal():
			line = watchDoneStyle.Render(line)
		case task.Status == ledger.StatusFailed:
			line = watchErrorStyle.Render(line)
		}
		s += line + "\n"
	}

	if m.snap.NextAction != "" {
		s += "\n" + watchHeaderStyle.Render("next: "+m.snap.NextAction) + "\n"
	}
	s += "\n" + watchDimStyle.Render("r refresh · q quit") + "\n"
	return s
}

func taskDisplayOrder(led *ledger.Ledger, m *ledger.Manifest) []string {
	var order []string
	seen := make(map[string]bool)
	if m != nil {
		for _, id := range m.Order() {
			if _, ok := led.Tasks[id]; ok {
				order = append(order, id)
				seen[id] = true
			}
		}
	}
	for _, id := range led.TaskIDs() {
		if !seen[id] {
			order = append(order, id)
		}
	}
	return order
}
