package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"refremote/internal/app"
	"refremote/internal/remote"
	"refremote/internal/settings"
)

const rpcTimeout = 4 * time.Second

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	Status() (app.DaemonStatus, error)
	StartDaemon() (*app.DaemonHandle, error)
	Settings(context.Context, time.Duration) (settings.Values, error)
	StoreSettings(context.Context, app.StoreParams) (app.StoreResult, error)
}

type field int

const (
	fieldRemote field = iota
	fieldPort
	fieldIEEE
	fieldCaseKeeper
	fieldUnitFormatter
	fieldCount
)

// Model represents the Bubble Tea state of the advanced settings page.
type Model struct {
	controller Controller

	values settings.Values
	port   textinput.Model
	focus  field

	daemonStatus app.DaemonStatus
	statusMsg    string
	notices      []string

	err     error
	loading bool
	saving  bool
	dirty   bool

	// handle is set when the daemon was started from the TUI.
	handle *app.DaemonHandle

	lastSaved time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller) *Model {
	ti := textinput.New()
	ti.Placeholder = "6050"
	ti.CharLimit = 5
	ti.Width = 8
	ti.Prompt = ""

	return &Model{
		controller: ctrl,
		port:       ti,
		statusMsg:  "Checking daemon status…",
		loading:    true,
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller) error {
	m := New(ctrl)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	if m.handle != nil {
		if cerr := m.handle.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(checkDaemonStatusCmd(m.controller), loadSettingsCmd(m.controller))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case daemonStatusMsg:
		m.daemonStatus = msg.status
		m.statusMsg = describeStatus(msg.status)
		return m, nil

	case settingsLoadedMsg:
		m.loading = false
		m.err = nil
		m.dirty = false
		m.values = msg.values
		m.port.SetValue(msg.values.RemoteServerPort)
		return m, nil

	case settingsStoredMsg:
		m.saving = false
		m.err = nil
		m.dirty = false
		m.values = msg.result.Values
		m.port.SetValue(msg.result.Values.RemoteServerPort)
		m.notices = m.notices[:0]
		for _, n := range msg.result.Notices {
			m.notices = append(m.notices, fmt.Sprintf("%s: %s", n.Title, n.Message))
		}
		m.lastSaved = time.Now()
		return m, checkDaemonStatusCmd(m.controller)

	case daemonStartedMsg:
		m.handle = msg.handle
		m.statusMsg = "Daemon started."
		return m, tea.Batch(checkDaemonStatusCmd(m.controller), loadSettingsCmd(m.controller))

	case errMsg:
		m.loading = false
		m.saving = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter":
		return m, m.submit()
	}

	if m.focus == fieldPort {
		var cmd tea.Cmd
		before := m.port.Value()
		m.port, cmd = m.port.Update(msg)
		if m.port.Value() != before {
			m.values.RemoteServerPort = m.port.Value()
			m.dirty = true
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ", "x":
		m.toggleFocused()
	case "r":
		m.loading = true
		m.notices = nil
		return m, loadSettingsCmd(m.controller)
	case "s":
		if !m.daemonStatus.Running {
			m.statusMsg = "Starting daemon…"
			return m, startDaemonCmd(m.controller)
		}
	}
	return m, nil
}

func (m *Model) setFocus(f field) {
	m.focus = f
	if f == fieldPort {
		m.port.Focus()
	} else {
		m.port.Blur()
	}
}

func (m *Model) toggleFocused() {
	switch m.focus {
	case fieldRemote:
		m.values.UseRemoteServer = !m.values.UseRemoteServer
	case fieldIEEE:
		m.values.UseIEEEAbbreviations = !m.values.UseIEEEAbbreviations
	case fieldCaseKeeper:
		m.values.UseCaseKeeperOnSearch = !m.values.UseCaseKeeperOnSearch
	case fieldUnitFormatter:
		m.values.UseUnitFormatterOnSearch = !m.values.UseUnitFormatterOnSearch
	default:
		return
	}
	m.dirty = true
}

// submit validates in place so a bad port is reported without a round trip.
func (m *Model) submit() tea.Cmd {
	if !m.daemonStatus.Running {
		m.err = errors.New("daemon is not running, press s to start it")
		return nil
	}
	m.values.RemoteServerPort = m.port.Value()
	if _, err := remote.ValidatePort(m.values.RemoteServerPort); err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.saving = true
	return storeSettingsCmd(m.controller, m.values)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true)
	if !m.daemonStatus.Running {
		statusStyle = statusStyle.Foreground(lipgloss.Color("203"))
	} else {
		statusStyle = statusStyle.Foreground(lipgloss.Color("42"))
	}
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(settings.TabName))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading settings…\n")
	}

	b.WriteString(sectionStyle.Render("Remote operation"))
	b.WriteByte('\n')
	b.WriteString(noteStyle.Render("Lets new files be opened in an already running instance instead of a new one.\nOnly one instance can run at a time while this is enabled."))
	b.WriteByte('\n')
	b.WriteString(m.checkbox(fieldRemote, m.values.UseRemoteServer, "Listen for remote operation on port"))
	b.WriteString(m.cursor(fieldPort) + "Port: " + m.port.View() + "\n\n")

	b.WriteString(sectionStyle.Render("Search IEEEXplore"))
	b.WriteByte('\n')
	b.WriteString(m.checkbox(fieldIEEE, m.values.UseIEEEAbbreviations, "Use IEEE LaTeX abbreviations"))
	b.WriteByte('\n')

	b.WriteString(sectionStyle.Render("Import conversions"))
	b.WriteByte('\n')
	b.WriteString(m.checkbox(fieldCaseKeeper, m.values.UseCaseKeeperOnSearch, "Add {} to specified title words on search to keep the correct case"))
	b.WriteString(m.checkbox(fieldUnitFormatter, m.values.UseUnitFormatterOnSearch, "Format units by adding non-breaking separators and keeping the correct case on search"))
	b.WriteByte('\n')

	if m.saving {
		b.WriteString("Saving…\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}
	for _, n := range m.notices {
		b.WriteString(warnStyle.Render(n))
		b.WriteByte('\n')
	}

	help := "Commands: ↑/↓ move • space toggle • enter store • r reload • s start daemon • q quit"
	if m.dirty {
		help += " • unsaved changes"
	}
	if !m.lastSaved.IsZero() {
		help += fmt.Sprintf(" • stored %s", m.lastSaved.Format(time.Kitchen))
	}
	b.WriteString(noteStyle.Render(help))

	return b.String()
}

func (m *Model) cursor(f field) string {
	if m.focus == f {
		return focusStyle.Render("> ")
	}
	return "  "
}

func (m *Model) checkbox(f field, checked bool, label string) string {
	mark := "[ ]"
	if checked {
		mark = "[x]"
	}
	line := mark + " " + label
	if m.focus == f {
		line = focusStyle.Render(line)
	}
	return m.cursor(f) + line + "\n"
}

func describeStatus(st app.DaemonStatus) string {
	if !st.Running {
		return "Daemon is not running. Press s to start it."
	}
	msg := "Daemon running"
	if st.PID > 0 {
		msg = fmt.Sprintf("Daemon running (pid %d)", st.PID)
	}
	if st.Remote != nil {
		if st.Remote.Listening {
			msg += fmt.Sprintf(", remote listener on port %d", st.Remote.ListenerPort)
		} else {
			msg += ", remote listener off"
		}
	}
	return msg + "."
}

type daemonStatusMsg struct {
	status app.DaemonStatus
}

type settingsLoadedMsg struct {
	values settings.Values
}

type settingsStoredMsg struct {
	result app.StoreResult
}

type daemonStartedMsg struct {
	handle *app.DaemonHandle
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func checkDaemonStatusCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		status, err := ctrl.Status()
		if err != nil {
			return errMsg{err}
		}
		return daemonStatusMsg{status: status}
	}
}

func loadSettingsCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		values, err := ctrl.Settings(context.Background(), rpcTimeout)
		if err != nil {
			return errMsg{err}
		}
		return settingsLoadedMsg{values: values}
	}
}

// storeSettingsCmd runs off the UI loop; its notices come back as a message.
func storeSettingsCmd(ctrl Controller, values settings.Values) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.StoreSettings(context.Background(), app.StoreParams{Values: values, Timeout: rpcTimeout})
		if err != nil {
			return errMsg{err}
		}
		return settingsStoredMsg{result: res}
	}
}

func startDaemonCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		handle, err := ctrl.StartDaemon()
		if err != nil {
			return errMsg{err}
		}
		// Give the daemon a moment to bind the socket.
		time.Sleep(300 * time.Millisecond)
		return daemonStartedMsg{handle: handle}
	}
}
