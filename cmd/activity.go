package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamearr/logger"
	"gamearr/qbit"
)

// activityCmd represents the activity command
var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Interactive view of the qBittorrent download queue",
	Long: `Launches an interactive TUI showing every torrent in the gamearr
category. Downloads can be paused, resumed or removed from here.`,
	Run: func(_ *cobra.Command, _ []string) {
		runActivity()
	},
}

func init() {
	rootCmd.AddCommand(activityCmd)
}

const activityRefreshInterval = 2 * time.Second

type torrentsMsg []qbt.Torrent

type activityErrMsg struct{ err error }

type refreshTickMsg struct{}

type actionDoneMsg struct{ message string }

// ActivityModel is the state of the download activity TUI
type ActivityModel struct {
	qb            *qbit.Client
	spinner       spinner.Model
	torrents      []qbt.Torrent
	selectedIndex int
	loading       bool
	error         string
	message       string
	width         int
	height        int
}

func initialActivityModel(qb *qbit.Client) ActivityModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ActivityModel{
		qb:      qb,
		spinner: s,
		loading: true,
	}
}

func (m ActivityModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadTorrents(),
		tickRefresh(),
	)
}

func tickRefresh() tea.Cmd {
	return tea.Tick(activityRefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m ActivityModel) loadTorrents() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		torrents, err := m.qb.ListCategory(ctx)
		if err != nil {
			return activityErrMsg{err: err}
		}
		sort.Slice(torrents, func(i, j int) bool {
			return torrents[i].AddedOn > torrents[j].AddedOn
		})
		return torrentsMsg(torrents)
	}
}

func (m ActivityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case torrentsMsg:
		m.torrents = msg
		m.loading = false
		m.error = ""
		if m.selectedIndex >= len(m.torrents) {
			m.selectedIndex = len(m.torrents) - 1
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		return m, nil

	case activityErrMsg:
		m.loading = false
		m.error = msg.err.Error()
		return m, nil

	case actionDoneMsg:
		m.message = msg.message
		return m, m.loadTorrents()

	case refreshTickMsg:
		return m, tea.Batch(m.loadTorrents(), tickRefresh())
	}

	return m, nil
}

func (m ActivityModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}

	case "down", "j":
		if m.selectedIndex < len(m.torrents)-1 {
			m.selectedIndex++
		}

	case "p":
		if t := m.selected(); t != nil {
			return m, m.runAction("Paused "+t.Name, func(ctx context.Context) error {
				return m.qb.Pause(ctx, t.Hash)
			})
		}

	case "r":
		if t := m.selected(); t != nil {
			return m, m.runAction("Resumed "+t.Name, func(ctx context.Context) error {
				return m.qb.Resume(ctx, t.Hash)
			})
		}

	case "ctrl+d":
		if t := m.selected(); t != nil {
			return m, m.runAction("Removed "+t.Name, func(ctx context.Context) error {
				return m.qb.Cancel(ctx, t.Hash, true)
			})
		}
	}

	return m, nil
}

func (m ActivityModel) selected() *qbt.Torrent {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.torrents) {
		return nil
	}
	return &m.torrents[m.selectedIndex]
}

func (m ActivityModel) runAction(message string, action func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := action(ctx); err != nil {
			return activityErrMsg{err: err}
		}
		return actionDoneMsg{message: message}
	}
}

var (
	activityHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				Padding(0, 1)
	activityErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	activityMessageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	activityFooterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activitySelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
)

func (m ActivityModel) View() string {
	s := activityHeaderStyle.Render("gamearr activity") + "\n\n"

	if m.loading {
		return s + fmt.Sprintf(" %s Loading torrents...\n", m.spinner.View())
	}

	if m.error != "" {
		s += activityErrorStyle.Render("Error: "+m.error) + "\n\n"
	}
	if m.message != "" {
		s += activityMessageStyle.Render(m.message) + "\n\n"
	}

	if len(m.torrents) == 0 {
		s += " No active downloads in the gamearr category\n"
	}

	for i, t := range m.torrents {
		s += m.renderTorrentRow(i, t)
	}

	s += "\n" + activityFooterStyle.Render(
		"j/k: move • p: pause • r: resume • ctrl+d: remove with files • q: quit") + "\n"
	return s
}

func (m ActivityModel) renderTorrentRow(index int, t qbt.Torrent) string {
	cursor := "  "
	name := truncate(t.Name, 60)
	line := fmt.Sprintf("%s %-62s %8s  %s",
		cursor, name, formatProgress(t.Progress), stateLabel(t.State))
	if index == m.selectedIndex {
		line = activitySelectedStyle.Render("> " + line[2:])
	}
	return line + "\n"
}

// formatProgress shows a torrent's completion as a percentage.
func formatProgress(progress float64) string {
	if progress >= 1 {
		return "done"
	}
	return fmt.Sprintf("%.1f%%", progress*100)
}

// stateLabel maps qBittorrent's state strings onto the short colored
// labels shown in the list.
func stateLabel(state qbt.TorrentState) string {
	status := qbit.Status{State: state}
	switch {
	case status.Errored():
		return activityErrorStyle.Render("error")
	case status.Downloading():
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render("downloading")
	default:
		return string(state)
	}
}

// truncate shortens a string to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func runActivity() {
	a := bootstrap(".")

	p := tea.NewProgram(initialActivityModel(a.qbit), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run activity view", zap.Error(err))
	}
}
