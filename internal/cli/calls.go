package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chainlens/chainlens/pkg/calllog"
)

// callsCommand creates the "calls" command for inspecting the upstream
// call log of a running server.
func (c *CLI) callsCommand() *cobra.Command {
	var (
		serverURL string
		plain     bool
	)

	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Inspect the upstream call log of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &callsClient{
				base: strings.TrimSuffix(serverURL, "/"),
				http: &http.Client{Timeout: 10 * time.Second},
			}

			entries, err := client.fetch(cmd.Context())
			if err != nil {
				return err
			}

			if plain {
				printCallsPlain(entries)
				return nil
			}

			_, err = tea.NewProgram(newCallsModel(client, entries)).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the running server")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the log without the interactive viewer")

	return cmd
}

func printCallsPlain(entries []calllog.Entry) {
	if len(entries) == 0 {
		printInfo("No upstream calls recorded")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s %s %s %s",
			formatEntryTime(e), formatEntryStatus(e), formatEntryDuration(e), e.Method, e.URL)
		if e.Error != "" {
			line += "  " + e.Error
		}
		fmt.Println(line)
	}
	printDetail("%d entries, newest first", len(entries))
}

// callsClient talks to the server's call log endpoints.
type callsClient struct {
	base string
	http *http.Client
}

func (cc *callsClient) fetch(ctx context.Context) ([]calllog.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cc.base+"/api/calls", nil)
	if err != nil {
		return nil, err
	}
	resp, err := cc.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch call log: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch call log: server returned %d", resp.StatusCode)
	}

	var body struct {
		Calls []calllog.Entry `json:"calls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode call log: %w", err)
	}
	return body.Calls, nil
}

func (cc *callsClient) clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, cc.base+"/api/calls", nil)
	if err != nil {
		return err
	}
	resp, err := cc.http.Do(req)
	if err != nil {
		return fmt.Errorf("clear call log: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("clear call log: server returned %d", resp.StatusCode)
	}
	return nil
}

// =============================================================================
// callsModel - Interactive call log viewer
// =============================================================================

type callsLoadedMsg struct{ entries []calllog.Entry }

type callsErrMsg struct{ err error }

// callsModel is the bubbletea model for the call log viewer.
type callsModel struct {
	client  *callsClient
	entries []calllog.Entry
	cursor  int
	offset  int
	height  int
	err     error
}

func newCallsModel(client *callsClient, entries []calllog.Entry) callsModel {
	return callsModel{
		client:  client,
		entries: entries,
		height:  15,
	}
}

func (m callsModel) Init() tea.Cmd {
	return nil
}

func (m callsModel) reload() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.client.fetch(context.Background())
		if err != nil {
			return callsErrMsg{err}
		}
		return callsLoadedMsg{entries}
	}
}

func (m callsModel) clearAndReload() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.clear(context.Background()); err != nil {
			return callsErrMsg{err}
		}
		return callsLoadedMsg{nil}
	}
}

func (m callsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "r":
			return m, m.reload()
		case "c":
			return m, m.clearAndReload()
		}
	case callsLoadedMsg:
		m.entries = msg.entries
		m.cursor = 0
		m.offset = 0
		m.err = nil
	case callsErrMsg:
		m.err = msg.err
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m callsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Upstream Call Log"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  r reload  c clear  q quit"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(StyleDim.Render("  no upstream calls recorded"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.entries) {
		end = len(m.entries)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			formatEntryTime(e),
			formatEntryStatus(e),
			formatEntryDuration(e),
			truncateURL(e.URL, 48),
			e.Error,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Time", "Status", "Dur", "URL", "Error").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.offset + row
			if actualIdx >= len(m.entries) {
				return lipgloss.NewStyle()
			}
			e := m.entries[actualIdx]

			base := lipgloss.NewStyle()
			if col == 2 {
				switch {
				case e.Error != "" && e.Status == 0:
					base = base.Foreground(colorRed)
				case e.Status == http.StatusTooManyRequests:
					base = base.Foreground(colorYellow)
				case e.Status >= 200 && e.Status < 300:
					base = base.Foreground(colorGreen)
				default:
					base = base.Foreground(colorRed)
				}
			}
			if actualIdx == m.cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d] newest first", m.cursor+1, len(m.entries))))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatEntryTime(e calllog.Entry) string {
	return time.UnixMilli(e.Timestamp).Format("15:04:05")
}

func formatEntryStatus(e calllog.Entry) string {
	if e.Status == 0 {
		return "—"
	}
	return fmt.Sprintf("%d", e.Status)
}

func formatEntryDuration(e calllog.Entry) string {
	return fmt.Sprintf("%dms", e.Duration)
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return "…" + u[len(u)-max+1:]
}
