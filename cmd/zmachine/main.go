package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kjhallberg/gozvm/selectstoryui"
	"github.com/kjhallberg/gozvm/zcore"
	"github.com/kjhallberg/gozvm/zmachine"
	"github.com/muesli/reflow/wordwrap"
)

var romFilePath string

func init() {
	flag.StringVar(&romFilePath, "rom", "", "path to a Z-machine story file")
	flag.Parse()
}

type appState int

const (
	appRunning appState = iota
	appAwaitingLine
	appAwaitingChar
)

type runStoryModel struct {
	screen   *zmachine.Screen
	machine  *zmachine.Machine
	romPath  string

	appState appState
	status   zmachine.StatusEvent
	upper    []string
	lower    strings.Builder
	input    textinput.Model
	width    int
	height   int
	fatal    string

	style       lipgloss.Style
	statusStyle lipgloss.Style
}

func waitForOutput(out <-chan any) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-out
		if !ok {
			return nil
		}
		return msg
	}
}

type fatalMessage string

func (m runStoryModel) Init() tea.Cmd {
	return tea.Batch(
		waitForOutput(m.screen.Out),
		tea.SetWindowTitle(m.romPath),
		tea.WindowSize(),
	)
}

func (m runStoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.appState {
		case appAwaitingChar:
			m.appState = appRunning
			ch := rune(0)
			if len(msg.Runes) > 0 {
				ch = msg.Runes[0]
			} else if msg.Type == tea.KeyEnter {
				ch = '\n'
			}
			go func() { m.screen.Char <- ch }()
			return m, waitForOutput(m.screen.Out)
		case appAwaitingLine:
			if msg.Type == tea.KeyEnter {
				m.appState = appRunning
				line := m.input.Value()
				m.lower.WriteString(line + "\n")
				m.input.SetValue("")
				go func(l string) { m.screen.Line <- l }(line)
				return m, waitForOutput(m.screen.Out)
			}
		}

	case zmachine.TextEvent:
		if m.screen.LowerActive() {
			m.lower.WriteString(msg.Text)
		} else {
			m.appendUpper(msg.Text)
		}
		return m, waitForOutput(m.screen.Out)

	case zmachine.StatusEvent:
		m.status = msg
		return m, waitForOutput(m.screen.Out)

	case zmachine.SplitWindowEvent:
		if len(m.upper) != msg.UpperLines {
			if len(m.upper) > msg.UpperLines {
				m.upper = m.upper[:msg.UpperLines]
			} else {
				for len(m.upper) < msg.UpperLines {
					m.upper = append(m.upper, "")
				}
			}
		}
		return m, waitForOutput(m.screen.Out)

	case zmachine.EraseWindowEvent:
		switch msg.Window {
		case -1, -2:
			m.lower.Reset()
			for i := range m.upper {
				m.upper[i] = ""
			}
		case 0:
			m.lower.Reset()
		case 1:
			for i := range m.upper {
				m.upper[i] = ""
			}
		}
		return m, waitForOutput(m.screen.Out)

	case zmachine.AwaitLine:
		m.appState = appAwaitingLine
		return m, waitForOutput(m.screen.Out)

	case zmachine.AwaitChar:
		m.appState = appAwaitingChar
		return m, waitForOutput(m.screen.Out)

	case zmachine.Warning:
		fmt.Fprintf(os.Stderr, "%s\n", msg.Message)
		return m, waitForOutput(m.screen.Out)

	case zmachine.Halted:
		return m, tea.Quit

	case fatalMessage:
		m.fatal = string(msg)
		return m, tea.Quit

	case nil:
		return m, nil
	}

	if m.appState == appAwaitingLine {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *runStoryModel) appendUpper(text string) {
	if len(m.upper) == 0 {
		return
	}
	lines := strings.Split(text, "\n")
	last := len(m.upper) - 1
	m.upper[last] += lines[0]
	for _, l := range lines[1:] {
		if last+1 < len(m.upper) {
			last++
			m.upper[last] = l
		}
	}
}

func (m runStoryModel) View() string {
	if m.fatal != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
		return fmt.Sprintf("\n%s\n\n%s\n", errStyle.Render("Z-Machine error:"), m.fatal)
	}
	if m.width == 0 {
		return "Loading..."
	}

	var s strings.Builder
	if m.status.PlaceName != "" {
		s.WriteString(m.statusStyle.Width(m.width).Render(statusLine(m.width, m.status)))
		s.WriteString("\n")
	}
	for _, l := range m.upper {
		s.WriteString(l)
		s.WriteString("\n")
	}

	body := wordwrap.String(m.lower.String(), m.width)
	lines := strings.Split(body, "\n")
	maxLines := m.height - len(m.upper) - 3
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	s.WriteString(strings.Join(lines, "\n"))

	if m.appState == appAwaitingLine {
		s.WriteString("\n" + m.input.View())
	}

	return m.style.Width(m.width).Height(m.height).Render(s.String())
}

func statusLine(width int, status zmachine.StatusEvent) string {
	right := fmt.Sprintf("Score: %d  Moves: %d", status.Score, status.Moves)
	if status.TimeBased {
		right = fmt.Sprintf("Time: %d:%02d", status.Score, status.Moves)
	}
	if len(right)+len(status.PlaceName)+1 >= width {
		if len(right) >= width {
			return right[:width]
		}
		return status.PlaceName[:width-len(right)-1] + " " + right
	}
	pad := width - len(status.PlaceName) - len(right)
	return status.PlaceName + strings.Repeat(" ", pad) + right
}

func newRunStoryModel(m *zmachine.Machine, romPath string) tea.Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 200
	ti.Prompt = ""

	return runStoryModel{
		screen:      m.Screen,
		machine:     m,
		romPath:     romPath,
		appState:    appRunning,
		input:       ti,
		style:       lipgloss.NewStyle(),
		statusStyle: lipgloss.NewStyle().Reverse(true),
	}
}

func loadStoryBytes(storyBytes []uint8, name string) tea.Model {
	mem := zcore.Load(storyBytes)
	m, err := zmachine.New(mem)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load story: %v\n", err)
		os.Exit(1)
	}
	go func() {
		if err := m.Run(); err != nil {
			m.Screen.Out <- fatalMessage(err.Error())
		}
	}()
	return newRunStoryModel(m, name)
}

func loadStoryFile(path string) tea.Model {
	storyBytes, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read story file: %v\n", err)
		os.Exit(1)
	}
	return loadStoryBytes(storyBytes, path)
}

func main() {
	var model tea.Model

	if romFilePath != "" {
		model = loadStoryFile(romFilePath)
	} else {
		cacheDir, _ := os.UserCacheDir()
		if cacheDir != "" {
			cacheDir = cacheDir + "/gozvm"
		}
		model = selectstoryui.NewUIModel(loadStoryBytes, cacheDir)
	}

	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}
