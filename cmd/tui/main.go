package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finnyai/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finnyai/internal/app"
	"github.com/MrJamesThe3rd/finnyai/internal/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/config"
	"github.com/MrJamesThe3rd/finnyai/internal/normalize"
)

type model struct {
	session   *chat.Session
	formatter normalize.Formatter

	currentView View
	width       int
	height      int

	chatView    view.ChatModel
	receiptView view.ExtractModel
	audioView   view.ExtractModel
}

type View int

const (
	ViewMenu    View = 0
	ViewChat    View = 1
	ViewReceipt View = 2
	ViewAudio   View = 3
)

func initialModel(a *app.App) model {
	session := a.NewSession()
	formatter := a.Resolver.Formatter()

	return model{
		session:     session,
		formatter:   formatter,
		currentView: ViewMenu,
		chatView:    view.NewChatModel(session),
		receiptView: view.NewExtractModel(session, view.SourceReceipt, formatter),
		audioView:   view.NewExtractModel(session, view.SourceAudio, formatter),
	}
}

func (m model) Init() tea.Cmd {
	// Prime the conversation in the background so the first question is fast.
	return m.chatView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewChat
				return m, m.resize()
			case "2":
				m.currentView = ViewReceipt
				m.receiptView = view.NewExtractModel(m.session, view.SourceReceipt, m.formatter)

				return m, tea.Batch(m.receiptView.Init(), m.resize())
			case "3":
				m.currentView = ViewAudio
				m.audioView = view.NewExtractModel(m.session, view.SourceAudio, m.formatter)

				return m, tea.Batch(m.audioView.Init(), m.resize())
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	// Chat replies and priming land even when the chat screen is not shown.
	if _, isKey := msg.(tea.KeyMsg); !isKey && m.currentView != ViewChat {
		var newModel tea.Model
		newModel, cmd = m.chatView.Update(msg)
		m.chatView = newModel.(view.ChatModel)
	}

	var viewCmd tea.Cmd

	switch m.currentView {
	case ViewChat:
		var newModel tea.Model
		newModel, viewCmd = m.chatView.Update(msg)
		m.chatView = newModel.(view.ChatModel)
	case ViewReceipt:
		var newModel tea.Model
		newModel, viewCmd = m.receiptView.Update(msg)
		m.receiptView = newModel.(view.ExtractModel)
	case ViewAudio:
		var newModel tea.Model
		newModel, viewCmd = m.audioView.Update(msg)
		m.audioView = newModel.(view.ExtractModel)
	}

	return m, tea.Batch(cmd, viewCmd)
}

func (m model) resize() tea.Cmd {
	if m.width == 0 {
		return nil
	}

	w, h := m.width, m.height

	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Finny Assistant\n\n" +
				"1. Chat\n" +
				"2. Add from receipt\n" +
				"3. Add from audio\n\n" +
				"q. Quit",
		)
	case ViewChat:
		return m.chatView.View()
	case ViewReceipt:
		return m.receiptView.View()
	case ViewAudio:
		return m.audioView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
