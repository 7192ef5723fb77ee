package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finnyai/internal/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

type ChatModel struct {
	CommonModel
	session *chat.Session

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	waiting bool
	status  string
}

type primedMsg struct {
	fctx *finance.Context
}

type replyMsg struct {
	msg chat.Message
}

func NewChatModel(session *chat.Session) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Pergunte algo sobre suas finanças"
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Width = 70
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return ChatModel{
		session:  session,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  s,
		waiting:  true,
		status:   "Carregando seus dados financeiros...",
	}
}

func (m ChatModel) Title() string { return "Chat" }

func (m ChatModel) ShortHelp() string {
	return "Enter: send | ctrl+r: reload data | Esc: back"
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.primeCmd())
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-8, 5)
		m.input.Width = msg.Width - 8

		// The session is owned by the pending command while waiting.
		if !m.waiting {
			m.viewport.SetContent(m.renderHistory())
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyCtrlR:
			if m.waiting {
				return m, nil
			}

			m.waiting = true
			m.status = "Recarregando dados..."

			return m, tea.Batch(m.spinner.Tick, m.primeCmd())
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if m.waiting || text == "" {
				return m, nil
			}

			m.input.Reset()
			m.waiting = true
			m.status = ""
			m.viewport.SetContent(m.renderHistory() + "\n\n" + userStyle.Render("Você: ") + text)
			m.viewport.GotoBottom()

			return m, tea.Batch(m.spinner.Tick, m.sendCmd(text))
		}

	case primedMsg:
		m.waiting = false
		m.status = FormatContextStatus(msg.fctx)

		return m, nil

	case replyMsg:
		m.waiting = false
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmds []tea.Cmd

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatModel) primeCmd() tea.Cmd {
	session := m.session

	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		return primedMsg{fctx: session.Prime(ctx)}
	}
}

func (m ChatModel) sendCmd(text string) tea.Cmd {
	session := m.session

	return func() tea.Msg {
		ctx, cancel := RequestCtx()
		defer cancel()

		return replyMsg{msg: session.SendUserMessage(ctx, text)}
	}
}

func (m ChatModel) renderHistory() string {
	var b strings.Builder

	for i, msg := range m.session.Messages() {
		if i > 0 {
			b.WriteString("\n\n")
		}

		label := finnyStyle.Render("Finny: ")
		if msg.Role == chat.RoleUser {
			label = userStyle.Render("Você: ")
		}

		b.WriteString(label)
		b.WriteString(lipgloss.NewStyle().Width(max(m.viewport.Width-8, 20)).Render(msg.Content))
	}

	return b.String()
}

func (m ChatModel) View() string {
	status := m.status
	if m.waiting {
		status = fmt.Sprintf("%s %s", m.spinner.View(), status)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		titleStyle.Render("Finny") + "\n" +
			helpStyle.Render(status) + "\n\n" +
			m.viewport.View() + "\n\n" +
			m.input.View() + "\n" +
			helpStyle.Render(m.ShortHelp()),
	)
}
